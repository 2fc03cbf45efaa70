// Package core wires the CPU, bus, PPU, APU, controllers, and cartridge
// into the console's public driver interface: create, reset, step an
// instruction, tick the picture processor, feed button input, and read
// the framebuffer back out.
package core

import (
	"io"

	"nescore/internal/apu"
	"nescore/internal/bus"
	"nescore/internal/cartridge"
	"nescore/internal/cpu"
	"nescore/internal/input"
	"nescore/internal/ppu"
)

// Button re-exports the controller button set so callers don't need to
// import internal/input directly.
type Button = input.Button

const (
	ButtonA      = input.ButtonA
	ButtonB      = input.ButtonB
	ButtonSelect = input.ButtonSelect
	ButtonStart  = input.ButtonStart
	ButtonUp     = input.ButtonUp
	ButtonDown   = input.ButtonDown
	ButtonLeft   = input.ButtonLeft
	ButtonRight  = input.ButtonRight
)

// Config selects runtime behavior the spec leaves to the driver: whether
// unmapped opcodes are a hard failure or a tolerated no-op.
type Config struct {
	StrictOpcodes bool
}

// Core owns one of each subsystem and exposes the driver contract. All
// cross-subsystem access goes through indexed lookups on this struct, not
// cyclic pointers between the subsystems themselves.
type Core struct {
	cpu  *cpu.CPU
	ppu  *ppu.PPU
	apu  *apu.APU
	bus  *bus.Bus
	cart *cartridge.Cartridge
	pad  *input.Ports
}

// Create loads a cartridge image and wires every subsystem together.
func Create(rom io.Reader, cfg Config) (*Core, error) {
	cart, err := cartridge.LoadFromReader(rom)
	if err != nil {
		return nil, err
	}
	return newCore(cart, cfg), nil
}

// CreateFromCartridge wires an already-loaded cartridge, for callers that
// parsed the ROM themselves (tests, tools).
func CreateFromCartridge(cart *cartridge.Cartridge, cfg Config) *Core {
	return newCore(cart, cfg)
}

func newCore(cart *cartridge.Cartridge, cfg Config) *Core {
	c := &Core{
		cart: cart,
		bus:  bus.New(),
		apu:  apu.New(),
		pad:  &input.Ports{},
	}
	c.bus.Cartridge = cart
	c.bus.APU = c.apu
	c.bus.Controllers = c.pad

	var cpuCore *cpu.CPU
	c.ppu = ppu.New(cart, func() {
		if cpuCore != nil {
			cpuCore.RequestNMI()
		}
	})
	c.bus.PPU = c.ppu

	cpuCore = cpu.New(c.bus)
	cpuCore.Strict = cfg.StrictOpcodes
	c.cpu = cpuCore

	return c
}

// Reset clears CPU registers, re-seeds PC from the reset vector, and
// resets the PPU and controllers.
func (c *Core) Reset() {
	c.bus.Reset()
	c.ppu.Reset()
	c.pad.Reset()
	c.cpu.Reset()
}

// StepInstruction executes one CPU instruction (servicing a pending DMA
// or NMI first, per §4.1) and returns the cycles it consumed.
func (c *Core) StepInstruction() (uint32, error) {
	return c.cpu.StepInstruction()
}

// TickPPU advances the picture processor by 3*cpuCycles dots.
func (c *Core) TickPPU(cpuCycles uint32) {
	c.ppu.Tick(cpuCycles)
}

// SetButton sets or clears a button on the given controller port (0 or 1).
func (c *Core) SetButton(port int, button Button, pressed bool) {
	switch port {
	case 0:
		c.pad.Port1.SetButton(button, pressed)
	case 1:
		c.pad.Port2.SetButton(button, pressed)
	}
}

// Framebuffer returns a snapshot of the current 256x240 framebuffer, one
// 0xAARRGGBB pixel per entry.
func (c *Core) Framebuffer() [256 * 240]uint32 {
	return c.ppu.Framebuffer
}
