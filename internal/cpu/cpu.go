// Package cpu implements a 6502-family interpreter: registers, addressing
// modes, flag semantics, the stack, and the interrupt sequence.
package cpu

import "fmt"

// AddressingMode identifies how an opcode's operand address is computed.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

// Flag bit masks for the P status byte.
const (
	FlagCarry     uint8 = 1 << 0
	FlagZero      uint8 = 1 << 1
	FlagIRQ       uint8 = 1 << 2
	FlagDecimal   uint8 = 1 << 3
	FlagBreak     uint8 = 1 << 4
	FlagUnused    uint8 = 1 << 5
	FlagOverflow  uint8 = 1 << 6
	FlagNegative  uint8 = 1 << 7
)

// Bus is the CPU's view of the system bus: the 16-bit address space plus
// the OAM DMA side channel that affects instruction-level timing. The
// PPU's NMI line reaches the CPU through RequestNMI, not through Bus.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	// TakeDMARequest reports and clears a pending OAM DMA request armed by
	// a write to $4014, returning the source page.
	TakeDMARequest() (page uint8, pending bool)
}

// UnknownOpcode is returned by StepInstruction in strict mode when the
// fetched byte has no table entry.
type UnknownOpcode struct {
	Opcode uint8
	PC     uint16
}

func (e *UnknownOpcode) Error() string {
	return fmt.Sprintf("unknown opcode $%02X at $%04X", e.Opcode, e.PC)
}

type opcodeInfo struct {
	name   string
	mode   AddressingMode
	cycles uint8
	length uint8
}

// CPU holds the 6502-family register file and drives instruction execution
// against a Bus.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8

	bus Bus

	nmiPending bool
	irqLine    bool

	// Strict rejects unmapped opcodes with UnknownOpcode; permissive treats
	// them as single-byte NOPs that still consume their fetch cycle.
	Strict bool

	table [256]opcodeInfo
}

// New constructs a CPU wired to the given bus. Call Reset before stepping.
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.initTable()
	return c
}

// Reset clears A/X/Y, sets SP=$FD, sets P=$24 (unused + irq-disable), and
// loads PC from the reset vector at $FFFC/$FFFD.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = FlagUnused | FlagIRQ
	lo := uint16(c.bus.Read(0xFFFC))
	hi := uint16(c.bus.Read(0xFFFD))
	c.PC = hi<<8 | lo
	c.nmiPending = false
	c.irqLine = false
}

// RequestNMI raises an NMI edge. It is serviced at the next call to
// StepInstruction, before the next opcode is fetched.
func (c *CPU) RequestNMI() {
	c.nmiPending = true
}

// SetIRQLine sets or clears the level-triggered IRQ line.
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
}

func (c *CPU) getFlag(mask uint8) bool { return c.P&mask != 0 }

func (c *CPU) setFlag(mask uint8, set bool) {
	if set {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}

func (c *CPU) setZN(v uint8) {
	c.setFlag(FlagZero, v == 0)
	c.setFlag(FlagNegative, v&0x80 != 0)
}

func (c *CPU) push(v uint8) {
	c.bus.Write(0x0100|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.bus.Read(0x0100 | uint16(c.SP))
}

func (c *CPU) pushWord(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) popWord() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return hi<<8 | lo
}

// StepInstruction services a pending DMA request or NMI if one is latched,
// otherwise fetches, decodes, and executes one instruction, returning the
// number of CPU cycles it consumed.
func (c *CPU) StepInstruction() (uint32, error) {
	if page, pending := c.bus.TakeDMARequest(); pending {
		c.serviceDMA(page)
		return 513, nil
	}
	if c.nmiPending {
		c.nmiPending = false
		c.serviceInterrupt(0xFFFA, false)
		return 7, nil
	}
	if c.irqLine && !c.getFlag(FlagIRQ) {
		c.serviceInterrupt(0xFFFE, false)
		return 7, nil
	}

	opPC := c.PC
	opcode := c.bus.Read(c.PC)
	c.PC++

	info := c.table[opcode]
	if info.name == "" {
		if c.Strict {
			return 0, &UnknownOpcode{Opcode: opcode, PC: opPC}
		}
		// Permissive mode: treat as a bare single-byte NOP.
		return 2, nil
	}

	addr, pageCrossed := c.operandAddress(info.mode)
	extra := c.execute(opcode, info.mode, addr, pageCrossed)
	return uint32(info.cycles) + extra, nil
}

// serviceDMA copies 256 bytes from (page<<8)..+255 through the CPU bus into
// OAM via sequential OAMDATA ($2004) writes, which auto-increment the PPU's
// OAM address starting wherever it currently sits.
func (c *CPU) serviceDMA(page uint8) {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		v := c.bus.Read(base + uint16(i))
		c.bus.Write(0x2004, v)
	}
}

// serviceInterrupt pushes PC and P (unused set; break set only when brk is
// true) and loads PC from the given vector. Shared by NMI, IRQ and BRK;
// NMI and IRQ pass brk=false and leave the break flag clear in the pushed
// copy of P.
func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.pushWord(c.PC)
	p := c.P | FlagUnused
	if brk {
		p |= FlagBreak
	} else {
		p &^= FlagBreak
	}
	c.push(p)
	c.setFlag(FlagIRQ, true)
	lo := uint16(c.bus.Read(vector))
	hi := uint16(c.bus.Read(vector + 1))
	c.PC = hi<<8 | lo
}

// operandAddress resolves the effective address for the given addressing
// mode, advancing PC past the operand bytes and reporting whether indexing
// crossed a page boundary.
func (c *CPU) operandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false
	case Immediate:
		addr := c.PC
		c.PC++
		return addr, false
	case ZeroPage:
		addr := uint16(c.bus.Read(c.PC))
		c.PC++
		return addr, false
	case ZeroPageX:
		addr := uint16(uint8(c.bus.Read(c.PC) + c.X))
		c.PC++
		return addr, false
	case ZeroPageY:
		addr := uint16(uint8(c.bus.Read(c.PC) + c.Y))
		c.PC++
		return addr, false
	case Relative:
		offset := int8(c.bus.Read(c.PC))
		c.PC++
		addr := uint16(int32(c.PC) + int32(offset))
		return addr, (c.PC & 0xFF00) != (addr & 0xFF00)
	case Absolute:
		lo := uint16(c.bus.Read(c.PC))
		hi := uint16(c.bus.Read(c.PC + 1))
		c.PC += 2
		return hi<<8 | lo, false
	case AbsoluteX:
		lo := uint16(c.bus.Read(c.PC))
		hi := uint16(c.bus.Read(c.PC + 1))
		c.PC += 2
		base := hi<<8 | lo
		addr := base + uint16(c.X)
		return addr, (base & 0xFF00) != (addr & 0xFF00)
	case AbsoluteY:
		lo := uint16(c.bus.Read(c.PC))
		hi := uint16(c.bus.Read(c.PC + 1))
		c.PC += 2
		base := hi<<8 | lo
		addr := base + uint16(c.Y)
		return addr, (base & 0xFF00) != (addr & 0xFF00)
	case Indirect: // JMP only; reproduces the page-wrap fetch bug.
		lo := uint16(c.bus.Read(c.PC))
		hi := uint16(c.bus.Read(c.PC + 1))
		c.PC += 2
		ptr := hi<<8 | lo
		var hiPtr uint16
		if ptr&0x00FF == 0x00FF {
			hiPtr = ptr & 0xFF00
		} else {
			hiPtr = ptr + 1
		}
		rLo := uint16(c.bus.Read(ptr))
		rHi := uint16(c.bus.Read(hiPtr))
		return rHi<<8 | rLo, false
	case IndexedIndirect:
		zp := c.bus.Read(c.PC) + c.X
		c.PC++
		lo := uint16(c.bus.Read(uint16(zp)))
		hi := uint16(c.bus.Read(uint16(zp + 1)))
		return hi<<8 | lo, false
	case IndirectIndexed:
		zp := c.bus.Read(c.PC)
		c.PC++
		lo := uint16(c.bus.Read(uint16(zp)))
		hi := uint16(c.bus.Read(uint16(zp + 1)))
		base := hi<<8 | lo
		addr := base + uint16(c.Y)
		return addr, (base & 0xFF00) != (addr & 0xFF00)
	}
	return 0, false
}

func pageCrossPenalty(pageCrossed bool) uint32 {
	if pageCrossed {
		return 1
	}
	return 0
}
