// Package driver implements the presentation layer: an ebiten.Game that
// steps the core forward each frame, maps keyboard input onto the first
// controller port, and blits the framebuffer to the screen.
package driver

import (
	"fmt"
	"image/color"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"

	"nescore/internal/core"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

// cyclesPerFrame approximates one NTSC frame's worth of CPU cycles
// (29780.5, rounded down) driven per ebiten Update call.
const cyclesPerFrame = 29780

var keyMap = map[ebiten.Key]core.Button{
	ebiten.KeyArrowUp:    core.ButtonUp,
	ebiten.KeyArrowDown:  core.ButtonDown,
	ebiten.KeyArrowLeft:  core.ButtonLeft,
	ebiten.KeyArrowRight: core.ButtonRight,
	ebiten.KeyZ:          core.ButtonA,
	ebiten.KeyX:          core.ButtonB,
	ebiten.KeyEnter:      core.ButtonStart,
	ebiten.KeyShift:      core.ButtonSelect,
}

// Game drives a core.Core as an ebiten.Game.
type Game struct {
	emu   *core.Core
	scale int
	image *ebiten.Image

	watchdogInstructions int
}

// NewGame constructs a driver around an already-created core.
func NewGame(emu *core.Core, scale int, watchdogInstructions int) *Game {
	return &Game{
		emu:                  emu,
		scale:                scale,
		image:                ebiten.NewImage(nesWidth, nesHeight),
		watchdogInstructions: watchdogInstructions,
	}
}

// Update applies pressed keys to the first controller port, then steps
// the emulator one frame's worth of CPU instructions and ticks the PPU
// alongside each one.
func (g *Game) Update() error {
	g.pollInput()

	cyclesThisFrame := 0
	instructions := 0
	for cyclesThisFrame < cyclesPerFrame {
		cycles, err := g.emu.StepInstruction()
		if err != nil {
			return fmt.Errorf("cpu halted: %w", err)
		}
		g.emu.TickPPU(cycles)
		cyclesThisFrame += int(cycles)
		instructions++

		if g.watchdogInstructions > 0 && instructions > g.watchdogInstructions {
			glog.Warningf("watchdog: exceeded %d instructions in a single frame, breaking", g.watchdogInstructions)
			break
		}
	}
	return nil
}

func (g *Game) pollInput() {
	for key, button := range keyMap {
		pressed := ebiten.IsKeyPressed(key)
		g.emu.SetButton(0, button, pressed)
	}
}

// Draw copies the core's framebuffer into the ebiten image and blits it
// to the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	fb := g.emu.Framebuffer()
	pix := make([]byte, nesWidth*nesHeight*4)
	for i, px := range fb {
		pix[i*4+0] = byte(px >> 16)
		pix[i*4+1] = byte(px >> 8)
		pix[i*4+2] = byte(px)
		pix[i*4+3] = 255
	}
	g.image.WritePixels(pix)

	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.image, op)
}

// Layout reports the logical screen size: the NES resolution multiplied by
// the configured scale factor, which Draw applies to the image itself.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return nesWidth * g.scale, nesHeight * g.scale
}
