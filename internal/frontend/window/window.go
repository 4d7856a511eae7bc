//go:build !headless

// Package window implements a desktop window frontend with audio output.
package window

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font/basicfont"
)

const (
	keyPause = ebiten.KeyF1
	keyStep  = ebiten.KeyF2
	keyReset = ebiten.KeyF5
	keyQuit  = ebiten.KeyEscape

	bytesPerPixel = 4
)

// ebitenKeys maps the keymap bindings in the same order to ebiten keys.
var ebitenKeys = [len(keymap.Bindings)]ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV,
}

var (
	litColor   = color.RGBA{R: 0xE0, G: 0xF0, B: 0xE0, A: 0xFF}
	unlitColor = color.RGBA{R: 0x10, G: 0x18, B: 0x10, A: 0xFF}
)

var _ frontend.Frontend = (*Window)(nil)

// Window renders the display into a scaled desktop window.
type Window struct {
	logger *log.Logger
	scale  int

	ctx    context.Context
	m      *machine.Machine
	beeper *audio.Beeper

	screen   *ebiten.Image
	pixels   []byte
	version  uint64
	rendered bool
	face     text.Face
}

// New returns a window frontend with the given pixel scale.
func New(logger *log.Logger, scale int) *Window {
	return &Window{
		logger: logger,
		scale:  scale,
		pixels: make([]byte, chip8.DisplayWidth*chip8.DisplayHeight*bytesPerPixel),
		face:   text.NewGoXFace(basicfont.Face7x13),
	}
}

// Run opens the window and runs the machine until the window is closed.
func (w *Window) Run(ctx context.Context, m *machine.Machine) error {
	w.ctx = ctx
	w.m = m

	beeper, err := audio.NewBeeper()
	if err != nil {
		w.logger.Warn("Audio output not available", log.Err(err))
	} else {
		w.beeper = beeper
		defer func() {
			if err := beeper.Close(); err != nil {
				w.logger.Error("Closing audio failed", log.Err(err))
			}
		}()
	}

	ebiten.SetWindowSize(chip8.DisplayWidth*w.scale, chip8.DisplayHeight*w.scale)
	ebiten.SetWindowTitle("retrochip8")
	ebiten.SetTPS(machine.TimerFrequency)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// Update runs one frame of the machine.
func (w *Window) Update() error {
	if w.ctx.Err() != nil || inpututil.IsKeyJustPressed(keyQuit) {
		return ebiten.Termination
	}

	w.handleControlKeys()
	w.queueKeys()

	// a fault leaves the window open with the fault displayed
	if w.m.Fault() == nil {
		_ = w.m.RunFrame()
	}

	if w.beeper != nil {
		w.beeper.SetEnabled(w.m.SoundActive() && !w.m.Paused())
	}
	return nil
}

func (w *Window) handleControlKeys() {
	switch {
	case inpututil.IsKeyJustPressed(keyPause):
		if w.m.Paused() {
			w.m.Resume()
		} else {
			w.m.Pause()
		}

	case inpututil.IsKeyJustPressed(keyStep) && w.m.Paused():
		_ = w.m.StepInstruction()

	case inpututil.IsKeyJustPressed(keyReset):
		if err := w.m.Reset(); err != nil {
			w.logger.Error("Reset failed", log.Err(err))
		}
		w.rendered = false
	}
}

func (w *Window) queueKeys() {
	for i, key := range ebitenKeys {
		switch {
		case inpututil.IsKeyJustPressed(key):
			w.m.QueueKey(keymap.Bindings[i].Key, true)
		case inpututil.IsKeyJustReleased(key):
			w.m.QueueKey(keymap.Bindings[i].Key, false)
		}
	}
}

// Draw renders the display and the status overlay.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.screen == nil {
		w.screen = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
	}

	if version := w.m.FrameVersion(); !w.rendered || version != w.version {
		fillPixels(w.pixels, w.m)
		w.screen.WritePixels(w.pixels)
		w.version = version
		w.rendered = true
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w.scale), float64(w.scale))
	screen.DrawImage(w.screen, op)

	w.drawStatus(screen)
}

func (w *Window) drawStatus(screen *ebiten.Image) {
	var status string
	switch {
	case w.m.Fault() != nil:
		status = w.m.Fault().Error()
	case w.m.Paused():
		status = fmt.Sprintf("PAUSED  PC $%04X  F1 resume  F2 step", w.m.Interpreter().PC())
	default:
		return
	}

	textOpts := &text.DrawOptions{}
	textOpts.GeoM.Translate(4, 4)
	textOpts.ColorScale.ScaleWithColor(color.RGBA{R: 0xFF, G: 0xC0, B: 0x40, A: 0xFF})
	text.Draw(screen, status, w.face, textOpts)
}

// Layout returns the fixed logical screen size.
func (w *Window) Layout(_, _ int) (int, int) {
	return chip8.DisplayWidth * w.scale, chip8.DisplayHeight * w.scale
}

// fillPixels converts the framebuffer to RGBA pixels.
func fillPixels(pixels []byte, m *machine.Machine) {
	for pixel := range m.Framebuffer() {
		c := unlitColor
		if pixel.Bit == 1 {
			c = litColor
		}
		offset := (pixel.Row*chip8.DisplayWidth + pixel.Col) * bytesPerPixel
		pixels[offset] = c.R
		pixels[offset+1] = c.G
		pixels[offset+2] = c.B
		pixels[offset+3] = c.A
	}
}
