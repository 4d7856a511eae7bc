// Package terminal implements a frontend that renders the display with ANSI
// half block characters and reads keys from a raw mode terminal.
package terminal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
	keyPause  = ' '

	ansiHome       = "\x1b[H"
	ansiClear      = "\x1b[2J"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
	bell           = "\a"
)

var _ frontend.Frontend = (*Terminal)(nil)

var errNotTerminal = errors.New("input is not a terminal")

// Terminal runs a machine inside of a terminal.
type Terminal struct {
	logger *log.Logger
	input  *os.File
	output io.Writer
	hold   time.Duration

	// terminals only report key presses, keys are released after the hold time
	releaseAt [chip8.KeyCount]time.Time

	version     uint64
	soundActive bool
	status      string
}

// New returns a terminal frontend. Keys are released after the hold time
// unless the terminal repeats them.
func New(logger *log.Logger, input *os.File, output io.Writer, hold time.Duration) *Terminal {
	return &Terminal{
		logger: logger,
		input:  input,
		output: output,
		hold:   hold,
	}
}

// Run switches the terminal into raw mode and runs the machine at the timer
// frequency until a lone Escape or Ctrl-C is pressed.
func (t *Terminal) Run(ctx context.Context, m *machine.Machine) error {
	fd := int(t.input.Fd())
	if !term.IsTerminal(fd) {
		return errNotTerminal
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("setting terminal raw mode: %w", err)
	}
	defer func() {
		_, _ = io.WriteString(t.output, ansiShowCursor+"\r\n")
		_ = term.Restore(fd, oldState)
	}()

	if _, err := io.WriteString(t.output, ansiClear+ansiHideCursor); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}

	keys := make(chan []byte, 16)
	done := make(chan struct{})
	defer close(done)
	go readKeys(t.input, keys, done)

	ticker := time.NewTicker(time.Second / machine.TimerFrequency)
	defer ticker.Stop()

	t.version = m.FrameVersion() + 1 // force initial render
	for {
		select {
		case <-ctx.Done():
			return nil

		case input, ok := <-keys:
			if !ok {
				return nil
			}
			if quit := t.handleInput(m, input, time.Now()); quit {
				return nil
			}

		case now := <-ticker.C:
			if err := t.frame(m, now); err != nil {
				return err
			}
		}
	}
}

// readKeys forwards the bytes of every read from the input, the channel is
// closed on read errors. The goroutine ends with the first read or send after
// done is closed.
func readKeys(input io.Reader, keys chan<- []byte, done <-chan struct{}) {
	defer close(keys)

	buf := make([]byte, 32)
	for {
		n, err := input.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case keys <- data:
		case <-done:
			return
		}
	}
}

// handleInput processes the bytes of a single read and returns whether the
// program should quit. Escape sequences of arrow and function keys arrive in
// one read and are ignored, only a lone Escape quits.
func (t *Terminal) handleInput(m *machine.Machine, input []byte, now time.Time) bool {
	for i, b := range input {
		if b == keyEscape {
			// a sequence continues after the escape byte
			return i == len(input)-1
		}
		if quit := t.handleKey(m, b, now); quit {
			return true
		}
	}
	return false
}

// handleKey processes a key byte and returns whether the program should quit.
func (t *Terminal) handleKey(m *machine.Machine, b byte, now time.Time) bool {
	switch b {
	case keyCtrlC:
		return true

	case keyPause:
		if m.Paused() {
			m.Resume()
		} else {
			m.Pause()
		}
		return false
	}

	key, ok := keymap.FromRune(rune(b))
	if !ok {
		return false
	}

	// repeated keys only extend the hold time
	if t.releaseAt[key].IsZero() {
		m.QueueKey(key, true)
	}
	t.releaseAt[key] = now.Add(t.hold)
	return false
}

// releaseKeys releases all keys whose hold time expired.
func (t *Terminal) releaseKeys(m *machine.Machine, now time.Time) {
	for key, deadline := range t.releaseAt {
		if deadline.IsZero() || now.Before(deadline) {
			continue
		}
		t.releaseAt[key] = time.Time{}
		m.QueueKey(uint8(key), false)
	}
}

func (t *Terminal) frame(m *machine.Machine, now time.Time) error {
	t.releaseKeys(m, now)

	if err := m.RunFrame(); err != nil {
		t.status = err.Error()
		_ = t.render(m)
		return fmt.Errorf("running frame: %w", err)
	}

	switch {
	case m.Paused():
		t.status = "paused, press space to resume"
	default:
		t.status = ""
	}

	sound := m.SoundActive()
	if sound && !t.soundActive {
		if _, err := io.WriteString(t.output, bell); err != nil {
			return fmt.Errorf("writing to terminal: %w", err)
		}
	}
	t.soundActive = sound

	return t.render(m)
}

func (t *Terminal) render(m *machine.Machine) error {
	version := m.FrameVersion()
	if version == t.version && t.status == "" {
		return nil
	}
	t.version = version

	var buf bytes.Buffer
	buf.WriteString(ansiHome)
	renderHalfBlocks(&buf, m.Interpreter())
	buf.WriteString("\x1b[2K")
	buf.WriteString(t.status)
	buf.WriteString("\r\n")

	if _, err := t.output.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

// renderHalfBlocks renders two display rows per text line.
func renderHalfBlocks(buf *bytes.Buffer, vm *chip8.Interpreter) {
	for row := 0; row < chip8.DisplayHeight; row += 2 {
		for col := range chip8.DisplayWidth {
			top := vm.PixelAt(row, col)
			bottom := vm.PixelAt(row+1, col)

			switch {
			case top && bottom:
				buf.WriteString("█")
			case top:
				buf.WriteString("▀")
			case bottom:
				buf.WriteString("▄")
			default:
				buf.WriteByte(' ')
			}
		}
		buf.WriteString("\r\n")
	}
}
