// Package headless implements a frontend that runs a fixed number of frames
// without any host window or terminal.
package headless

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

var _ frontend.Frontend = (*Headless)(nil)

// Headless runs frames as fast as possible.
type Headless struct {
	logger *log.Logger
	frames int
	output io.Writer // optional display dump after the run
}

// New returns a headless frontend that runs the given number of frames and
// writes the final display to output if it is not nil.
func New(logger *log.Logger, frames int, output io.Writer) *Headless {
	return &Headless{
		logger: logger,
		frames: frames,
		output: output,
	}
}

// Run executes the frames. A breakpoint ends the run early.
func (h *Headless) Run(ctx context.Context, m *machine.Machine) error {
	for frame := range h.frames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("running frame %d: %w", frame, err)
		}

		if err := m.RunFrame(); err != nil {
			return fmt.Errorf("running frame %d: %w", frame, err)
		}
		if m.Paused() {
			break
		}
	}

	vm := m.Interpreter()
	h.logger.Info("Run finished",
		log.Int("frames", int(m.Frames())),
		log.Int("cycles", int(m.Cycles())),
		log.Hex("pc", vm.PC()),
		log.Hex("i", vm.Index()))

	if h.output == nil {
		return nil
	}
	if err := frontend.WriteASCII(h.output, m.Framebuffer()); err != nil {
		return fmt.Errorf("writing display: %w", err)
	}
	return nil
}
