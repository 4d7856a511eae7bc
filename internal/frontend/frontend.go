// Package frontend defines the interface of the host frontends that drive a machine.
package frontend

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/machine"
)

// Frontend runs a machine until the program is quit, the context is canceled
// or execution faults.
type Frontend interface {
	Run(ctx context.Context, m *machine.Machine) error
}

// WriteASCII writes the framebuffer as text, one line per display row.
func WriteASCII(w io.Writer, pixels iter.Seq[chip8.Pixel]) error {
	line := make([]byte, 0, chip8.DisplayWidth+1)

	for pixel := range pixels {
		if pixel.Bit == 1 {
			line = append(line, '#')
		} else {
			line = append(line, '.')
		}

		if pixel.Col == chip8.DisplayWidth-1 {
			line = append(line, '\n')
			if _, err := w.Write(line); err != nil {
				return fmt.Errorf("writing display row %d: %w", pixel.Row, err)
			}
			line = line[:0]
		}
	}
	return nil
}
