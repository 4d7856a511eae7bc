// Package loader handles program file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
)

var errEmptyProgram = errors.New("program file is empty")

// Loader handles loading program files from disk.
type Loader struct{}

// New creates a new program loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a raw CHIP-8 program image from the given file.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	// read one byte more than fits to detect oversized programs
	image, err := io.ReadAll(io.LimitReader(file, chip8.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	if err := l.validate(image); err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return image, nil
}

// LoadFromBytes validates and copies a program image that is already in memory.
func (l *Loader) LoadFromBytes(data []byte) ([]byte, error) {
	if err := l.validate(data); err != nil {
		return nil, err
	}
	image := make([]byte, len(data))
	copy(image, data)
	return image, nil
}

func (l *Loader) validate(image []byte) error {
	switch {
	case len(image) == 0:
		return errEmptyProgram
	case len(image) > chip8.MaxProgramSize:
		return fmt.Errorf("%w: more than %d bytes", chip8.ErrProgramTooLarge, chip8.MaxProgramSize)
	}
	return nil
}
