// Package config handles application configuration and setup
package config

import (
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/frontend/headless"
	"github.com/retroenv/retrochip8/internal/frontend/terminal"
	"github.com/retroenv/retrochip8/internal/frontend/window"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateEntropy returns a reproducible random source for a non zero seed and
// the operating system source otherwise.
func CreateEntropy(seed uint64) chip8.Entropy {
	if seed == 0 {
		return chip8.CryptoEntropy{}
	}
	return chip8.NewSeededEntropy(seed)
}

// CreateMachineOptions converts the emulator options to machine options.
func CreateMachineOptions(opts options.Emulator) []machine.Option {
	return []machine.Option{
		machine.WithFrequency(opts.Frequency),
		machine.WithTrace(opts.Trace),
		machine.WithBreakpoints(opts.Breakpoints...),
	}
}

// CreateFrontend creates the frontend selected by name.
func CreateFrontend(logger *log.Logger, opts options.Emulator) (frontend.Frontend, error) {
	switch opts.Frontend {
	case options.FrontendWindow:
		return window.New(logger, opts.Scale), nil
	case options.FrontendTerminal:
		return terminal.New(logger, os.Stdin, os.Stdout, opts.KeyHold), nil
	case options.FrontendHeadless:
		return headless.New(logger, opts.Frames, os.Stdout), nil
	default:
		return nil, fmt.Errorf("unsupported frontend '%s'", opts.Frontend)
	}
}
