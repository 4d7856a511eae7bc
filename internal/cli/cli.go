// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
)

var frontends = []string{options.FrontendWindow, options.FrontendTerminal, options.FrontendHeadless}

// ParseFlags parses command line flags and returns program, disassembler and emulator options
func ParseFlags() (options.Program, options.Disassembler, options.Emulator, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil {
		return opts, options.Disassembler{}, options.Emulator{}, &UsageError{flags: flags, msg: err.Error()}
	}
	if len(args) == 0 && opts.Input == "" && opts.Batch == "" {
		return opts, options.Disassembler{}, options.Emulator{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Disassembler{}, options.Emulator{}, err
	}

	if len(args) > 0 && opts.Batch == "" {
		opts.Input = args[0]
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Disassembler{}, options.Emulator{}, err
	}

	emulatorOptions, err := createEmulatorOptions(opts)
	if err != nil {
		return opts, options.Disassembler{}, options.Emulator{}, err
	}

	return opts, createDisasmOptions(opts), emulatorOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage information and all flag defaults.
func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retrochip8 [options] <program file>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	if !slices.Contains(frontends, opts.Frontend) {
		return fmt.Errorf("unsupported frontend: %s. Valid options: %s",
			opts.Frontend, strings.Join(frontends, ", "))
	}

	if opts.Frequency < machine.TimerFrequency {
		return fmt.Errorf("instruction frequency must be at least %d Hz", machine.TimerFrequency)
	}
	if opts.Scale < 1 {
		return fmt.Errorf("invalid window scale %d", opts.Scale)
	}
	if opts.Frames < 1 {
		return fmt.Errorf("invalid frame count %d", opts.Frames)
	}
	if opts.KeyHold < 1 {
		return fmt.Errorf("invalid key hold time %d", opts.KeyHold)
	}
	return nil
}

// createDisasmOptions creates disassembler options based on program options
func createDisasmOptions(opts options.Program) options.Disassembler {
	disasmOptions := options.NewDisassembler(opts.System)
	disasmOptions.HexComments = !opts.NoHexComments
	disasmOptions.OffsetComments = !opts.NoOffsets
	disasmOptions.ZeroBytes = opts.ZeroBytes
	return disasmOptions
}

// createEmulatorOptions creates emulator options based on program options
func createEmulatorOptions(opts options.Program) (options.Emulator, error) {
	breakpoints, err := parseBreakpoints(opts.Breakpoints)
	if err != nil {
		return options.Emulator{}, err
	}

	return options.Emulator{
		Frontend:    opts.Frontend,
		Frequency:   opts.Frequency,
		Frames:      opts.Frames,
		Seed:        opts.Seed,
		Scale:       opts.Scale,
		KeyHold:     time.Duration(opts.KeyHold) * time.Millisecond,
		Breakpoints: breakpoints,
		Trace:       opts.Trace,
	}, nil
}

// parseBreakpoints parses a comma separated list of hex addresses with
// optional $ or 0x prefix.
func parseBreakpoints(s string) ([]uint16, error) {
	if s == "" {
		return nil, nil
	}

	var addresses []uint16
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		field = strings.TrimPrefix(field, "$")
		field = strings.TrimPrefix(strings.ToLower(field), "0x")

		address, err := strconv.ParseUint(field, 16, 12)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint address '%s': %w", field, err)
		}
		addresses = append(addresses, uint16(address))
	}
	return addresses, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input program file")
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "disassemble a batch of given path and file mask with automatic .asm file naming, for example *.ch8")
	flags.StringVar(&opts.Frontend, "f", options.FrontendWindow, "frontend to run the program in (window/terminal/headless)")
	flags.StringVar(&opts.System, "s", "", "system of the program (chip8) - if not auto-detected from file extension")
	flags.IntVar(&opts.Frequency, "hz", machine.DefaultFrequency, "instructions executed per second")
	flags.IntVar(&opts.Frames, "frames", 600, "number of frames to run in headless mode")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the random number generator, 0 uses the operating system entropy")
	flags.IntVar(&opts.Scale, "scale", 10, "pixel scale of the window frontend")
	flags.IntVar(&opts.KeyHold, "hold", 150, "time in ms that a key stays pressed in the terminal frontend")
	flags.StringVar(&opts.Breakpoints, "break", "", "comma separated list of hex addresses to pause execution at, for example 200,2a4")
	flags.BoolVar(&opts.Disassemble, "disasm", false, "output the disassembly of the program instead of running it")
	flags.BoolVar(&opts.Verify, "verify", false, "verify that the disassembly recreates the exact program image")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, requires -debug")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output addresses in comments")
	flags.BoolVar(&opts.ZeroBytes, "z", false, "output the trailing zero bytes of the program")
}
