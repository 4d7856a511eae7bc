// Package options contains the program options.
package options

import (
	"time"

	"github.com/retroenv/retrogolib/arch"
)

// Frontend names.
const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"
)

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input ROM file"`
	Output string `flag:"o" usage:"output .asm file (default: stdout)"`
	Batch  string `flag:"batch" usage:"batch disassemble files matching pattern (e.g. *.ch8)"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend    string `flag:"f" usage:"frontend: window, terminal, headless" default:"window"`
	System      string `flag:"s" usage:"target system (default: auto-detect)"`
	Frequency   int    `flag:"hz" usage:"instructions per second" default:"500"`
	Frames      int    `flag:"frames" usage:"frames to run in headless mode" default:"600"`
	Seed        uint64 `flag:"seed" usage:"random seed, 0 uses OS entropy"`
	Scale       int    `flag:"scale" usage:"window pixel scale" default:"10"`
	KeyHold     int    `flag:"hold" usage:"terminal key hold time in ms" default:"150"`
	Breakpoints string `flag:"break" usage:"comma separated hex breakpoint addresses"`
	Disassemble bool   `flag:"disasm" usage:"disassemble instead of running"`
	Verify      bool   `flag:"verify" usage:"verify that the disassembly recreates the program"`
	Trace       bool   `flag:"trace" usage:"log every executed instruction"`
	Debug       bool   `flag:"debug" usage:"enable debug logging"`
	Quiet       bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains disassembly output formatting options.
type OutputFlags struct {
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit addresses in comments"`
	ZeroBytes     bool `flag:"z" usage:"include trailing zero bytes"`
}

// Program options.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	System arch.System

	HexComments    bool
	OffsetComments bool
	ZeroBytes      bool
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler(system string) Disassembler {
	return Disassembler{
		System: arch.System(system),

		HexComments:    true,
		OffsetComments: true,
	}
}

// Emulator defines options to control program execution.
type Emulator struct {
	Frontend    string
	Frequency   int
	Frames      int
	Seed        uint64
	Scale       int
	KeyHold     time.Duration
	Breakpoints []uint16
	Trace       bool
}
