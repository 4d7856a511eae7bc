package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is returned when a program does not fit into memory.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrNilEntropy is returned when no entropy source was passed to New.
	ErrNilEntropy = errors.New("missing entropy source")
	// ErrUnknownOpcode is returned for instruction words that match no known opcode.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrStackOverflow is returned for a call with a full call stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned for a return with an empty call stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrOutOfBounds is returned for memory accesses past the end of memory.
	ErrOutOfBounds = errors.New("memory access out of bounds")
	// ErrInvalidKey is returned for key values outside of the hex keypad range.
	ErrInvalidKey = errors.New("invalid key")
)

// Fault describes an execution error of a single cycle.
type Fault struct {
	PC   uint16 // address of the faulting instruction
	Word uint16 // instruction word, zero if it could not be fetched
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at $%04X (opcode $%04X): %v", f.PC, f.Word, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
