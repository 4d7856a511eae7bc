// Package machine drives a CHIP-8 interpreter on behalf of a host frontend.
//
// The machine is the single owner of the interpreter. Frontends queue key
// transitions from any goroutine, the queued events are applied at the start
// of every frame before the instructions of the frame are executed.
package machine

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const (
	// DefaultFrequency is the default number of instructions executed per second.
	DefaultFrequency = 500

	// TimerFrequency is the rate in Hz at which timers are decremented and frames are run.
	TimerFrequency = 60
)

// ErrHalted is returned by RunFrame after the interpreter faulted.
var ErrHalted = errors.New("machine halted")

// noBreakpoint marks that no breakpoint has to be skipped on resume.
const noBreakpoint = -1

type keyEvent struct {
	key     uint8
	pressed bool
}

// Machine runs a CHIP-8 program at a fixed instruction frequency.
type Machine struct {
	logger  *log.Logger
	program []byte
	entropy chip8.Entropy
	vm      *chip8.Interpreter

	frequency   int
	trace       bool
	breakpoints set.Set[uint16]

	mu      sync.Mutex // guards pending only
	pending []keyEvent

	paused         bool
	skipBreakpoint int
	fault          error
	frames         uint64
	cycles         uint64
}

// Option configures a machine.
type Option func(*Machine)

// WithFrequency sets the number of instructions executed per second.
func WithFrequency(hz int) Option {
	return func(m *Machine) {
		m.frequency = hz
	}
}

// WithTrace enables debug logging of every executed instruction.
func WithTrace(enabled bool) Option {
	return func(m *Machine) {
		m.trace = enabled
	}
}

// WithBreakpoints pauses the machine before an instruction at any of the
// given addresses is executed.
func WithBreakpoints(addresses ...uint16) Option {
	return func(m *Machine) {
		for _, address := range addresses {
			m.breakpoints.Add(address)
		}
	}
}

// New creates a machine running the given program.
func New(logger *log.Logger, program []byte, entropy chip8.Entropy, opts ...Option) (*Machine, error) {
	m := &Machine{
		logger:         logger,
		program:        program,
		entropy:        entropy,
		frequency:      DefaultFrequency,
		breakpoints:    set.New[uint16](),
		skipBreakpoint: noBreakpoint,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.frequency < TimerFrequency {
		return nil, fmt.Errorf("instruction frequency %d Hz is below the timer frequency of %d Hz",
			m.frequency, TimerFrequency)
	}

	vm, err := chip8.New(entropy, program)
	if err != nil {
		return nil, fmt.Errorf("creating interpreter: %w", err)
	}
	m.vm = vm
	return m, nil
}

// QueueKey queues a key transition, it is safe to call from any goroutine.
func (m *Machine) QueueKey(key uint8, pressed bool) {
	m.mu.Lock()
	m.pending = append(m.pending, keyEvent{key: key, pressed: pressed})
	m.mu.Unlock()
}

// CyclesPerFrame returns the number of instructions executed per frame.
func (m *Machine) CyclesPerFrame() int {
	return m.frequency / TimerFrequency
}

// RunFrame applies all queued key events, executes one frame worth of
// instructions and decrements the timers. After a fault all further calls
// return an error wrapping ErrHalted and the fault.
func (m *Machine) RunFrame() error {
	if m.fault != nil {
		return fmt.Errorf("%w: %w", ErrHalted, m.fault)
	}

	m.applyInput()
	if m.paused {
		return nil
	}

	for range m.CyclesPerFrame() {
		if m.breakpointHit() {
			return nil
		}
		if err := m.step(); err != nil {
			return err
		}
	}

	m.vm.TickTimers()
	m.frames++
	return nil
}

// StepInstruction executes a single instruction, also while paused.
// Timers are not affected.
func (m *Machine) StepInstruction() error {
	if m.fault != nil {
		return fmt.Errorf("%w: %w", ErrHalted, m.fault)
	}
	m.applyInput()
	m.skipBreakpoint = noBreakpoint
	return m.step()
}

func (m *Machine) step() error {
	pc := m.vm.PC()
	if m.trace && !m.vm.Waiting() {
		m.traceInstruction(pc)
	}

	if err := m.vm.Step(); err != nil {
		m.fault = err
		m.logger.Error("Execution halted",
			log.Hex("pc", pc),
			log.Int("cycle", int(m.cycles)),
			log.Err(err))
		return err
	}

	m.cycles++
	return nil
}

func (m *Machine) breakpointHit() bool {
	if len(m.breakpoints) == 0 || m.vm.Waiting() {
		return false
	}

	pc := m.vm.PC()
	if int(pc) == m.skipBreakpoint {
		m.skipBreakpoint = noBreakpoint
		return false
	}
	if !m.breakpoints.Contains(pc) {
		return false
	}

	m.paused = true
	m.logger.Info("Breakpoint hit", log.Hex("pc", pc))
	return true
}

func (m *Machine) traceInstruction(pc uint16) {
	high, errHigh := m.vm.ReadMemory(pc)
	low, errLow := m.vm.ReadMemory(pc + 1)
	if errHigh != nil || errLow != nil {
		return
	}

	ins, _ := chip8.Decode(uint16(high)<<8 | uint16(low))
	m.logger.Debug("Execute",
		log.Hex("pc", pc),
		log.Hex("i", m.vm.Index()),
		log.String("instruction", ins.String()))
}

// applyInput drains the queued key events into the interpreter.
func (m *Machine) applyInput() {
	m.mu.Lock()
	events := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, event := range events {
		var err error
		if event.pressed {
			err = m.vm.KeyDown(event.key)
		} else {
			err = m.vm.KeyUp(event.key)
		}
		if err != nil {
			m.logger.Warn("Ignoring key event", log.Err(err))
		}
	}
}

// Pause stops execution at the next frame.
func (m *Machine) Pause() {
	m.paused = true
}

// Resume continues execution, a breakpoint at the current address is skipped once.
func (m *Machine) Resume() {
	if m.paused {
		m.skipBreakpoint = int(m.vm.PC())
	}
	m.paused = false
}

// Paused returns whether execution is paused.
func (m *Machine) Paused() bool {
	return m.paused
}

// Reset restarts the program with a fresh interpreter state.
// Queued key events are discarded.
func (m *Machine) Reset() error {
	vm, err := chip8.New(m.entropy, m.program)
	if err != nil {
		return fmt.Errorf("creating interpreter: %w", err)
	}

	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()

	m.vm = vm
	m.fault = nil
	m.paused = false
	m.skipBreakpoint = noBreakpoint
	m.frames = 0
	m.cycles = 0
	m.logger.Info("Machine reset")
	return nil
}

// Fault returns the error that halted the machine, if any.
func (m *Machine) Fault() error {
	return m.fault
}

// Frames returns the number of completed frames.
func (m *Machine) Frames() uint64 {
	return m.frames
}

// Cycles returns the number of executed instructions.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// Framebuffer returns the pixels of the display.
func (m *Machine) Framebuffer() iter.Seq[chip8.Pixel] {
	return m.vm.Framebuffer()
}

// FrameVersion returns a counter that changes whenever the display content changes.
func (m *Machine) FrameVersion() uint64 {
	return m.vm.FrameVersion()
}

// SoundActive returns whether the beeper should currently play.
func (m *Machine) SoundActive() bool {
	return m.vm.SoundActive()
}

// Interpreter returns the driven interpreter for inspection.
func (m *Machine) Interpreter() *chip8.Interpreter {
	return m.vm
}
