package chip8

import "testing"

// sequenceEntropy returns the given values in order and wraps around.
type sequenceEntropy struct {
	values []uint8
	pos    int
}

func (s *sequenceEntropy) RandomByte() uint8 {
	if len(s.values) == 0 {
		return 0
	}
	value := s.values[s.pos%len(s.values)]
	s.pos++
	return value
}

// newTestInterpreter returns an interpreter with the given program loaded
// and an entropy source that always returns 0xFF.
func newTestInterpreter(t *testing.T, program ...byte) *Interpreter {
	t.Helper()

	c, err := New(&sequenceEntropy{values: []uint8{0xFF}}, program)
	if err != nil {
		t.Fatalf("creating interpreter: %v", err)
	}
	return c
}

// runSteps executes the given number of cycles and fails the test on a fault.
func runSteps(t *testing.T, c *Interpreter, steps int) {
	t.Helper()

	for i := range steps {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}
