package chip8

import "fmt"

// KeyDown marks the key as pressed. If the interpreter is waiting for a key
// press, the key value is stored in the waiting register and execution resumes.
func (c *Interpreter) KeyDown(key uint8) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: $%02X", ErrInvalidKey, key)
	}

	c.keys[key] = true
	if c.waiting {
		c.registers[c.waitRegister] = key
		c.waiting = false
	}
	return nil
}

// KeyUp marks the key as released. It never ends a wait for a key press.
func (c *Interpreter) KeyUp(key uint8) error {
	if key >= KeyCount {
		return fmt.Errorf("%w: $%02X", ErrInvalidKey, key)
	}
	c.keys[key] = false
	return nil
}

// KeyPressed returns whether the key is currently pressed.
func (c *Interpreter) KeyPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	return c.keys[key]
}

// Waiting returns whether execution is halted until the next key press.
func (c *Interpreter) Waiting() bool {
	return c.waiting
}
