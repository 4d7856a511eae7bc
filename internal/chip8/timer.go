package chip8

// TickTimers decrements the delay and sound timers, it is expected to be
// called at 60 Hz independent of the instruction frequency.
func (c *Interpreter) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

// SoundActive returns whether the sound timer is running and a tone should play.
func (c *Interpreter) SoundActive() bool {
	return c.soundTimer > 0
}
