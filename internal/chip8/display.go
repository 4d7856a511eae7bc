package chip8

import "iter"

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Pixel is a single framebuffer pixel. Bit is 1 for a lit pixel and 0 for an unset one.
type Pixel struct {
	Row int
	Col int
	Bit uint8
}

// display is the monochrome framebuffer, one 64 bit word per row with
// column 0 stored in the most significant bit.
type display struct {
	rows    [DisplayHeight]uint64
	version uint64
}

func columnMask(col int) uint64 {
	return 1 << (DisplayWidth - 1 - col)
}

func (d *display) clear() {
	d.rows = [DisplayHeight]uint64{}
	d.version++
}

func (d *display) lit(row, col int) bool {
	return d.rows[row]&columnMask(col) != 0
}

// blit XORs the sprite onto the framebuffer at the given origin and reports
// whether any lit pixel got cleared. Sprite parts outside of the display are
// clipped, coordinates do not wrap around.
func (d *display) blit(originX, originY int, sprite []uint8) bool {
	collision := false
	changed := false

	for r, data := range sprite {
		row := originY + r
		if row >= DisplayHeight {
			continue
		}

		for b := range 8 {
			col := originX + b
			if col >= DisplayWidth {
				break
			}
			if data&(0x80>>b) == 0 {
				continue
			}

			mask := columnMask(col)
			if d.rows[row]&mask != 0 {
				collision = true
			}
			d.rows[row] ^= mask
			changed = true
		}
	}

	if changed {
		d.version++
	}
	return collision
}

// draw implements Dxyn, n sprite rows are read from memory starting at I.
func (c *Interpreter) draw(x, y, n uint8) error {
	if err := checkRange(c.index, int(n)); err != nil {
		return err
	}

	originX := int(c.registers[x])
	originY := int(c.registers[y])
	sprite := c.memory[c.index : int(c.index)+int(n)]

	c.registers[FlagRegister] = 0
	if c.display.blit(originX, originY, sprite) {
		c.registers[FlagRegister] = 1
	}
	return nil
}

// Framebuffer returns all pixels of the display in row-major order.
// The sequence reads the current state lazily and can be iterated repeatedly.
func (c *Interpreter) Framebuffer() iter.Seq[Pixel] {
	return func(yield func(Pixel) bool) {
		for row := range DisplayHeight {
			for col := range DisplayWidth {
				var bit uint8
				if c.display.lit(row, col) {
					bit = 1
				}
				if !yield(Pixel{Row: row, Col: col, Bit: bit}) {
					return
				}
			}
		}
	}
}

// PixelAt returns whether the pixel at the given position is lit.
// Positions outside of the display are never lit.
func (c *Interpreter) PixelAt(row, col int) bool {
	if row < 0 || row >= DisplayHeight || col < 0 || col >= DisplayWidth {
		return false
	}
	return c.display.lit(row, col)
}

// FrameVersion returns a counter that changes whenever the framebuffer content
// changes, hosts can use it to skip redrawing unchanged frames.
func (c *Interpreter) FrameVersion() uint64 {
	return c.display.version
}
