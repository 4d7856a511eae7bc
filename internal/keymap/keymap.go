// Package keymap maps host keyboard keys to the 16 key hexadecimal keypad.
//
// The keypad is laid out on the left side of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
package keymap

import "unicode"

// Binding maps a host key character to a keypad key.
type Binding struct {
	Rune rune
	Key  uint8
}

// Bindings lists all keypad keys in keyboard order, row by row.
var Bindings = [16]Binding{
	{'1', 0x1}, {'2', 0x2}, {'3', 0x3}, {'4', 0xC},
	{'q', 0x4}, {'w', 0x5}, {'e', 0x6}, {'r', 0xD},
	{'a', 0x7}, {'s', 0x8}, {'d', 0x9}, {'f', 0xE},
	{'z', 0xA}, {'x', 0x0}, {'c', 0xB}, {'v', 0xF},
}

// FromRune returns the keypad key for a typed character, case insensitive.
func FromRune(r rune) (uint8, bool) {
	r = unicode.ToLower(r)
	for _, binding := range Bindings {
		if binding.Rune == r {
			return binding.Key, true
		}
	}
	return 0, false
}
