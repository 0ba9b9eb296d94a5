// Package keypad holds the state of the 16 key hexadecimal keypad.
package keypad

import "time"

// NumKeys is the number of keys on the pad, 0x0 to 0xF.
const NumKeys = 16

// RepeatDuration is how long a key stays down when the host can only report
// presses, as terminals do.
const RepeatDuration = time.Second / 5

// Keypad is the set of currently held keys.
type Keypad struct {
	pressed [NumKeys]bool
}

// New returns a keypad with no keys held.
func New() *Keypad {
	return &Keypad{}
}

// Press marks key as held. Keys outside 0x0-0xF are ignored.
func (k *Keypad) Press(key uint8) {
	if key < NumKeys {
		k.pressed[key] = true
	}
}

// Release marks key as no longer held.
func (k *Keypad) Release(key uint8) {
	if key < NumKeys {
		k.pressed[key] = false
	}
}

// Set presses or releases key.
func (k *Keypad) Set(key uint8, down bool) {
	if down {
		k.Press(key)
	} else {
		k.Release(key)
	}
}

// IsPressed reports whether key is held.
func (k *Keypad) IsPressed(key uint8) bool {
	if key >= NumKeys {
		return false
	}
	return k.pressed[key]
}

// Lowest returns the lowest numbered held key.
func (k *Keypad) Lowest() (uint8, bool) {
	for key := uint8(0); key < NumKeys; key++ {
		if k.pressed[key] {
			return key, true
		}
	}
	return 0, false
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.pressed = [NumKeys]bool{}
}

// Layout maps host keyboard characters to keypad keys. The default follows the
// common QWERTY arrangement of the COSMAC VIP pad:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var Layout = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Lookup returns the keypad key for a host character, ignoring case.
func Lookup(r rune) (uint8, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	key, ok := Layout[r]
	return key, ok
}
