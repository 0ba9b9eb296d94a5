package keypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPressRelease(t *testing.T) {
	k := New()
	assert.False(t, k.IsPressed(0xA))

	k.Press(0xA)
	assert.True(t, k.IsPressed(0xA))

	k.Release(0xA)
	assert.False(t, k.IsPressed(0xA))

	k.Set(0x3, true)
	assert.True(t, k.IsPressed(0x3))
	k.Set(0x3, false)
	assert.False(t, k.IsPressed(0x3))
}

func TestOutOfRangeKeys(t *testing.T) {
	k := New()
	k.Press(0x10)
	assert.False(t, k.IsPressed(0x10))

	_, ok := k.Lowest()
	assert.False(t, ok)
}

func TestLowest(t *testing.T) {
	k := New()
	k.Press(0xF)
	k.Press(0x7)
	k.Press(0xC)

	key, ok := k.Lowest()
	assert.True(t, ok)
	assert.Equal(t, uint8(0x7), key)

	k.Reset()
	_, ok = k.Lowest()
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		r   rune
		key uint8
		ok  bool
	}{
		{'1', 0x1, true},
		{'4', 0xC, true},
		{'q', 0x4, true},
		{'Q', 0x4, true},
		{'x', 0x0, true},
		{'V', 0xF, true},
		{'p', 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			key, ok := Lookup(tt.r)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestLayoutCoversEveryKey(t *testing.T) {
	seen := map[uint8]bool{}
	for _, key := range Layout {
		seen[key] = true
	}
	assert.Len(t, seen, NumKeys)
}
