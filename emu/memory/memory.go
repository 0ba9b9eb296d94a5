// Package memory implements the flat byte addressable RAM of the machine.
package memory

import (
	"errors"
	"fmt"
)

const (
	// Size is the canonical CHIP-8 memory size.
	Size = 4096

	// LegacySize is the capacity used by an early interpreter revision. It is
	// kept selectable so ROMs tuned against it can still be run.
	LegacySize = 4069
)

var (
	// ErrCapacityExceeded is returned when a load would run past the end of memory.
	ErrCapacityExceeded = errors.New("memory capacity exceeded")

	// ErrOutOfBounds is returned for reads and writes outside of memory.
	ErrOutOfBounds = errors.New("memory address out of bounds")
)

// Memory is a fixed capacity byte store.
type Memory struct {
	data []uint8
}

// New returns zeroed memory of the given capacity. A capacity of 0 selects Size.
func New(capacity int) *Memory {
	if capacity <= 0 {
		capacity = Size
	}
	return &Memory{
		data: make([]uint8, capacity),
	}
}

// Capacity returns the number of addressable bytes.
func (m *Memory) Capacity() int {
	return len(m.data)
}

// Load copies data into memory starting at offset. Nothing is written if the
// data does not fit.
func (m *Memory) Load(data []byte, offset int) error {
	if offset < 0 || offset+len(data) > len(m.data) {
		return fmt.Errorf("%w: %d bytes at offset 0x%03x, capacity %d",
			ErrCapacityExceeded, len(data), offset, len(m.data))
	}
	copy(m.data[offset:], data)
	return nil
}

// Read returns the byte at addr.
func (m *Memory) Read(addr uint16) (uint8, error) {
	if int(addr) >= len(m.data) {
		return 0, fmt.Errorf("%w: read at 0x%04x", ErrOutOfBounds, addr)
	}
	return m.data[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr uint16, value uint8) error {
	if int(addr) >= len(m.data) {
		return fmt.Errorf("%w: write at 0x%04x", ErrOutOfBounds, addr)
	}
	m.data[addr] = value
	return nil
}

// ReadWord returns the big-endian 16 bit word at addr and addr+1.
func (m *Memory) ReadWord(addr uint16) (uint16, error) {
	hi, err := m.Read(addr)
	if err != nil {
		return 0, err
	}
	lo, err := m.Read(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// Slice returns a copy of length bytes starting at addr.
func (m *Memory) Slice(addr uint16, length int) ([]uint8, error) {
	if length < 0 || int(addr)+length > len(m.data) {
		return nil, fmt.Errorf("%w: %d bytes at 0x%04x", ErrOutOfBounds, length, addr)
	}
	out := make([]uint8, length)
	copy(out, m.data[addr:])
	return out, nil
}
