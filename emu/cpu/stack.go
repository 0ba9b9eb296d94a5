package cpu

import "fmt"

// StackDepth is the number of return addresses the call stack holds.
const StackDepth = 16

type stack struct {
	entries [StackDepth]uint16
	sp      int
}

func (s *stack) push(addr uint16) error {
	if s.sp == StackDepth {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, StackDepth)
	}
	s.entries[s.sp] = addr
	s.sp++
	return nil
}

func (s *stack) pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.entries[s.sp], nil
}

func (s *stack) len() int {
	return s.sp
}

func (s *stack) reset() {
	s.entries = [StackDepth]uint16{}
	s.sp = 0
}
