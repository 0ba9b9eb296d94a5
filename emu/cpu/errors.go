package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode is matched by every *OpcodeError.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrStackOverflow is returned by a call with a full stack.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is returned by a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
)

// OpcodeError reports an instruction word that matches no dispatch entry.
type OpcodeError struct {
	Opcode uint16
	// Offset is the address of the opcode relative to ProgramStart, which
	// lines up with the offset inside the ROM file.
	Offset int
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode: %04x at ROM offset 0x%03x", e.Opcode, e.Offset)
}

// Is makes errors.Is(err, ErrUnknownOpcode) hold for opcode errors.
func (e *OpcodeError) Is(target error) bool {
	return target == ErrUnknownOpcode
}
