// Package cpu implements the CHIP-8 interpreter core: registers, call stack,
// timers and the fetch, decode and execute cycle.
//
// The core owns its memory and state. The display and the keypad are supplied
// by the host and are only reached through the Display and Keypad interfaces.
package cpu

import (
	"fmt"
	"math/rand"
	"time"

	"chyp8/emu/memory"
)

const (
	// ProgramStart is where ROMs are loaded and where execution begins.
	ProgramStart = 0x200

	// FontAddress is where the hexadecimal font is expected in memory.
	FontAddress = 0x000

	// FontHeight is the number of rows of each font glyph.
	FontHeight = 5

	// DisplayWidth and DisplayHeight are the dimensions of the pixel grid.
	DisplayWidth  = 64
	DisplayHeight = 32

	// NumRegisters is the size of the V register file.
	NumRegisters = 16

	flagRegister = 0xF
	addressMask  = 0x0FFF
)

// FontSet is the built-in hexadecimal font, 0 to F, five bytes per glyph.
var FontSet = [80]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Display is the monochrome surface the core draws on.
type Display interface {
	// Clear turns every pixel off.
	Clear()
	// FlipPixel toggles the pixel and reports whether it was on before.
	FlipPixel(x, y int) bool
	// Present commits the pending changes.
	Present()
}

// Keypad reports which keys are held.
type Keypad interface {
	IsPressed(key uint8) bool
}

// State is the execution state of the core.
type State int

const (
	// Running executes one instruction per step.
	Running State = iota
	// AwaitingKey is entered by LD Vx, K and left once a key is held.
	AwaitingKey
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Quirks select between the behaviours of historical interpreters.
type Quirks struct {
	// ShiftUsesVY copies VY into VX before 8XY6 and 8XYE shift. When false
	// VX is shifted in place.
	ShiftUsesVY bool
	// SpriteWraps wraps sprite pixels around the screen edges instead of
	// clipping them.
	SpriteWraps bool
}

// DefaultQuirks is the canonical behaviour.
var DefaultQuirks = Quirks{
	ShiftUsesVY: true,
	SpriteWraps: false,
}

// Options configure a new CPU.
type Options struct {
	Quirks Quirks
	// Seed for the CXNN random source. Zero seeds from the clock.
	Seed int64
}

// DefaultOptions returns the canonical quirks with a clock seeded random source.
func DefaultOptions() Options {
	return Options{Quirks: DefaultQuirks}
}

// CPU is the interpreter core.
type CPU struct {
	opcode     uint16
	memory     *memory.Memory
	V          [NumRegisters]uint8
	I          uint16 // address register
	pc         uint16
	stack      stack
	delayTimer uint8 // counts down at 60Hz
	soundTimer uint8 // same as above
	state      State
	waitReg    uint8 // register receiving the key while awaiting

	display Display
	keys    Keypad
	quirks  Quirks
	rand    *rand.Rand
}

// New returns a CPU in its boot state executing from mem.
func New(mem *memory.Memory, display Display, keys Keypad, opts Options) *CPU {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	c := &CPU{
		memory:  mem,
		display: display,
		keys:    keys,
		quirks:  opts.Quirks,
		rand:    rand.New(rand.NewSource(seed)),
	}
	c.Reset()
	return c
}

// Reset returns registers, stack, timers and state to their boot values.
// Memory is left untouched.
func (c *CPU) Reset() {
	c.opcode = 0
	c.V = [NumRegisters]uint8{}
	c.I = 0
	c.pc = ProgramStart
	c.stack.reset()
	c.delayTimer = 0
	c.soundTimer = 0
	c.state = Running
	c.waitReg = 0
}

// Step executes one instruction. While awaiting a key it only checks the
// keypad. Errors are fatal to the instruction stream: the failing instruction
// leaves no visible change and PC still points at it.
func (c *CPU) Step() error {
	if c.state == AwaitingKey {
		c.resolveKeyWait()
		return nil
	}

	opcode, err := c.memory.ReadWord(c.pc)
	if err != nil {
		return fmt.Errorf("fetching opcode at 0x%04x: %w", c.pc, err)
	}
	c.opcode = opcode

	ins := decode(opcode)
	if ins == nil {
		return &OpcodeError{Opcode: opcode, Offset: int(c.pc) - ProgramStart}
	}

	next, err := ins.execute(c, decodeOperands(opcode))
	if err != nil {
		return fmt.Errorf("%s at 0x%04x: %w", ins.name, c.pc, err)
	}

	switch next {
	case flowNext:
		c.pc += 2
	case flowSkip:
		c.pc += 4
	}
	return nil
}

// Tick decrements both timers if they are non-zero. The host calls it at 60Hz
// regardless of how often Step runs.
func (c *CPU) Tick() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

// resolveKeyWait completes LD Vx, K when a key is held.
func (c *CPU) resolveKeyWait() bool {
	key, ok := lowestPressed(c.keys)
	if !ok {
		return false
	}
	c.V[c.waitReg] = key
	c.state = Running
	c.pc += 2
	return true
}

func lowestPressed(keys Keypad) (uint8, bool) {
	for key := uint8(0); key < 16; key++ {
		if keys.IsPressed(key) {
			return key, true
		}
	}
	return 0, false
}

// PC returns the program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// Opcode returns the last fetched instruction word.
func (c *CPU) Opcode() uint16 {
	return c.opcode
}

// DelayTimer returns the delay timer.
func (c *CPU) DelayTimer() uint8 {
	return c.delayTimer
}

// SoundTimer returns the sound timer.
func (c *CPU) SoundTimer() uint8 {
	return c.soundTimer
}

// State returns the execution state.
func (c *CPU) State() State {
	return c.state
}

// StackLen returns the number of return addresses on the stack.
func (c *CPU) StackLen() int {
	return c.stack.len()
}

// Memory returns the memory the core executes from.
func (c *CPU) Memory() *memory.Memory {
	return c.memory
}

func (c *CPU) String() string {
	return fmt.Sprintf("PC=%04x I=%03x V=% x DT=%02x ST=%02x SP=%d %s",
		c.pc, c.I, c.V[:], c.delayTimer, c.soundTimer, c.stack.len(), c.state)
}
