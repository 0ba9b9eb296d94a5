package cpu

import (
	"fmt"
	"strings"
)

// flow tells Step how to move PC after a handler ran.
type flow int

const (
	flowNext flow = iota // PC += 2
	flowSkip             // PC += 4
	flowJump             // handler set PC
	flowWait             // PC untouched, core suspended
)

type operands struct {
	x, y, n uint8
	nn      uint8
	nnn     uint16
}

func decodeOperands(opcode uint16) operands {
	return operands{
		x:   uint8(opcode>>8) & 0xF,
		y:   uint8(opcode>>4) & 0xF,
		n:   uint8(opcode) & 0xF,
		nn:  uint8(opcode),
		nnn: opcode & addressMask,
	}
}

type instruction struct {
	name    string
	execute func(c *CPU, o operands) (flow, error)
}

// family is one entry of the dispatch table, keyed by the high nibble. A
// family either holds a single instruction or looks up a secondary table with
// the bits picked by key.
type family struct {
	single *instruction
	key    func(opcode uint16) uint16
	table  map[uint16]*instruction
}

func lowNibble(opcode uint16) uint16 { return opcode & 0x000F }
func lowByte(opcode uint16) uint16   { return opcode & 0x00FF }
func fullWord(opcode uint16) uint16  { return opcode }

var families = [16]family{
	0x0: {key: fullWord, table: map[uint16]*instruction{
		0x00E0: {"CLS", (*CPU).opCLS},
		0x00EE: {"RET", (*CPU).opRET},
	}},
	0x1: {single: &instruction{"JP nnn", (*CPU).opJP}},
	0x2: {single: &instruction{"CALL nnn", (*CPU).opCALL}},
	0x3: {single: &instruction{"SE Vx, nn", (*CPU).opSEByte}},
	0x4: {single: &instruction{"SNE Vx, nn", (*CPU).opSNEByte}},
	0x5: {key: lowNibble, table: map[uint16]*instruction{
		0x0: {"SE Vx, Vy", (*CPU).opSEReg},
	}},
	0x6: {single: &instruction{"LD Vx, nn", (*CPU).opLDByte}},
	0x7: {single: &instruction{"ADD Vx, nn", (*CPU).opADDByte}},
	0x8: {key: lowNibble, table: map[uint16]*instruction{
		0x0: {"LD Vx, Vy", (*CPU).opLDReg},
		0x1: {"OR Vx, Vy", (*CPU).opOR},
		0x2: {"AND Vx, Vy", (*CPU).opAND},
		0x3: {"XOR Vx, Vy", (*CPU).opXOR},
		0x4: {"ADD Vx, Vy", (*CPU).opADDReg},
		0x5: {"SUB Vx, Vy", (*CPU).opSUB},
		0x6: {"SHR Vx, Vy", (*CPU).opSHR},
		0x7: {"SUBN Vx, Vy", (*CPU).opSUBN},
		0xE: {"SHL Vx, Vy", (*CPU).opSHL},
	}},
	0x9: {key: lowNibble, table: map[uint16]*instruction{
		0x0: {"SNE Vx, Vy", (*CPU).opSNEReg},
	}},
	0xA: {single: &instruction{"LD I, nnn", (*CPU).opLDI}},
	0xB: {single: &instruction{"JP V0, nnn", (*CPU).opJPV0}},
	0xC: {single: &instruction{"RND Vx, nn", (*CPU).opRND}},
	0xD: {single: &instruction{"DRW Vx, Vy, n", (*CPU).opDRW}},
	0xE: {key: lowByte, table: map[uint16]*instruction{
		0x9E: {"SKP Vx", (*CPU).opSKP},
		0xA1: {"SKNP Vx", (*CPU).opSKNP},
	}},
	0xF: {key: lowByte, table: map[uint16]*instruction{
		0x07: {"LD Vx, DT", (*CPU).opLDVxDT},
		0x0A: {"LD Vx, K", (*CPU).opLDVxK},
		0x15: {"LD DT, Vx", (*CPU).opLDDTVx},
		0x18: {"LD ST, Vx", (*CPU).opLDSTVx},
		0x1E: {"ADD I, Vx", (*CPU).opADDI},
		0x29: {"LD F, Vx", (*CPU).opLDF},
		0x33: {"LD B, Vx", (*CPU).opLDB},
		0x55: {"LD [I], Vx", (*CPU).opStore},
		0x65: {"LD Vx, [I]", (*CPU).opLoad},
	}},
}

// decode returns the instruction for opcode, or nil if there is none.
func decode(opcode uint16) *instruction {
	f := families[opcode>>12]
	if f.table == nil {
		return f.single
	}
	return f.table[f.key(opcode)]
}

// Mnemonic returns the assembly form of opcode, such as "ADD V1, 0x2A". The
// second return value is false for words that are not instructions.
func Mnemonic(opcode uint16) (string, bool) {
	ins := decode(opcode)
	if ins == nil {
		return fmt.Sprintf("DW 0x%04X", opcode), false
	}
	o := decodeOperands(opcode)
	r := strings.NewReplacer(
		"Vx", fmt.Sprintf("V%X", o.x),
		"Vy", fmt.Sprintf("V%X", o.y),
		"nnn", fmt.Sprintf("0x%03X", o.nnn),
		"nn", fmt.Sprintf("0x%02X", o.nn),
		"n", fmt.Sprintf("%d", o.n),
	)
	return r.Replace(ins.name), true
}

func (c *CPU) opCLS(_ operands) (flow, error) {
	c.display.Clear()
	return flowNext, nil
}

func (c *CPU) opRET(_ operands) (flow, error) {
	addr, err := c.stack.pop()
	if err != nil {
		return flowNext, err
	}
	c.pc = addr
	return flowJump, nil
}

func (c *CPU) opJP(o operands) (flow, error) {
	c.pc = o.nnn
	return flowJump, nil
}

// the return address pushed is the instruction after the call
func (c *CPU) opCALL(o operands) (flow, error) {
	if err := c.stack.push(c.pc + 2); err != nil {
		return flowNext, err
	}
	c.pc = o.nnn
	return flowJump, nil
}

func skipIf(cond bool) flow {
	if cond {
		return flowSkip
	}
	return flowNext
}

func (c *CPU) opSEByte(o operands) (flow, error) {
	return skipIf(c.V[o.x] == o.nn), nil
}

func (c *CPU) opSNEByte(o operands) (flow, error) {
	return skipIf(c.V[o.x] != o.nn), nil
}

func (c *CPU) opSEReg(o operands) (flow, error) {
	return skipIf(c.V[o.x] == c.V[o.y]), nil
}

func (c *CPU) opSNEReg(o operands) (flow, error) {
	return skipIf(c.V[o.x] != c.V[o.y]), nil
}

func (c *CPU) opLDByte(o operands) (flow, error) {
	c.V[o.x] = o.nn
	return flowNext, nil
}

// no carry flag
func (c *CPU) opADDByte(o operands) (flow, error) {
	c.V[o.x] += o.nn
	return flowNext, nil
}

func (c *CPU) opLDReg(o operands) (flow, error) {
	c.V[o.x] = c.V[o.y]
	return flowNext, nil
}

func (c *CPU) opOR(o operands) (flow, error) {
	c.V[o.x] |= c.V[o.y]
	return flowNext, nil
}

func (c *CPU) opAND(o operands) (flow, error) {
	c.V[o.x] &= c.V[o.y]
	return flowNext, nil
}

func (c *CPU) opXOR(o operands) (flow, error) {
	c.V[o.x] ^= c.V[o.y]
	return flowNext, nil
}

// setWithFlag stores the result before the flag so that VF always ends up
// holding the flag, even when it is also the destination.
func (c *CPU) setWithFlag(x, result, flag uint8) {
	c.V[x] = result
	c.V[flagRegister] = flag
}

func boolFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) opADDReg(o operands) (flow, error) {
	sum := uint16(c.V[o.x]) + uint16(c.V[o.y])
	c.setWithFlag(o.x, uint8(sum), boolFlag(sum > 0xFF))
	return flowNext, nil
}

// VF is 1 when no borrow occurs
func (c *CPU) opSUB(o operands) (flow, error) {
	vx, vy := c.V[o.x], c.V[o.y]
	c.setWithFlag(o.x, vx-vy, boolFlag(vx >= vy))
	return flowNext, nil
}

func (c *CPU) opSUBN(o operands) (flow, error) {
	vx, vy := c.V[o.x], c.V[o.y]
	c.setWithFlag(o.x, vy-vx, boolFlag(vy >= vx))
	return flowNext, nil
}

func (c *CPU) shiftSource(o operands) uint8 {
	if c.quirks.ShiftUsesVY {
		return c.V[o.y]
	}
	return c.V[o.x]
}

func (c *CPU) opSHR(o operands) (flow, error) {
	src := c.shiftSource(o)
	c.setWithFlag(o.x, src>>1, src&0x01)
	return flowNext, nil
}

func (c *CPU) opSHL(o operands) (flow, error) {
	src := c.shiftSource(o)
	c.setWithFlag(o.x, src<<1, src>>7)
	return flowNext, nil
}

func (c *CPU) opLDI(o operands) (flow, error) {
	c.I = o.nnn
	return flowNext, nil
}

func (c *CPU) opJPV0(o operands) (flow, error) {
	c.pc = o.nnn + uint16(c.V[0])
	return flowJump, nil
}

func (c *CPU) opRND(o operands) (flow, error) {
	c.V[o.x] = uint8(c.rand.Intn(256)) & o.nn
	return flowNext, nil
}

// opDRW XORs an n row sprite from memory at I onto the display at (VX, VY).
// The whole sprite is read before the display is touched.
func (c *CPU) opDRW(o operands) (flow, error) {
	sprite, err := c.memory.Slice(c.I, int(o.n))
	if err != nil {
		return flowNext, err
	}

	originX := int(c.V[o.x]) % DisplayWidth
	originY := int(c.V[o.y]) % DisplayHeight

	var collision bool
	for row, bits := range sprite {
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}

			x, y := originX+col, originY+row
			if c.quirks.SpriteWraps {
				x %= DisplayWidth
				y %= DisplayHeight
			} else if x >= DisplayWidth || y >= DisplayHeight {
				continue
			}

			if c.display.FlipPixel(x, y) {
				collision = true
			}
		}
	}

	c.V[flagRegister] = boolFlag(collision)
	c.display.Present()
	return flowNext, nil
}

func (c *CPU) opSKP(o operands) (flow, error) {
	return skipIf(c.keys.IsPressed(c.V[o.x])), nil
}

func (c *CPU) opSKNP(o operands) (flow, error) {
	return skipIf(!c.keys.IsPressed(c.V[o.x])), nil
}

func (c *CPU) opLDVxDT(o operands) (flow, error) {
	c.V[o.x] = c.delayTimer
	return flowNext, nil
}

// opLDVxK suspends the core until a key is held. A key already held resolves
// the wait straight away.
func (c *CPU) opLDVxK(o operands) (flow, error) {
	c.state = AwaitingKey
	c.waitReg = o.x
	c.resolveKeyWait()
	return flowWait, nil
}

func (c *CPU) opLDDTVx(o operands) (flow, error) {
	c.delayTimer = c.V[o.x]
	return flowNext, nil
}

func (c *CPU) opLDSTVx(o operands) (flow, error) {
	c.soundTimer = c.V[o.x]
	return flowNext, nil
}

// wraps within 12 bits, VF is left alone
func (c *CPU) opADDI(o operands) (flow, error) {
	c.I = (c.I + uint16(c.V[o.x])) & addressMask
	return flowNext, nil
}

func (c *CPU) opLDF(o operands) (flow, error) {
	c.I = (FontAddress + uint16(c.V[o.x])*FontHeight) & addressMask
	return flowNext, nil
}

func (c *CPU) opLDB(o operands) (flow, error) {
	v := c.V[o.x]
	return flowNext, c.writeBlock([]uint8{v / 100, (v / 10) % 10, v % 10})
}

func (c *CPU) opStore(o operands) (flow, error) {
	return flowNext, c.writeBlock(c.V[:o.x+1])
}

func (c *CPU) opLoad(o operands) (flow, error) {
	data, err := c.memory.Slice(c.I, int(o.x)+1)
	if err != nil {
		return flowNext, err
	}
	copy(c.V[:], data)
	return flowNext, nil
}

// writeBlock stores data at I, I+1, ... and writes nothing unless all of it
// fits.
func (c *CPU) writeBlock(data []uint8) error {
	if _, err := c.memory.Slice(c.I, len(data)); err != nil {
		return err
	}
	for i, b := range data {
		if err := c.memory.Write(c.I+uint16(i), b); err != nil {
			return err
		}
	}
	return nil
}
