// Package machine runs the interpreter core against a frontend.
//
// The core executes at the configured clock while the timers, the display
// and the input are serviced at the refresh rate. Everything runs on the
// calling goroutine.
package machine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"chyp8/config"
	"chyp8/emu/audio"
	"chyp8/emu/cpu"
	"chyp8/emu/keypad"
	"chyp8/emu/memory"
	"chyp8/emu/screen"

	"github.com/retroenv/retrogolib/log"
)

// Machine owns one interpreter and its peripherals.
type Machine struct {
	cfg    config.Config
	logger *log.Logger

	memory  *memory.Memory
	display *screen.Framebuffer
	keys    *keypad.Keypad
	cpu     *cpu.CPU

	frontend screen.Frontend
	beeper   audio.Beeper

	cycles  uint64
	romSize int
}

// New builds a machine with the default font loaded and no program.
func New(cfg config.Config, logger *log.Logger, frontend screen.Frontend, beeper audio.Beeper) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if beeper == nil {
		beeper = audio.Silent{}
	}

	m := &Machine{
		cfg:      cfg,
		logger:   logger,
		memory:   memory.New(cfg.Memory),
		display:  screen.NewFramebuffer(),
		keys:     keypad.New(),
		frontend: frontend,
		beeper:   beeper,
	}
	m.cpu = cpu.New(m.memory, m.display, m.keys, cfg.CPUOptions())

	if err := m.LoadFont(nil); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFont copies a font into memory at cpu.FontAddress. A nil font selects
// the built-in hex digits.
func (m *Machine) LoadFont(font []byte) error {
	if font == nil {
		font = cpu.FontSet[:]
	}
	if err := m.memory.Load(font, cpu.FontAddress); err != nil {
		return fmt.Errorf("loading font: %w", err)
	}
	return nil
}

// LoadFontFile loads a font from disk.
func (m *Machine) LoadFontFile(path string) error {
	font, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading font: %w", err)
	}
	return m.LoadFont(font)
}

// LoadROM copies a program to cpu.ProgramStart. A program that does not fit
// leaves memory untouched.
func (m *Machine) LoadROM(rom []byte) error {
	if err := m.memory.Load(rom, cpu.ProgramStart); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}
	m.romSize = len(rom)
	m.logger.Debug("ROM loaded", log.Int("size", m.romSize))
	return nil
}

// LoadROMFile loads a program from disk.
func (m *Machine) LoadROMFile(path string) error {
	rom, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}
	return m.LoadROM(rom)
}

// Step executes one instruction.
func (m *Machine) Step() error {
	if m.cfg.Trace && m.cpu.State() == cpu.Running {
		m.trace()
	}
	if err := m.cpu.Step(); err != nil {
		return err
	}
	m.cycles++
	return nil
}

func (m *Machine) trace() {
	pc := m.cpu.PC()
	opcode, err := m.memory.ReadWord(pc)
	if err != nil {
		return
	}
	mnemonic, _ := cpu.Mnemonic(opcode)
	m.logger.Debug("Executing",
		log.Hex("pc", pc),
		log.Hex("opcode", opcode),
		log.String("instruction", mnemonic),
	)
}

// Tick advances the timers by one 60Hz period and gates the beeper.
func (m *Machine) Tick() {
	m.cpu.Tick()
	m.beeper.SetActive(m.cpu.SoundTimer() > 0)
}

// Reset returns the core and the peripherals to their boot state. The loaded
// font and program stay in memory.
func (m *Machine) Reset() {
	m.cpu.Reset()
	m.keys.Reset()
	m.display.Clear()
	m.beeper.SetActive(false)
	m.cycles = 0
}

// Run executes until the context is cancelled, the frontend quits, the cycle
// limit is reached or the core faults. A fault is logged and returned.
func (m *Machine) Run(ctx context.Context) error {
	clock := time.NewTicker(m.cfg.StepInterval())
	defer clock.Stop()
	timers := time.NewTicker(m.cfg.TickInterval())
	defer timers.Stop()

	defer m.beeper.SetActive(false)

	m.logger.Info("Starting machine",
		log.Int("clock", m.cfg.Clock),
		log.Int("refresh", m.cfg.Refresh),
		log.Int("rom_size", m.romSize),
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timers.C:
			m.Tick()
			if err := m.render(); err != nil {
				return err
			}
			if !m.frontend.Poll(m.keys) {
				m.logger.Info("Frontend closed", log.Int("cycles", int(m.cycles)))
				return nil
			}

		case <-clock.C:
			if err := m.Step(); err != nil {
				m.logFault(err)
				return err
			}
			if m.cfg.Cycles > 0 && m.cycles >= m.cfg.Cycles {
				m.logger.Info("Cycle limit reached", log.Int("cycles", int(m.cycles)))
				return nil
			}
		}
	}
}

func (m *Machine) render() error {
	if !m.display.Dirty() {
		return nil
	}
	if err := m.frontend.Render(m.display); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	m.display.MarkClean()
	return nil
}

func (m *Machine) logFault(err error) {
	var opErr *cpu.OpcodeError
	if errors.As(err, &opErr) {
		m.logger.Error("Unknown opcode",
			log.Hex("opcode", opErr.Opcode),
			log.Hex("offset", opErr.Offset),
		)
		return
	}
	m.logger.Error("Execution stopped",
		log.Hex("pc", m.cpu.PC()),
		log.Err(err),
	)
}

// CPU returns the interpreter core.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

// Display returns the framebuffer.
func (m *Machine) Display() *screen.Framebuffer {
	return m.display
}

// Keypad returns the key state read by the core.
func (m *Machine) Keypad() *keypad.Keypad {
	return m.keys
}

// Cycles returns the number of instructions executed since start or reset.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// Close releases the frontend and the beeper.
func (m *Machine) Close() error {
	return errors.Join(m.beeper.Close(), m.frontend.Close())
}
