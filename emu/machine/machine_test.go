package machine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chyp8/config"
	"chyp8/emu/cpu"
	"chyp8/emu/keypad"
	"chyp8/emu/memory"
	"chyp8/emu/screen"

	"github.com/retroenv/retrogolib/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testBeeper struct {
	active  bool
	toggles int
	closed  bool
}

func (b *testBeeper) SetActive(on bool) {
	if on != b.active {
		b.toggles++
	}
	b.active = on
}

func (b *testBeeper) Close() error {
	b.closed = true
	return nil
}

// quitFrontend asks to quit on the first poll.
type quitFrontend struct {
	screen.Headless
}

func (q *quitFrontend) Poll(*keypad.Keypad) bool { return false }

func testConfig() config.Config {
	return config.Config{
		Frontend: "headless",
		Clock:    100000,
		Refresh:  60,
		Memory:   memory.Size,
		Seed:     1,
		Quirks: config.Quirks{
			ShiftUsesVY: cpu.DefaultQuirks.ShiftUsesVY,
			SpriteWraps: cpu.DefaultQuirks.SpriteWraps,
		},
	}
}

func newMachine(t *testing.T, cfg config.Config, rom ...byte) (*Machine, *screen.Headless, *testBeeper) {
	t.Helper()
	frontend := &screen.Headless{}
	beeper := &testBeeper{}
	m, err := New(cfg, log.NewTestLogger(t), frontend, beeper)
	require.NoError(t, err)
	if len(rom) > 0 {
		require.NoError(t, m.LoadROM(rom))
	}
	return m, frontend, beeper
}

func TestNewLoadsFont(t *testing.T) {
	m, _, _ := newMachine(t, testConfig())

	glyph, err := m.CPU().Memory().Slice(cpu.FontAddress, len(cpu.FontSet))
	require.NoError(t, err)
	assert.Equal(t, cpu.FontSet[:], glyph)
	assert.Equal(t, uint16(cpu.ProgramStart), m.CPU().PC())
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Memory = 1024
	_, err := New(cfg, log.NewTestLogger(t), &screen.Headless{}, nil)
	assert.Error(t, err)
}

func TestLegacyMemory(t *testing.T) {
	cfg := testConfig()
	cfg.Memory = memory.LegacySize
	m, _, _ := newMachine(t, cfg)
	assert.Equal(t, memory.LegacySize, m.CPU().Memory().Capacity())

	err := m.LoadROM(make([]byte, memory.LegacySize-cpu.ProgramStart+1))
	assert.ErrorIs(t, err, memory.ErrCapacityExceeded)
}

func TestLoadROMFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ch8")
	require.NoError(t, os.WriteFile(path, []byte{0x60, 0x2A}, 0o600))

	m, _, _ := newMachine(t, testConfig())
	require.NoError(t, m.LoadROMFile(path))
	require.NoError(t, m.Step())
	assert.Equal(t, uint8(0x2A), m.CPU().V[0])

	assert.Error(t, m.LoadROMFile(filepath.Join(t.TempDir(), "missing.ch8")))
}

func TestLoadFontFile(t *testing.T) {
	font := make([]byte, len(cpu.FontSet))
	for i := range font {
		font[i] = 0xAA
	}
	path := filepath.Join(t.TempDir(), "font.bin")
	require.NoError(t, os.WriteFile(path, font, 0o600))

	m, _, _ := newMachine(t, testConfig())
	require.NoError(t, m.LoadFontFile(path))

	b, err := m.CPU().Memory().Read(cpu.FontAddress)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAA), b)
}

func TestStepCountsCycles(t *testing.T) {
	cfg := testConfig()
	cfg.Trace = true
	m, _, _ := newMachine(t, cfg,
		0x60, 0x01, // LD V0, 1
		0x70, 0x02, // ADD V0, 2
	)

	require.NoError(t, m.Step())
	require.NoError(t, m.Step())
	assert.Equal(t, uint64(2), m.Cycles())
	assert.Equal(t, uint8(3), m.CPU().V[0])
}

func TestTickGatesBeeper(t *testing.T) {
	m, _, beeper := newMachine(t, testConfig(),
		0x60, 0x02, // LD V0, 2
		0xF0, 0x18, // LD ST, V0
	)
	require.NoError(t, m.Step())
	require.NoError(t, m.Step())

	m.Tick()
	assert.True(t, beeper.active)
	assert.Equal(t, uint8(1), m.CPU().SoundTimer())

	m.Tick()
	assert.False(t, beeper.active)
	assert.Equal(t, 2, beeper.toggles)

	m.Tick()
	assert.False(t, beeper.active)
}

func TestReset(t *testing.T) {
	m, _, _ := newMachine(t, testConfig(),
		0x60, 0x07, // LD V0, 7
		0x22, 0x06, // CALL 0x206
		0x12, 0x04, // JP 0x204
		0x00, 0xEE, // RET
	)
	require.NoError(t, m.Step())
	require.NoError(t, m.Step())
	m.Keypad().Press(0x3)
	require.Equal(t, 1, m.CPU().StackLen())

	m.Reset()
	assert.Equal(t, uint16(cpu.ProgramStart), m.CPU().PC())
	assert.Zero(t, m.CPU().V[0])
	assert.Zero(t, m.CPU().StackLen())
	assert.Zero(t, m.Cycles())
	assert.False(t, m.Keypad().IsPressed(0x3))

	require.NoError(t, m.Step())
	assert.Equal(t, uint8(7), m.CPU().V[0], "program survives reset")
}

func TestRunCycleLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Cycles = 50
	m, _, beeper := newMachine(t, cfg, 0x12, 0x00) // JP 0x200

	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, uint64(50), m.Cycles())
	assert.False(t, beeper.active)
}

func TestRunUnknownOpcode(t *testing.T) {
	m, _, _ := newMachine(t, testConfig(),
		0x60, 0x01, // LD V0, 1
		0xFF, 0xFF,
	)

	err := m.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, cpu.ErrUnknownOpcode))

	var opErr *cpu.OpcodeError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, uint16(0xFFFF), opErr.Opcode)
	assert.Equal(t, 2, opErr.Offset)
	assert.Equal(t, uint64(1), m.Cycles())
}

func TestRunStackOverflow(t *testing.T) {
	m, _, _ := newMachine(t, testConfig(), 0x22, 0x00) // CALL 0x200

	err := m.Run(context.Background())
	assert.ErrorIs(t, err, cpu.ErrStackOverflow)
	assert.Equal(t, uint64(cpu.StackDepth), m.Cycles())
}

func TestRunContextCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.Wait = time.Hour
	m, _, _ := newMachine(t, cfg, 0x12, 0x00)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, m.Run(ctx))
	assert.Zero(t, m.Cycles())
}

func TestRunFrontendQuit(t *testing.T) {
	cfg := testConfig()
	cfg.Wait = time.Hour
	cfg.Refresh = 1000

	frontend := &quitFrontend{}
	m, err := New(cfg, log.NewTestLogger(t), frontend, nil)
	require.NoError(t, err)
	require.NoError(t, m.LoadROM([]byte{0x12, 0x00}))

	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, 1, frontend.Frames, "initial frame is rendered")
	assert.False(t, m.Display().Dirty())
}

func TestRunRendersDrawnSprite(t *testing.T) {
	cfg := testConfig()
	cfg.Clock = 1000
	cfg.Refresh = 1000
	cfg.Cycles = 3
	m, _, _ := newMachine(t, cfg,
		0xA0, 0x00, // LD I, 0
		0xD0, 0x05, // DRW V0, V0, 5
		0x12, 0x04, // JP 0x204
	)

	require.NoError(t, m.Run(context.Background()))
	assert.True(t, m.Display().Pixel(0, 0))
	assert.True(t, m.Display().Pixel(3, 4))
	assert.False(t, m.Display().Pixel(1, 1))
}

func TestClose(t *testing.T) {
	m, _, beeper := newMachine(t, testConfig())
	require.NoError(t, m.Close())
	assert.True(t, beeper.closed)
}
