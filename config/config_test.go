package config

import (
	"bytes"
	"testing"
	"time"

	"chyp8/emu/cpu"
	"chyp8/emu/memory"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "pixel", cfg.Frontend)
	assert.Equal(t, 700, cfg.Clock)
	assert.Equal(t, 60, cfg.Refresh)
	assert.Equal(t, memory.Size, cfg.Memory)
	assert.True(t, cfg.Quirks.ShiftUsesVY)
	assert.False(t, cfg.Quirks.SpriteWraps)
	assert.Equal(t, cpu.DefaultQuirks, cfg.CPUOptions().Quirks)
}

func TestLoadYAML(t *testing.T) {
	v := newViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
frontend: terminal
clock: 1000
wait: 5ms
memory: 4069
seed: 42
quirks:
  shift_uses_vy: false
  sprite_wraps: true
`)))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "terminal", cfg.Frontend)
	assert.Equal(t, 1000, cfg.Clock)
	assert.Equal(t, 5*time.Millisecond, cfg.Wait)
	assert.Equal(t, memory.LegacySize, cfg.Memory)

	opts := cfg.CPUOptions()
	assert.Equal(t, int64(42), opts.Seed)
	assert.False(t, opts.Quirks.ShiftUsesVY)
	assert.True(t, opts.Quirks.SpriteWraps)
}

func TestValidate(t *testing.T) {
	base, err := Load(newViper())
	require.NoError(t, err)

	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero clock", func(c *Config) { c.Clock = 0 }, false},
		{"zero clock with wait", func(c *Config) { c.Clock = 0; c.Wait = time.Millisecond }, true},
		{"negative wait", func(c *Config) { c.Wait = -time.Second }, false},
		{"zero refresh", func(c *Config) { c.Refresh = 0 }, false},
		{"odd memory", func(c *Config) { c.Memory = 2048 }, false},
		{"legacy memory", func(c *Config) { c.Memory = memory.LegacySize }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIntervals(t *testing.T) {
	cfg := Config{Clock: 500, Refresh: 60}
	assert.Equal(t, 2*time.Millisecond, cfg.StepInterval())
	assert.Equal(t, time.Second/60, cfg.TickInterval())

	cfg.Wait = 10 * time.Millisecond
	assert.Equal(t, 10*time.Millisecond, cfg.StepInterval())
}

func TestEnvironment(t *testing.T) {
	t.Setenv("CHYP8_CLOCK", "123")

	v := newViper()
	v.SetEnvPrefix("chyp8")
	v.AutomaticEnv()

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.Clock)
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(false, false))
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}
