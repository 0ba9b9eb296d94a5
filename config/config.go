// Package config handles emulator settings and logger setup.
package config

import (
	"errors"
	"fmt"
	"time"

	"chyp8/emu/cpu"
	"chyp8/emu/memory"

	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/viper"
)

// Keys of the settings, as used in config files, flags and CHYP8_ variables.
const (
	KeyFrontend    = "frontend"
	KeyClock       = "clock"
	KeyRefresh     = "refresh"
	KeyWait        = "wait"
	KeyScale       = "scale"
	KeyFont        = "font"
	KeyBeep        = "beep"
	KeyMemory      = "memory"
	KeySeed        = "seed"
	KeyCycles      = "cycles"
	KeyShiftUsesVY = "quirks.shift_uses_vy"
	KeySpriteWraps = "quirks.sprite_wraps"
	KeyDebug       = "debug"
	KeyQuiet       = "quiet"
	KeyTrace       = "trace"
	KeyStatsView   = "statsview"
)

// Quirks mirror cpu.Quirks.
type Quirks struct {
	ShiftUsesVY bool `mapstructure:"shift_uses_vy"`
	SpriteWraps bool `mapstructure:"sprite_wraps"`
}

// Config holds all emulator settings.
type Config struct {
	Frontend string `mapstructure:"frontend"`
	// Clock is the number of instructions executed per second.
	Clock int `mapstructure:"clock"`
	// Refresh is the timer rate in Hz.
	Refresh int `mapstructure:"refresh"`
	// Wait is a fixed delay between instructions. It overrides Clock.
	Wait  time.Duration `mapstructure:"wait"`
	Scale int           `mapstructure:"scale"`
	// Font is an optional font file loaded at address 0.
	Font string `mapstructure:"font"`
	// Beep is an optional mp3 or wav sample played while the sound timer runs.
	Beep   string `mapstructure:"beep"`
	Memory int    `mapstructure:"memory"`
	Seed   int64  `mapstructure:"seed"`
	// Cycles stops the machine after this many steps, 0 runs forever.
	Cycles    uint64 `mapstructure:"cycles"`
	Quirks    Quirks `mapstructure:"quirks"`
	Debug     bool   `mapstructure:"debug"`
	Quiet     bool   `mapstructure:"quiet"`
	Trace     bool   `mapstructure:"trace"`
	StatsView bool   `mapstructure:"statsview"`
}

// SetDefaults registers the default of every setting with v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyFrontend, "pixel")
	v.SetDefault(KeyClock, 700)
	v.SetDefault(KeyRefresh, 60)
	v.SetDefault(KeyWait, time.Duration(0))
	v.SetDefault(KeyScale, 10)
	v.SetDefault(KeyFont, "")
	v.SetDefault(KeyBeep, "")
	v.SetDefault(KeyMemory, memory.Size)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyCycles, 0)
	v.SetDefault(KeyShiftUsesVY, cpu.DefaultQuirks.ShiftUsesVY)
	v.SetDefault(KeySpriteWraps, cpu.DefaultQuirks.SpriteWraps)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeyTrace, false)
	v.SetDefault(KeyStatsView, false)
}

// Load reads the settings from v and validates them.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings for values the machine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Clock <= 0 && c.Wait <= 0 {
		errs = append(errs, fmt.Errorf("clock must be positive, got %d", c.Clock))
	}
	if c.Refresh <= 0 {
		errs = append(errs, fmt.Errorf("refresh must be positive, got %d", c.Refresh))
	}
	if c.Wait < 0 {
		errs = append(errs, fmt.Errorf("wait must not be negative, got %s", c.Wait))
	}
	if c.Memory != memory.Size && c.Memory != memory.LegacySize {
		errs = append(errs, fmt.Errorf("memory must be %d or %d, got %d",
			memory.Size, memory.LegacySize, c.Memory))
	}
	return errors.Join(errs...)
}

// CPUOptions converts the settings into CPU options.
func (c Config) CPUOptions() cpu.Options {
	return cpu.Options{
		Quirks: cpu.Quirks{
			ShiftUsesVY: c.Quirks.ShiftUsesVY,
			SpriteWraps: c.Quirks.SpriteWraps,
		},
		Seed: c.Seed,
	}
}

// StepInterval is the time between two instructions.
func (c Config) StepInterval() time.Duration {
	if c.Wait > 0 {
		return c.Wait
	}
	return time.Second / time.Duration(c.Clock)
}

// TickInterval is the time between two timer ticks.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Refresh)
}

// CreateLogger creates a logger with appropriate settings.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
