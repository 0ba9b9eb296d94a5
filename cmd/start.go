package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"chyp8/config"
	"chyp8/emu/audio"
	"chyp8/emu/machine"
	"chyp8/emu/memory"
	"chyp8/emu/screen"
	"chyp8/statsview"

	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var startCmd = &cobra.Command{
	Use:   "start `path/ROM`",
	Short: "load and start the Emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  Start,

	SilenceUsage: true,
}

// chyp8 start 'path/to/ROM' -r 60 -c 700
func Start(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	logger := config.CreateLogger(cfg.Debug || cfg.Trace, cfg.Quiet)

	if cfg.StatsView {
		statsview.Launch(logger)
	}

	romPath := args[0]
	frontend, err := screen.New(cfg.Frontend, screen.Options{
		Title: "Chyp8 - " + filepath.Base(romPath),
		Scale: cfg.Scale,
	})
	if err != nil {
		return err
	}

	emu, err := machine.New(cfg, logger, frontend, openBeeper(cfg.Beep, logger))
	if err != nil {
		_ = frontend.Close()
		return fmt.Errorf("starting the Emulator: %w", err)
	}
	defer func() {
		if err := emu.Close(); err != nil {
			logger.Error("Closing the Emulator failed", log.Err(err))
		}
	}()

	if cfg.Font != "" {
		if err := emu.LoadFontFile(cfg.Font); err != nil {
			return err
		}
	}
	if err := emu.LoadROMFile(romPath); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return emu.Run(ctx)
}

// openBeeper falls back to silence when the sample can not be played.
func openBeeper(path string, logger *log.Logger) audio.Beeper {
	if path == "" {
		return audio.Silent{}
	}
	s, err := audio.Open(path)
	if err != nil {
		logger.Warn("Audio disabled", log.String("file", path), log.Err(err))
		return audio.Silent{}
	}
	return s
}

func init() {
	flags := startCmd.Flags()
	flags.StringP("frontend", "f", "pixel", "frontend to use, see `chyp8 frontends`")
	flags.IntP("refresh", "r", 60, "sets the refresh rate of the display and the timers in Hz")
	flags.IntP("clock", "c", 700, "instructions executed per second")
	flags.DurationP("wait", "w", 0, "fixed delay between instructions, overrides --clock")
	flags.Int("scale", 10, "size of a pixel in window frontends")
	flags.String("font", "", "font file loaded at address 0")
	flags.String("beep", "", "mp3 or wav sample played while the sound timer runs")
	flags.Int("memory", memory.Size, fmt.Sprintf("memory size, %d or %d", memory.Size, memory.LegacySize))
	flags.Int64("seed", 0, "seed of the random number generator, 0 uses the clock")
	flags.Uint64("cycles", 0, "stop after this many instructions, 0 runs forever")
	flags.Bool("shift-vy", true, "8XY6 and 8XYE shift VY into VX")
	flags.Bool("sprite-wrap", false, "sprites wrap around the screen edges instead of clipping")
	flags.Bool("trace", false, "log every executed instruction")

	bindFlags(flags, map[string]string{
		"frontend":    config.KeyFrontend,
		"refresh":     config.KeyRefresh,
		"clock":       config.KeyClock,
		"wait":        config.KeyWait,
		"scale":       config.KeyScale,
		"font":        config.KeyFont,
		"beep":        config.KeyBeep,
		"memory":      config.KeyMemory,
		"seed":        config.KeySeed,
		"cycles":      config.KeyCycles,
		"shift-vy":    config.KeyShiftUsesVY,
		"sprite-wrap": config.KeySpriteWraps,
		"trace":       config.KeyTrace,
	})
}
