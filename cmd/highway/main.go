package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	"highway/internal/game"
	"highway/internal/sim"
)

var (
	configFlag  = flag.String("config", "", "TOML tuning file (reloaded with F5)")
	verboseFlag = flag.Bool("v", false, "debug logging")
	seedFlag    = flag.Uint64("seed", 0, "traffic seed override (0 keeps the configured seed)")
	muteFlag    = flag.Bool("mute", false, "disable audio")
	volumeFlag  = flag.Float64("volume", 0.5, "sound effect volume, 0..1")
	msaaFlag    = flag.Int("msaa", 0, "MSAA samples (0 = default, -1 = off)")
	fixedFlag   = flag.Bool("fixed", false, "non-resizable window")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "highway crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := sim.DefaultConfig()
	if *configFlag != "" {
		loaded, err := sim.LoadConfig(*configFlag)
		if err != nil {
			slog.Error("loading tuning file", "path", *configFlag, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *seedFlag != 0 {
		cfg.Traffic.Seed = *seedFlag
	}

	err := game.RunDesktop(game.Options{
		Config:     cfg,
		ConfigPath: *configFlag,
		Mute:       *muteFlag,
		Volume:     *volumeFlag,
		Samples:    *msaaFlag,
		FixedSize:  *fixedFlag,
		Logger:     logger,
	})
	if err != nil {
		slog.Error("highway exited", "err", err)
		os.Exit(1)
	}
}
