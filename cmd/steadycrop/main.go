// Command steadycrop is the CLI entrypoint for the steadycrop video
// stabilizer.
//
// It parses flags, resolves the config sidecar, and either runs system
// diagnostics (--check), writes a default config (--write-default-config),
// or runs the analyze/decide/render pipeline for one clip.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/steadycrop/internal/check"
	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/display"
	"github.com/backmassage/steadycrop/internal/logging"
	"github.com/backmassage/steadycrop/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
// When built with plain "go build" these retain their defaults.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output
	// goes through the logger for consistent formatting and log-file capture.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "steadycrop: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "steadycrop: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "steadycrop: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	display.PrintBanner()

	if cfg.CheckOnly {
		check.RunCheck(log)
		return 0
	}

	if _, err := os.Stat(cfg.InputFile); err != nil {
		log.Error("Input not found: %s", cfg.InputFile)
		return 1
	}

	if cfg.WriteDefaultConfig {
		path := config.DefaultSidecarPath(cfg.InputFile)
		if _, err := os.Stat(path); err == nil {
			log.Error("Default config already exists: %s", path)
			return 1
		}
		if err := config.WriteSettings(path, config.DefaultSettings()); err != nil {
			log.Error("%v", err)
			return 1
		}
		log.Success("Wrote default config: %s", path)
		return 0
	}

	settings, configPath, configSource, err := config.ResolveSettings(&cfg)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	if configSource == "explicit_config_written" {
		log.Info("Wrote default config: %s", configPath)
	}

	log.Info("=== steadycrop v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.InputFile)
	log.Info("Out: %s", cfg.OutputFile)
	log.Debug(cfg.Verbose, "Config source: %s", configSource)

	// Phase 3: Fail fast when ffmpeg, ffprobe, or the vid.stab filters
	// are missing.
	if err := check.CheckDeps(); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 4: Signal handling. Cancel the context on SIGINT/SIGTERM so
	// running ffmpeg processes are terminated cleanly.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Interrupt received, finishing up...")
		cancel()
	}()

	if err := pipeline.Run(ctx, &cfg, &settings, configPath, configSource, log); err != nil {
		log.Error("%v", err)
		return 1
	}
	return 0
}
