package config

// This file implements CLI flag parsing and help text. Flags are grouped
// into input/output, config sidecar, time range, stream handling, and
// display. Negated flags (e.g. --no-copy-audio) are applied after Parse so
// Config defaults hold unless set.

import (
	"flag"
	"fmt"
	"os"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag).
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("steadycrop", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var negated negatedFlags

	definePathFlags(fs, cfg)
	defineConfigFlags(fs, cfg)
	defineRangeFlags(fs, cfg)
	defineStreamFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(fs)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "steadycrop v"+version)
		os.Exit(0)
	}
	return nil
}

// negatedFlags holds boolean flags that are applied after Parse. These
// either invert a default (noCopyAudio -> CopyAudio=false) or trigger exit.
type negatedFlags struct {
	noCopyAudio bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

func definePathFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.InputFile, "input", "", "Input media file path")
	fs.StringVar(&cfg.InputFile, "i", "", "Same as --input")
	fs.StringVar(&cfg.OutputFile, "output", "", "Output stabilized media file path")
	fs.StringVar(&cfg.OutputFile, "o", "", "Same as --output")
}

func defineConfigFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ConfigFile, "config", "", "Config YAML path (written with defaults if missing)")
	fs.StringVar(&cfg.ConfigFile, "c", "", "Same as --config")
	fs.BoolVar(&cfg.WriteDefaultConfig, "write-default-config", false,
		"Write the per-input default config file and exit")
	fs.BoolVar(&cfg.UseDefaultConfig, "use-default-config", false,
		"Read the per-input default config file (error if missing)")
}

func defineRangeFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.StartArg, "start", "", "Start time (seconds or HH:MM:SS[.ms])")
	fs.StringVar(&cfg.DurationArg, "duration", "", "Duration in seconds")
	fs.StringVar(&cfg.EndArg, "end", "", "End time (seconds or HH:MM:SS[.ms]); requires --start")
}

func defineStreamFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.noCopyAudio, "no-copy-audio", false, "Do not copy audio streams (video-only output)")
	fs.BoolVar(&cfg.CopySubs, "copy-subs", false, "Copy subtitle streams unchanged")
	fs.BoolVar(&cfg.KeepTemp, "keep-temp", false, "Keep derived motion files under the cache directory")
}

func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output (show external commands)")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noCopyAudio {
		cfg.CopyAudio = false
	}
	if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	}
}

func printUsage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprint(out, `steadycrop - global "bird on a building" stabilization (align + static crop)

Usage:
  steadycrop -i INPUT -o OUTPUT [options]
  steadycrop -i INPUT --write-default-config
  steadycrop --check

The tool runs vidstabdetect once (cached by content+parameters), decides
whether a single static crop can stabilize the clip, optionally falls back
to a budgeted border fill, renders the result, and writes a decision report
next to the output.

Input/output:
  -i, --input PATH        Input media file (required)
  -o, --output PATH       Output stabilized file (required unless
                          --write-default-config or --check)

Config:
  -c, --config PATH       Config YAML (written with defaults if missing)
      --write-default-config   Write <input>.steadycrop.config.yaml and exit
      --use-default-config     Read the per-input default config

Range:
      --start T           Start time (seconds or HH:MM:SS[.ms])
      --duration T        Duration in seconds
      --end T             End time; requires --start, excludes --duration

Streams:
      --no-copy-audio     Video-only output
      --copy-subs         Copy subtitle streams (no timing/placement edits)

Other:
      --keep-temp         Keep derived motion files under the cache dir
  -v, --verbose           Show external commands and debug output
      --color / --no-color
      --log PATH          Append logs to file
      --check             Run system diagnostics and exit
  -V, --version           Print version
  -h, --help              This help
`)
}
