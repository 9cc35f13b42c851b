package ffmpeg

import (
	"context"
	"strings"
)

// Fingerprint identifies the ffmpeg toolchain that produced an analysis.
// It participates in the cache keys so artifacts never outlive the build
// that made them.
type Fingerprint struct {
	Version       string `yaml:"ffmpeg_version" json:"ffmpeg_version"`
	Configuration string `yaml:"ffmpeg_configuration" json:"ffmpeg_configuration"`
}

// FingerprintToolchain reads the version and configuration lines from
// `ffmpeg -version`.
func FingerprintToolchain(ctx context.Context) (Fingerprint, error) {
	out, err := Execute(ctx, ExecOptions{CaptureStdout: true},
		"ffmpeg", "-hide_banner", "-version")
	if err != nil {
		return Fingerprint{}, err
	}
	var fp Fingerprint
	lines := strings.Split(string(out), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if fp.Version == "" {
			fp.Version = line
		}
		if i < 15 && strings.HasPrefix(strings.ToLower(line), "configuration:") {
			fp.Configuration = line
			break
		}
	}
	return fp, nil
}
