package config

// This file implements the YAML config sidecar: a versioned wrapper around
// Settings written next to the input file (or at an explicit -c path).
// Unknown keys are rejected so a typo'd threshold cannot silently fall back
// to its default.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Sidecar header key and version. A config file must carry
// "steadycrop: 1" at the top level to be accepted.
const (
	SidecarHeaderKey     = "steadycrop"
	SidecarHeaderVersion = 1
)

// sidecarFile is the on-disk shape of the config sidecar.
type sidecarFile struct {
	Steadycrop int      `yaml:"steadycrop"`
	Settings   Settings `yaml:"settings"`
}

// LoadSettings reads and validates a config sidecar. The returned Settings
// start from DefaultSettings so a partial file only overrides what it names.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}
	file := sidecarFile{Settings: DefaultSettings()}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	if file.Steadycrop != SidecarHeaderVersion {
		return Settings{}, fmt.Errorf("config %s: must set %s: %d",
			path, SidecarHeaderKey, SidecarHeaderVersion)
	}
	if err := file.Settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	return file.Settings, nil
}

// WriteSettings writes a config sidecar for the given settings, creating
// parent directories as needed.
func WriteSettings(path string, s Settings) error {
	file := sidecarFile{Steadycrop: SidecarHeaderVersion, Settings: s}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write config %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ResolveSettings applies the config sidecar selection flow:
//
//   - --use-default-config: read the per-input sidecar (error if missing);
//   - -c/--config: read it, writing defaults first when it does not exist;
//   - neither: code defaults.
//
// It returns the settings, the sidecar path actually used ("" for code
// defaults), and a source label for the report.
func ResolveSettings(c *Config) (Settings, string, string, error) {
	if c.UseDefaultConfig {
		path := DefaultSidecarPath(c.InputFile)
		if _, err := os.Stat(path); err != nil {
			return Settings{}, "", "", fmt.Errorf("default config not found: %s", path)
		}
		s, err := LoadSettings(path)
		return s, path, "default_config", err
	}
	if c.ConfigFile != "" {
		path := c.ConfigFile
		if _, err := os.Stat(path); err == nil {
			s, err := LoadSettings(path)
			return s, path, "explicit_config", err
		}
		if err := WriteSettings(path, DefaultSettings()); err != nil {
			return Settings{}, "", "", err
		}
		s, err := LoadSettings(path)
		return s, path, "explicit_config_written", err
	}
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		return Settings{}, "", "", err
	}
	return s, "", "code_defaults", nil
}
