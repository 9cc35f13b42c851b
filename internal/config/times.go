package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimeSeconds parses a CLI time value into seconds. Accepted forms:
// empty (returns nil), plain seconds ("12.5"), or "HH:MM:SS[.ms]".
func ParseTimeSeconds(value string) (*float64, error) {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil, nil
	}
	if !strings.Contains(text, ":") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", value, err)
		}
		return &f, nil
	}
	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid time %q: must be seconds or HH:MM:SS[.ms]", value)
	}
	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", value, err)
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", value, err)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", value, err)
	}
	if hours < 0 || minutes < 0 || seconds < 0 {
		return nil, fmt.Errorf("invalid time %q: components must be non-negative", value)
	}
	total := hours*3600 + minutes*60 + seconds
	return &total, nil
}
