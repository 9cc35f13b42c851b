package display

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
		{5368709120, "5.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.4519); got != "45.2%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatPercent(1.0); got != "100.0%" {
		t.Errorf("FormatPercent = %q", got)
	}
}

func TestFormatFrameTime(t *testing.T) {
	if got := FormatFrameTime(50, 25, nil); got != "t=2.000s" {
		t.Errorf("FormatFrameTime = %q", got)
	}
	start := 10.5
	if got := FormatFrameTime(50, 25, &start); got != "t=12.500s" {
		t.Errorf("FormatFrameTime with start = %q", got)
	}
	// Degrades to a frame index when fps is unknown.
	if got := FormatFrameTime(7, 0, nil); got != "frame 7" {
		t.Errorf("FormatFrameTime without fps = %q", got)
	}
}
