package motion

import (
	"fmt"
	"strings"
	"testing"
)

func TestParse_BasicPath(t *testing.T) {
	text := strings.Join([]string{
		"Frame 0 0 0 0 0 0",
		"# no fields",
		"Frame 1 2.5 -1.25 0.001 0.02 1",
		"Frame 2 -3 1 -0.002 -0.01 1",
	}, "\n")

	p, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 3 {
		t.Fatalf("Len = %d, want 3", p.Len())
	}
	f0 := p.Frame(0)
	if !f0.IsReference || f0.Missing {
		t.Errorf("frame 0 should be the reference, got %+v", f0)
	}
	f1 := p.Frame(1)
	if f1.DX != 2.5 || f1.DY != -1.25 || f1.Angle != 0.001 || f1.ZoomPercent != 0.02 {
		t.Errorf("frame 1 values wrong: %+v", f1)
	}
	if f1.Missing || f1.IsReference {
		t.Errorf("frame 1 should be a plain valid frame: %+v", f1)
	}
	if p.MissingCount() != 0 {
		t.Errorf("MissingCount = %d, want 0", p.MissingCount())
	}
}

func TestParse_NoFieldsMarksMissing(t *testing.T) {
	text := strings.Join([]string{
		"Frame 0 0 0 0 0 0",
		"# no fields",
		"Frame 1 1 1 0 0 1",
		"Frame 2 0 0 0 0 0",
		"# no fields",
		"Frame 3 2 2 0 0 1",
	}, "\n")

	p, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Frame(2).Missing {
		t.Error("frame 2 should be missing after its 'no fields' comment")
	}
	if p.Frame(0).Missing {
		t.Error("frame 0 is the reference, never missing")
	}
	if p.MissingCount() != 1 {
		t.Errorf("MissingCount = %d, want 1", p.MissingCount())
	}
}

func TestParse_GapsBecomeMissing(t *testing.T) {
	text := strings.Join([]string{
		"Frame 0 0 0 0 0 0",
		"Frame 1 1 0 0 0 1",
		"Frame 4 2 0 0 0 1",
	}, "\n")

	p, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 5 {
		t.Fatalf("Len = %d, want 5", p.Len())
	}
	for _, idx := range []int{2, 3} {
		if !p.Frame(idx).Missing {
			t.Errorf("frame %d should be missing", idx)
		}
	}
}

func TestParse_ErrorDiagnosticComment(t *testing.T) {
	text := strings.Join([]string{
		"Frame 0 0 0 0 0 0",
		"Frame 1 1 0 0 0 1",
		"# 0.375 42",
	}, "\n")

	p, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	f1 := p.Frame(1)
	if f1.FieldError != 0.375 || f1.FieldsCount != 42 {
		t.Errorf("diagnostics not attached: %+v", f1)
	}
	if f1.Missing {
		t.Error("diagnostic comment must not mark the frame missing")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty input", ""},
		{"comments only", "# nothing here\n"},
		{"wrong record keyword", "Trans 0 0 0 0 0 0\n"},
		{"too few fields", "Frame 0 0 0 0\n"},
		{"negative index", "Frame -1 0 0 0 0 0\n"},
		{"non-numeric dx", "Frame 0 x 0 0 0 0\n"},
		{"non-numeric flag", "Frame 0 0 0 0 0 flag\n"},
		{"duplicate index", "Frame 0 0 0 0 0 0\nFrame 0 1 1 0 0 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.text); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestParse_LargePath(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&b, "Frame %d %g %g 0 0 1\n", i, float64(i%7)-3, float64(i%5)-2)
	}
	p, err := Parse(b.String())
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 5000 {
		t.Errorf("Len = %d, want 5000", p.Len())
	}
}

func TestScaleRatio(t *testing.T) {
	ft := FrameTransform{ZoomPercent: 5}
	if got := ft.ScaleRatio(); got != 1.05 {
		t.Errorf("ScaleRatio = %g, want 1.05", got)
	}
}

func TestValidBBox(t *testing.T) {
	tests := []struct {
		name           string
		dx, dy         float64
		wantL, wantT   float64
		wantR, wantB   float64
	}{
		{"no motion", 0, 0, 0, 0, 1920, 1080},
		{"shift right", 10, 0, 0, 0, 1910, 1080},
		{"shift left", -10, 0, 10, 0, 1920, 1080},
		{"shift down", 0, 8, 0, 0, 1920, 1072},
		{"diagonal", -4, 6, 4, 0, 1920, 1074},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, tp, r, b := ValidBBox(1920, 1080, tt.dx, tt.dy)
			if l != tt.wantL || tp != tt.wantT || r != tt.wantR || b != tt.wantB {
				t.Errorf("ValidBBox = (%g,%g,%g,%g), want (%g,%g,%g,%g)",
					l, tp, r, b, tt.wantL, tt.wantT, tt.wantR, tt.wantB)
			}
		})
	}
}
