package config

import (
	"testing"
)

func TestDefaultSettings_Valid(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("DefaultSettings should validate: %v", err)
	}
}

func TestValidate_EngineSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"wrong engine kind", func(s *Settings) { s.Engine.Kind = "opencv" }, true},
		{"shakiness too low", func(s *Settings) { s.Engine.Detect.Shakiness = 0 }, true},
		{"shakiness too high", func(s *Settings) { s.Engine.Detect.Shakiness = 11 }, true},
		{"accuracy below shakiness", func(s *Settings) {
			s.Engine.Detect.Shakiness = 8
			s.Engine.Detect.Accuracy = 5
		}, true},
		{"stepsize out of range", func(s *Settings) { s.Engine.Detect.StepSize = 33 }, true},
		{"mincontrast negative", func(s *Settings) { s.Engine.Detect.MinContrast = -0.1 }, true},
		{"reference frame zero", func(s *Settings) { s.Engine.Detect.ReferenceFrame = 0 }, true},
		{"optalgo gauss valid", func(s *Settings) { s.Engine.Transform.OptAlgo = "gauss" }, false},
		{"optalgo unknown", func(s *Settings) { s.Engine.Transform.OptAlgo = "magic" }, true},
		{"negative smoothing", func(s *Settings) { s.Engine.Transform.Smoothing = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CropAndBorderSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"min area zero", func(s *Settings) { s.Crop.MinAreaRatio = 0 }, true},
		{"min area above one", func(s *Settings) { s.Crop.MinAreaRatio = 1.5 }, true},
		{"no height floor at all", func(s *Settings) {
			s.Crop.MinHeightPx = 0
			s.Crop.MinHeightRatio = 0
		}, true},
		{"explicit height only", func(s *Settings) {
			s.Crop.MinHeightPx = 480
			s.Crop.MinHeightRatio = 0
		}, false},
		{"safe margin at half", func(s *Settings) { s.Crop.CenterSafeMargin = 0.5 }, true},
		{"border mode unknown", func(s *Settings) { s.Border.Mode = "letterbox" }, true},
		{"border crop only valid", func(s *Settings) { s.Border.Mode = BorderCropOnly }, false},
		{"fill kind unknown", func(s *Settings) { s.Border.Fill.Kind = "solid" }, true},
		{"patch fraction too big", func(s *Settings) { s.Border.Fill.PatchFraction = 0.6 }, true},
		{"zero sample frames", func(s *Settings) { s.Border.Fill.SampleFrames = 0 }, true},
		{"zero consecutive is allowed", func(s *Settings) { s.Border.Fill.MaxConsecutiveFrames = 0 }, false},
		{"rejection mode unknown", func(s *Settings) { s.Rejection.Mode = "strict" }, true},
		{"rejection max valid", func(s *Settings) { s.Rejection.Mode = RejectionMax }, false},
		{"mad fraction zero", func(s *Settings) { s.Rejection.MaxMADFraction = 0 }, true},
		{"report format unknown", func(s *Settings) { s.IO.ReportFormat = "xml" }, true},
		{"report json valid", func(s *Settings) { s.IO.ReportFormat = ReportJSON }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEffectiveMinHeightPx(t *testing.T) {
	s := DefaultSettings()

	// Ratio-derived: 1080 * 0.65 rounds to 702.
	got, err := s.EffectiveMinHeightPx(1080)
	if err != nil {
		t.Fatal(err)
	}
	if got != 702 {
		t.Errorf("ratio-derived floor = %d, want 702", got)
	}

	// Explicit pixel floor wins over the ratio.
	s.Crop.MinHeightPx = 500
	got, err = s.EffectiveMinHeightPx(1080)
	if err != nil {
		t.Fatal(err)
	}
	if got != 500 {
		t.Errorf("explicit floor = %d, want 500", got)
	}

	s.Crop.MinHeightPx = 0
	s.Crop.MinHeightRatio = 0
	if _, err := s.EffectiveMinHeightPx(1080); err == nil {
		t.Error("expected error when no floor resolves")
	}
}

func TestConfigValidate_Range(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		duration string
		end      string
		wantErr  bool
		wantStart, wantDuration *float64
	}{
		{"no range", "", "", "", false, nil, nil},
		{"start only", "10", "", "", false, f(10), nil},
		{"start and duration", "10", "5", "", false, f(10), f(5)},
		{"end resolves to duration", "10", "", "25", false, f(10), f(15)},
		{"duration and end conflict", "10", "5", "25", true, nil, nil},
		{"end without start", "", "", "25", true, nil, nil},
		{"end before start", "30", "", "25", true, nil, nil},
		{"zero duration", "0", "0", "", true, nil, nil},
		{"timestamp start", "00:01:30.5", "", "", false, f(90.5), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.InputFile = "in.mp4"
			cfg.OutputFile = "out.mp4"
			cfg.StartArg = tt.start
			cfg.DurationArg = tt.duration
			cfg.EndArg = tt.end
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !ptrEq(cfg.StartSeconds, tt.wantStart) {
				t.Errorf("StartSeconds = %v, want %v", deref(cfg.StartSeconds), deref(tt.wantStart))
			}
			if !ptrEq(cfg.DurationSeconds, tt.wantDuration) {
				t.Errorf("DurationSeconds = %v, want %v", deref(cfg.DurationSeconds), deref(tt.wantDuration))
			}
		})
	}
}

func TestConfigValidate_SidecarConflicts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputFile = "in.mp4"
	cfg.OutputFile = "out.mp4"
	cfg.ConfigFile = "custom.yaml"
	cfg.UseDefaultConfig = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for -c with --use-default-config")
	}

	cfg = DefaultConfig()
	cfg.InputFile = "in.mp4"
	cfg.UseDefaultConfig = true
	cfg.WriteDefaultConfig = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for --use-default-config with --write-default-config")
	}
}

func TestParseTimeSeconds(t *testing.T) {
	tests := []struct {
		in      string
		want    *float64
		wantErr bool
	}{
		{"", nil, false},
		{"90", f(90), false},
		{"90.25", f(90.25), false},
		{"00:01:30", f(90), false},
		{"01:02:03.5", f(3723.5), false},
		{"1:30", nil, true},
		{"00:-1:30", nil, true},
		{"abc", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeSeconds(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeSeconds(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && !ptrEq(got, tt.want) {
				t.Errorf("ParseTimeSeconds(%q) = %v, want %v", tt.in, deref(got), deref(tt.want))
			}
		})
	}
}

// --- helpers ---

func f(v float64) *float64 { return &v }

func ptrEq(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func deref(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
