package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/ffmpeg"
	"github.com/backmassage/steadycrop/internal/report"
)

func testIdentity() report.Identity {
	return report.Identity{Path: "/abs/clip.mp4", Size: 4096, MtimeNS: 1700000000000000000}
}

func testToolchain() ffmpeg.Fingerprint {
	return ffmpeg.Fingerprint{
		Version:       "ffmpeg version 6.1.1",
		Configuration: "--enable-libvidstab --enable-libx264",
	}
}

func TestFileIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("not a real mp4"), 0o644); err != nil {
		t.Fatal(err)
	}
	id, err := fileIdentity(path)
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(id.Path) {
		t.Errorf("identity path must be absolute: %s", id.Path)
	}
	if id.Size != 14 {
		t.Errorf("Size = %d, want 14", id.Size)
	}
	if id.MtimeNS == 0 {
		t.Error("MtimeNS must be set")
	}

	if _, err := fileIdentity(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("missing file must be an error")
	}
}

func TestAnalysisKey_Deterministic(t *testing.T) {
	settings := config.DefaultSettings()
	k1, err := analysisKey(testIdentity(), report.TimeRange{}, 1920, 1080,
		"30000/1001", settings.Engine.Detect, testToolchain())
	if err != nil {
		t.Fatal(err)
	}
	k2, err := analysisKey(testIdentity(), report.TimeRange{}, 1920, 1080,
		"30000/1001", settings.Engine.Detect, testToolchain())
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Errorf("same inputs must produce the same key: %s vs %s", k1, k2)
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d", len(k1))
	}
}

func TestAnalysisKey_SensitiveToInputs(t *testing.T) {
	settings := config.DefaultSettings()
	base, err := analysisKey(testIdentity(), report.TimeRange{}, 1920, 1080,
		"25/1", settings.Engine.Detect, testToolchain())
	if err != nil {
		t.Fatal(err)
	}

	// Edited file.
	id := testIdentity()
	id.MtimeNS++
	k, _ := analysisKey(id, report.TimeRange{}, 1920, 1080, "25/1",
		settings.Engine.Detect, testToolchain())
	if k == base {
		t.Error("mtime change must change the key")
	}

	// Different analyzed range.
	start := 10.0
	k, _ = analysisKey(testIdentity(), report.TimeRange{Start: &start}, 1920, 1080,
		"25/1", settings.Engine.Detect, testToolchain())
	if k == base {
		t.Error("range change must change the key")
	}

	// Different detect settings.
	detect := settings.Engine.Detect
	detect.Shakiness++
	k, _ = analysisKey(testIdentity(), report.TimeRange{}, 1920, 1080, "25/1",
		detect, testToolchain())
	if k == base {
		t.Error("detect settings change must change the key")
	}

	// Different ffmpeg build.
	tc := testToolchain()
	tc.Version = "ffmpeg version 7.0"
	k, _ = analysisKey(testIdentity(), report.TimeRange{}, 1920, 1080, "25/1",
		settings.Engine.Detect, tc)
	if k == base {
		t.Error("toolchain change must change the key")
	}
}

func TestRunKey_CoversDecisionSettings(t *testing.T) {
	settings := config.DefaultSettings()
	base, err := runKey("a1b2", &settings, testToolchain())
	if err != nil {
		t.Fatal(err)
	}

	same := config.DefaultSettings()
	k, _ := runKey("a1b2", &same, testToolchain())
	if k != base {
		t.Error("identical settings must produce the same run key")
	}

	// Detect settings are already in the analysis key; only the analysis
	// key itself should carry them through.
	k, _ = runKey("ffff", &settings, testToolchain())
	if k == base {
		t.Error("analysis key must feed the run key")
	}

	changed := config.DefaultSettings()
	changed.Crop.MinAreaRatio = 0.5
	k, _ = runKey("a1b2", &changed, testToolchain())
	if k == base {
		t.Error("crop settings change must change the run key")
	}

	changed = config.DefaultSettings()
	changed.Border.Mode = config.BorderCropOnly
	k, _ = runKey("a1b2", &changed, testToolchain())
	if k == base {
		t.Error("border mode change must change the run key")
	}
}
