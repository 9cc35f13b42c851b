// Package report builds and writes the decision report sidecar. The
// report is the tool's real output contract: whether a render happened or
// not, every measured statistic, threshold, and reason lands here so a
// batch caller can post-process decisions without scraping logs.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/crop"
	"github.com/backmassage/steadycrop/internal/ffmpeg"
	"github.com/backmassage/steadycrop/internal/fill"
	"github.com/backmassage/steadycrop/internal/reliability"
)

// HeaderVersion is the report schema version under the "steadycrop" key.
const HeaderVersion = 1

// Identity snapshots the input file for cache keying and reproducibility.
type Identity struct {
	Path    string `yaml:"path" json:"path"`
	Size    int64  `yaml:"size" json:"size"`
	MtimeNS int64  `yaml:"mtime_ns" json:"mtime_ns"`
}

// TimeRange is the analyzed portion of the input; nil fields mean the
// whole file.
type TimeRange struct {
	Start    *float64 `yaml:"start" json:"start"`
	Duration *float64 `yaml:"duration" json:"duration"`
}

// Outcome is the top-level verdict.
type Outcome struct {
	Pass    bool   `yaml:"pass" json:"pass"`
	Mode    string `yaml:"mode,omitempty" json:"mode,omitempty"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// Rejection records the reliability gate decision.
type Rejection struct {
	Pass    bool     `yaml:"pass" json:"pass"`
	Reasons []string `yaml:"reasons" json:"reasons"`
}

// RequiredThresholds lists the measured values a rejected clip would need
// the thresholds raised to, so operators can judge how far off it was.
type RequiredThresholds struct {
	MaxAbsAngleRad              float64 `yaml:"max_abs_angle_rad" json:"max_abs_angle_rad"`
	MaxAbsZoomPercent           float64 `yaml:"max_abs_zoom_percent" json:"max_abs_zoom_percent"`
	MaxScaleJump                float64 `yaml:"max_scale_jump" json:"max_scale_jump"`
	OutlierFramesRatio          float64 `yaml:"outlier_frames_ratio" json:"outlier_frames_ratio"`
	OutlierMaxConsecutiveFrames int     `yaml:"outlier_max_consecutive_frames" json:"outlier_max_consecutive_frames"`
}

// MotionsDriver records the synthetic source that drove the
// global-motions derivation.
type MotionsDriver struct {
	Width      int     `yaml:"width" json:"width"`
	Height     int     `yaml:"height" json:"height"`
	FPS        float64 `yaml:"fps" json:"fps"`
	FrameCount int     `yaml:"frame_count" json:"frame_count"`
}

// Motion groups everything measured from the motion path.
type Motion struct {
	FrameCount          int                       `yaml:"frame_count,omitempty" json:"frame_count,omitempty"`
	GlobalMotionsDriver *MotionsDriver            `yaml:"global_motions_driver,omitempty" json:"global_motions_driver,omitempty"`
	GlobalMotionsPath   string                    `yaml:"global_motions_path,omitempty" json:"global_motions_path,omitempty"`
	DebugMeta           *ffmpeg.MotionsMeta       `yaml:"debug_meta,omitempty" json:"debug_meta,omitempty"`
	Stats               *reliability.Stats        `yaml:"stats,omitempty" json:"stats,omitempty"`
	Thresholds          *config.RejectionSettings `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	Rejection           *Rejection                `yaml:"rejection,omitempty" json:"rejection,omitempty"`
	RequiredThresholds  *RequiredThresholds       `yaml:"required_thresholds_to_pass,omitempty" json:"required_thresholds_to_pass,omitempty"`
}

// Crop groups the candidate rectangles and their constraint verdicts.
type Crop struct {
	EffectiveMinHeightPx    int        `yaml:"effective_min_height_px,omitempty" json:"effective_min_height_px,omitempty"`
	CropToContentRect       *crop.Rect `yaml:"crop_to_content_rect,omitempty" json:"crop_to_content_rect,omitempty"`
	CropToContentAreaRatio  float64    `yaml:"crop_to_content_area_ratio,omitempty" json:"crop_to_content_area_ratio,omitempty"`
	CropToContentZoomFactor float64    `yaml:"crop_to_content_zoom_factor,omitempty" json:"crop_to_content_zoom_factor,omitempty"`
	CropToContentReasons    []string   `yaml:"crop_to_content_reasons,omitempty" json:"crop_to_content_reasons,omitempty"`
	FillCropRect            *crop.Rect `yaml:"fill_crop_rect,omitempty" json:"fill_crop_rect,omitempty"`
	FillCropReasons         []string   `yaml:"fill_crop_reasons,omitempty" json:"fill_crop_reasons,omitempty"`
	Rect                    *crop.Rect `yaml:"rect,omitempty" json:"rect,omitempty"`
}

// FillColor records the sampled fill color and how it was derived.
type FillColor struct {
	Color         string  `yaml:"color" json:"color"`
	Samples       int     `yaml:"samples" json:"samples"`
	PatchFraction float64 `yaml:"patch_fraction" json:"patch_fraction"`
}

// Border groups the border handling decision and fill plan.
type Border struct {
	Mode         config.BorderMode `yaml:"mode,omitempty" json:"mode,omitempty"`
	FillBudget   *fill.Stats       `yaml:"fill_budget,omitempty" json:"fill_budget,omitempty"`
	FillBandPx   int               `yaml:"fill_band_px,omitempty" json:"fill_band_px,omitempty"`
	SafeMarginPx float64           `yaml:"safe_margin_px,omitempty" json:"safe_margin_px,omitempty"`
	FillColor    *FillColor        `yaml:"fill_color,omitempty" json:"fill_color,omitempty"`
}

// AudioSelected identifies the audio stream carried into the output.
type AudioSelected struct {
	Index     int    `yaml:"index" json:"index"`
	CodecName string `yaml:"codec_name" json:"codec_name"`
	Channels  int    `yaml:"channels" json:"channels"`
	Default   int    `yaml:"default" json:"default"`
}

// Streams groups stream selection decisions.
type Streams struct {
	AudioSelected *AudioSelected `yaml:"audio_selected,omitempty" json:"audio_selected,omitempty"`
}

// Report is the full decision report.
type Report struct {
	Steadycrop   int                 `yaml:"steadycrop" json:"steadycrop"`
	ConfigPath   *string             `yaml:"config_path" json:"config_path"`
	ConfigSource string              `yaml:"config_source" json:"config_source"`
	Input        Identity            `yaml:"input" json:"input"`
	Output       string              `yaml:"output" json:"output"`
	Range        TimeRange           `yaml:"range" json:"range"`
	Settings     *config.Settings    `yaml:"settings" json:"settings"`
	Toolchain    ffmpeg.Fingerprint  `yaml:"toolchain" json:"toolchain"`
	CacheDirAbs  string              `yaml:"cache_dir_abs" json:"cache_dir_abs"`
	AnalysisKey  string              `yaml:"analysis_key" json:"analysis_key"`
	RunKey       string              `yaml:"run_key" json:"run_key"`
	Result       Outcome             `yaml:"result" json:"result"`
	Motion       Motion              `yaml:"motion" json:"motion"`
	Crop         Crop                `yaml:"crop" json:"crop"`
	Border       Border              `yaml:"border" json:"border"`
	Streams      Streams             `yaml:"streams" json:"streams"`
	Warnings     []string            `yaml:"warnings" json:"warnings"`
}

// New returns a report skeleton with the schema header and an empty
// warnings list, so the serialized shape is stable even on early exits.
func New() *Report {
	return &Report{Steadycrop: HeaderVersion, Warnings: []string{}}
}

// Warn appends a warning line.
func (r *Report) Warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// SidecarPath derives the report path next to the output file.
func SidecarPath(outputFile string, format config.ReportFormat) string {
	return fmt.Sprintf("%s.steadycrop.report.%s", outputFile, format)
}

// Write serializes the report in the requested format. JSON is indented;
// YAML uses two-space indent. Both end with a newline.
func Write(path string, r *Report, format config.ReportFormat) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}
	var data []byte
	var err error
	if format == config.ReportJSON {
		data, err = json.MarshalIndent(r, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	} else {
		data, err = yaml.Marshal(r)
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
