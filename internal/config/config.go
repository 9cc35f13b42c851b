// Package config holds runtime configuration: the CLI-level Config, the
// immutable Settings value types loaded from the YAML sidecar, defaults,
// flag parsing, and validation. Settings are validated once at load and
// never re-validated downstream.
package config

import (
	"errors"
	"fmt"
)

// --- Enum types for validated string fields ---

// BorderMode selects what happens when the crop-only constraints fail.
type BorderMode string

const (
	BorderCropOnly BorderMode = "crop_only"                 // Crop-only; constraint failure is terminal.
	BorderFillFall BorderMode = "crop_prefer_fill_fallback" // Fall back to a budgeted border fill.
)

// RejectionMode selects how absolute angle/zoom/scale-jump thresholds
// are enforced by the reliability classifier.
type RejectionMode string

const (
	RejectionMax      RejectionMode = "max"      // Any single frame over a threshold rejects.
	RejectionBudgeted RejectionMode = "budgeted" // Bounded fraction/run of outlier frames tolerated.
)

// ReportFormat is the serialization format of the decision report sidecar.
type ReportFormat string

const (
	ReportYAML ReportFormat = "yaml"
	ReportJSON ReportFormat = "json"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// --- Settings value types (YAML sidecar) ---

// DetectSettings are the vidstabdetect (pass 1) parameters. They feed the
// analysis cache key: changing any of them invalidates the cached motion
// analysis.
type DetectSettings struct {
	Shakiness      int     `yaml:"shakiness" json:"shakiness"`             // 1..10.
	Accuracy       int     `yaml:"accuracy" json:"accuracy"`               // 1..15, >= Shakiness.
	StepSize       int     `yaml:"stepsize" json:"stepsize"`               // 1..32.
	MinContrast    float64 `yaml:"mincontrast" json:"mincontrast"`         // 0..1.
	ReferenceFrame int     `yaml:"reference_frame" json:"reference_frame"` // Tripod reference, >= 1.
}

// TransformSettings are the vidstabtransform (pass 2) parameters shared by
// the global-motions derivation and the final render.
type TransformSettings struct {
	OptAlgo   string `yaml:"optalgo" json:"optalgo"` // opt | gauss | avg.
	Smoothing int    `yaml:"smoothing" json:"smoothing"`
}

// EngineSettings groups the external stabilization engine parameters.
// Only the vid.stab engine is supported.
type EngineSettings struct {
	Kind      string            `yaml:"kind" json:"kind"` // Must be "vidstab".
	Detect    DetectSettings    `yaml:"detect" json:"detect"`
	Transform TransformSettings `yaml:"transform" json:"transform"`
}

// CropSettings constrain the static crop rectangle.
type CropSettings struct {
	MinAreaRatio     float64 `yaml:"min_area_ratio" json:"min_area_ratio"` // (0..1].
	MinHeightPx      int     `yaml:"min_height_px" json:"min_height_px"`   // 0 = derive from MinHeightRatio.
	MinHeightRatio   float64 `yaml:"min_height_ratio" json:"min_height_ratio"`
	CenterSafeMargin float64 `yaml:"center_safe_margin" json:"center_safe_margin"` // [0..0.5) normalized inset.
}

// FillSettings bound the border-fill fallback: how the fill color is
// sampled and how much fill is tolerable.
type FillSettings struct {
	Kind                 string  `yaml:"kind" json:"kind"` // Must be "center_patch_median".
	PatchFraction        float64 `yaml:"patch_fraction" json:"patch_fraction"`
	SampleFrames         int     `yaml:"sample_frames" json:"sample_frames"`
	MaxAreaRatio         float64 `yaml:"max_area_ratio" json:"max_area_ratio"`
	MaxFramesRatio       float64 `yaml:"max_frames_ratio" json:"max_frames_ratio"`
	MaxConsecutiveFrames int     `yaml:"max_consecutive_frames" json:"max_consecutive_frames"`
}

// BorderSettings select the border handling mode and its fill budgets.
type BorderSettings struct {
	Mode BorderMode   `yaml:"mode" json:"mode"`
	Fill FillSettings `yaml:"fill" json:"fill"`
}

// RejectionSettings gate the motion-path reliability classifier.
type RejectionSettings struct {
	Mode                        RejectionMode `yaml:"mode" json:"mode"`
	MaxMissingFraction          float64       `yaml:"max_missing_fraction" json:"max_missing_fraction"`
	MaxMADFraction              float64       `yaml:"max_mad_fraction" json:"max_mad_fraction"`
	MaxScaleJump                float64       `yaml:"max_scale_jump" json:"max_scale_jump"`
	MaxAbsAngleRad              float64       `yaml:"max_abs_angle_rad" json:"max_abs_angle_rad"`
	MaxAbsZoomPercent           float64       `yaml:"max_abs_zoom_percent" json:"max_abs_zoom_percent"`
	OutlierMaxFramesRatio       float64       `yaml:"outlier_max_frames_ratio" json:"outlier_max_frames_ratio"`
	OutlierMaxConsecutiveFrames int           `yaml:"outlier_max_consecutive_frames" json:"outlier_max_consecutive_frames"`
}

// IOSettings control where cache artifacts live and how the report is
// written. An empty CacheDir means "derive from the input path".
type IOSettings struct {
	CacheDir     string       `yaml:"cache_dir" json:"cache_dir"`
	ReportFormat ReportFormat `yaml:"report_format" json:"report_format"`
}

// Settings is the fully resolved configuration for one run. It is treated
// as immutable after Validate succeeds.
type Settings struct {
	Engine    EngineSettings    `yaml:"engine" json:"engine"`
	Crop      CropSettings      `yaml:"crop" json:"crop"`
	Border    BorderSettings    `yaml:"border" json:"border"`
	Rejection RejectionSettings `yaml:"rejection" json:"rejection"`
	IO        IOSettings        `yaml:"io" json:"io"`
}

// DefaultSettings returns the Settings defaults. The rejection budgets
// default very permissive (ratio 0.90, run 600): the classifier exists to
// catch estimates that are wrong almost everywhere, not to double up on the
// crop/fill budgets.
func DefaultSettings() Settings {
	return Settings{
		Engine: EngineSettings{
			Kind: "vidstab",
			Detect: DetectSettings{
				Shakiness:      5,
				Accuracy:       15,
				StepSize:       6,
				MinContrast:    0.25,
				ReferenceFrame: 1,
			},
			Transform: TransformSettings{
				OptAlgo:   "opt",
				Smoothing: 15,
			},
		},
		Crop: CropSettings{
			MinAreaRatio:     0.25,
			MinHeightPx:      0,
			MinHeightRatio:   0.65,
			CenterSafeMargin: 0.10,
		},
		Border: BorderSettings{
			Mode: BorderFillFall,
			Fill: FillSettings{
				Kind:                 "center_patch_median",
				PatchFraction:        0.10,
				SampleFrames:         25,
				MaxAreaRatio:         0.02,
				MaxFramesRatio:       0.02,
				MaxConsecutiveFrames: 15,
			},
		},
		Rejection: RejectionSettings{
			Mode:                        RejectionBudgeted,
			MaxMissingFraction:          0.05,
			MaxMADFraction:              0.50,
			MaxScaleJump:                0.50,
			MaxAbsAngleRad:              0.60,
			MaxAbsZoomPercent:           35.0,
			OutlierMaxFramesRatio:       0.90,
			OutlierMaxConsecutiveFrames: 600,
		},
		IO: IOSettings{
			CacheDir:     "",
			ReportFormat: ReportYAML,
		},
	}
}

// Validate checks every settings field against its allowed range. It is the
// single gate for configuration errors: downstream packages assume a
// validated Settings and never re-check ranges.
func (s *Settings) Validate() error {
	e := s.Engine
	if e.Kind != "vidstab" {
		return errors.New("only engine.kind: vidstab is supported")
	}
	if e.Detect.Shakiness < 1 || e.Detect.Shakiness > 10 {
		return errors.New("engine.detect.shakiness must be 1..10")
	}
	if e.Detect.Accuracy < 1 || e.Detect.Accuracy > 15 {
		return errors.New("engine.detect.accuracy must be 1..15")
	}
	if e.Detect.Accuracy < e.Detect.Shakiness {
		return errors.New("engine.detect.accuracy must be >= shakiness")
	}
	if e.Detect.StepSize < 1 || e.Detect.StepSize > 32 {
		return errors.New("engine.detect.stepsize must be 1..32")
	}
	if e.Detect.MinContrast < 0 || e.Detect.MinContrast > 1 {
		return errors.New("engine.detect.mincontrast must be 0..1")
	}
	if e.Detect.ReferenceFrame < 1 {
		return errors.New("engine.detect.reference_frame must be >= 1")
	}
	switch e.Transform.OptAlgo {
	case "opt", "gauss", "avg":
		// valid
	default:
		return errors.New("engine.transform.optalgo must be opt, gauss, or avg")
	}
	if e.Transform.Smoothing < 0 {
		return errors.New("engine.transform.smoothing must be >= 0")
	}

	c := s.Crop
	if c.MinAreaRatio <= 0 || c.MinAreaRatio > 1 {
		return errors.New("crop.min_area_ratio must be > 0 and <= 1")
	}
	if c.MinHeightPx < 0 {
		return errors.New("crop.min_height_px must be >= 0")
	}
	if c.MinHeightRatio < 0 || c.MinHeightRatio > 1 {
		return errors.New("crop.min_height_ratio must be 0..1")
	}
	if c.MinHeightPx == 0 && c.MinHeightRatio == 0 {
		return errors.New("either crop.min_height_px or crop.min_height_ratio must be set")
	}
	if c.CenterSafeMargin < 0 || c.CenterSafeMargin >= 0.5 {
		return errors.New("crop.center_safe_margin must be >= 0 and < 0.5")
	}

	b := s.Border
	switch b.Mode {
	case BorderCropOnly, BorderFillFall:
		// valid
	default:
		return errors.New("border.mode must be crop_only or crop_prefer_fill_fallback")
	}
	if b.Fill.Kind != "center_patch_median" {
		return errors.New("border.fill.kind must be center_patch_median")
	}
	if b.Fill.PatchFraction <= 0 || b.Fill.PatchFraction > 0.5 {
		return errors.New("border.fill.patch_fraction must be > 0 and <= 0.5")
	}
	if b.Fill.SampleFrames <= 0 {
		return errors.New("border.fill.sample_frames must be positive")
	}
	if b.Fill.MaxAreaRatio < 0 || b.Fill.MaxAreaRatio > 1 {
		return errors.New("border.fill.max_area_ratio must be 0..1")
	}
	if b.Fill.MaxFramesRatio < 0 || b.Fill.MaxFramesRatio > 1 {
		return errors.New("border.fill.max_frames_ratio must be 0..1")
	}
	if b.Fill.MaxConsecutiveFrames < 0 {
		return errors.New("border.fill.max_consecutive_frames must be >= 0")
	}

	r := s.Rejection
	switch r.Mode {
	case RejectionMax, RejectionBudgeted:
		// valid
	default:
		return errors.New("rejection.mode must be max or budgeted")
	}
	if r.MaxMissingFraction < 0 || r.MaxMissingFraction > 1 {
		return errors.New("rejection.max_missing_fraction must be 0..1")
	}
	if r.MaxMADFraction <= 0 {
		return errors.New("rejection.max_mad_fraction must be positive")
	}
	if r.MaxScaleJump <= 0 {
		return errors.New("rejection.max_scale_jump must be positive")
	}
	if r.MaxAbsAngleRad < 0 {
		return errors.New("rejection.max_abs_angle_rad must be >= 0")
	}
	if r.MaxAbsZoomPercent < 0 {
		return errors.New("rejection.max_abs_zoom_percent must be >= 0")
	}
	if r.OutlierMaxFramesRatio < 0 || r.OutlierMaxFramesRatio > 1 {
		return errors.New("rejection.outlier_max_frames_ratio must be 0..1")
	}
	if r.OutlierMaxConsecutiveFrames < 0 {
		return errors.New("rejection.outlier_max_consecutive_frames must be >= 0")
	}

	switch s.IO.ReportFormat {
	case ReportYAML, ReportJSON:
		// valid
	default:
		return errors.New("io.report_format must be yaml or json")
	}
	return nil
}

// EffectiveMinHeightPx resolves the crop height floor for a source of the
// given height: the explicit pixel value when set, otherwise the
// ratio-derived value.
func (s *Settings) EffectiveMinHeightPx(sourceHeight int) (int, error) {
	px := s.Crop.MinHeightPx
	if px <= 0 {
		px = int(float64(sourceHeight)*s.Crop.MinHeightRatio + 0.5)
	}
	if px <= 0 {
		return 0, fmt.Errorf("effective min height must be positive (source height %d)", sourceHeight)
	}
	return px, nil
}

// --- CLI-level Config ---

// Config holds the per-invocation CLI state. It is populated by
// [DefaultConfig] and then mutated by [ParseFlags] before being passed
// (by pointer) to packages that need it.
type Config struct {
	// Paths.
	InputFile  string
	OutputFile string

	// Config sidecar selection.
	ConfigFile         string
	WriteDefaultConfig bool
	UseDefaultConfig   bool

	// Time range (raw CLI strings; resolved by Validate).
	StartArg    string
	DurationArg string
	EndArg      string

	// Resolved range in seconds. Nil means "not set".
	StartSeconds    *float64
	DurationSeconds *float64

	// Stream handling.
	CopyAudio bool // Default: true. Cleared by --no-copy-audio.
	CopySubs  bool

	// Behavior.
	KeepTemp bool // Keep derived global-motions files under the cache dir.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode
	LogFile   string
	CheckOnly bool
}

// DefaultConfig returns a Config with the CLI defaults.
func DefaultConfig() Config {
	return Config{
		CopyAudio: true,
		CopySubs:  false,
		KeepTemp:  false,
		ColorMode: ColorAuto,
	}
}

// Validate checks flag combinations and resolves the time range into
// StartSeconds/DurationSeconds. Called once after ParseFlags.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}
	if c.ConfigFile != "" && c.UseDefaultConfig {
		return errors.New("use -c/--config or --use-default-config, not both")
	}
	if c.ConfigFile != "" && c.WriteDefaultConfig {
		return errors.New("use -c/--config or --write-default-config, not both")
	}
	if c.UseDefaultConfig && c.WriteDefaultConfig {
		return errors.New("use --use-default-config or --write-default-config, not both")
	}
	if c.CheckOnly {
		return nil
	}
	if c.InputFile == "" {
		return errors.New("missing required -i/--input")
	}
	if !c.WriteDefaultConfig && c.OutputFile == "" {
		return errors.New("missing required -o/--output")
	}

	start, err := ParseTimeSeconds(c.StartArg)
	if err != nil {
		return err
	}
	duration, err := ParseTimeSeconds(c.DurationArg)
	if err != nil {
		return err
	}
	end, err := ParseTimeSeconds(c.EndArg)
	if err != nil {
		return err
	}
	if duration != nil && end != nil {
		return errors.New("use --duration or --end, not both")
	}
	if end != nil && start == nil {
		return errors.New("--end requires --start")
	}
	if start != nil && *start < 0 {
		return errors.New("--start must be >= 0")
	}
	if duration != nil && *duration <= 0 {
		return errors.New("--duration must be > 0")
	}
	if end != nil && *end <= 0 {
		return errors.New("--end must be > 0")
	}
	if end != nil {
		d := *end - *start
		if d <= 0 {
			return errors.New("--end must be > --start")
		}
		duration = &d
	}
	c.StartSeconds = start
	c.DurationSeconds = duration
	return nil
}

// DefaultSidecarPath is the per-input config file path used by
// --write-default-config and --use-default-config.
func DefaultSidecarPath(inputFile string) string {
	return inputFile + ".steadycrop.config.yaml"
}

// DefaultCacheDir is the per-input cache directory used when
// settings.io.cache_dir is unset.
func DefaultCacheDir(inputFile string) string {
	return inputFile + ".steadycrop_cache"
}
