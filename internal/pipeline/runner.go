package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/steadycrop/internal/cache"
	"github.com/backmassage/steadycrop/internal/config"
	"github.com/backmassage/steadycrop/internal/crop"
	"github.com/backmassage/steadycrop/internal/ffmpeg"
	"github.com/backmassage/steadycrop/internal/fill"
	"github.com/backmassage/steadycrop/internal/logging"
	"github.com/backmassage/steadycrop/internal/motion"
	"github.com/backmassage/steadycrop/internal/planner"
	"github.com/backmassage/steadycrop/internal/probe"
	"github.com/backmassage/steadycrop/internal/report"
)

// run carries the state threaded through one stabilization run.
type run struct {
	cfg      *config.Config
	settings *config.Settings
	log      *logging.Logger

	width          int
	height         int
	fps            float64
	probedDuration float64

	rep        *report.Report
	reportPath string
}

// Run processes one clip end to end. The returned error is the terminal
// failure; the report sidecar has already been written for every decision
// reached after motion analysis.
func Run(ctx context.Context, cfg *config.Config, settings *config.Settings,
	configPath, configSource string, log *logging.Logger) error {
	r := &run{cfg: cfg, settings: settings, log: log}

	pr, err := probe.Probe(ctx, cfg.InputFile)
	if err != nil {
		return err
	}
	if pr.PrimaryVideo == nil {
		return errors.New("input has no video stream")
	}
	r.width = pr.PrimaryVideo.Width
	r.height = pr.PrimaryVideo.Height
	if r.width <= 0 || r.height <= 0 {
		return errors.New("input video has no valid geometry")
	}
	r.fps = pr.FPS()
	if r.fps <= 0 {
		return errors.New("could not determine input frame rate")
	}
	r.probedDuration = pr.Format.Duration
	effMinHeight, err := settings.EffectiveMinHeightPx(r.height)
	if err != nil {
		return err
	}

	cacheDirRaw := settings.IO.CacheDir
	if cacheDirRaw == "" {
		cacheDirRaw = config.DefaultCacheDir(cfg.InputFile)
	}
	cacheDir, err := filepath.Abs(cacheDirRaw)
	if err != nil {
		return fmt.Errorf("resolving cache dir: %w", err)
	}
	dir, err := cache.Open(cacheDir)
	if err != nil {
		return err
	}

	toolchain, err := ffmpeg.FingerprintToolchain(ctx)
	if err != nil {
		return err
	}
	identity, err := fileIdentity(cfg.InputFile)
	if err != nil {
		return err
	}
	rng := report.TimeRange{Start: cfg.StartSeconds, Duration: cfg.DurationSeconds}

	aKey, err := analysisKey(identity, rng, r.width, r.height, pr.FPSFraction(),
		settings.Engine.Detect, toolchain)
	if err != nil {
		return err
	}
	rKey, err := runKey(aKey, settings, toolchain)
	if err != nil {
		return err
	}
	trfPath := dir.TransformsPath(aKey)

	outputAbs, err := filepath.Abs(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("resolving output path: %w", err)
	}
	r.reportPath = report.SidecarPath(cfg.OutputFile, settings.IO.ReportFormat)
	r.rep = report.New()
	r.rep.ConfigSource = configSource
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		r.rep.ConfigPath = &abs
	}
	r.rep.Input = identity
	r.rep.Output = outputAbs
	r.rep.Range = rng
	r.rep.Settings = settings
	r.rep.Toolchain = toolchain
	r.rep.CacheDirAbs = cacheDir
	r.rep.AnalysisKey = aKey
	r.rep.RunKey = rKey
	r.rep.Crop.EffectiveMinHeightPx = effMinHeight

	audioIndex := r.selectAudio(pr)

	// --- Pass 1: motion analysis, cached on the analysis key ---
	if dir.Has(trfPath) {
		log.Info("Cache hit: reusing motion analysis transforms")
	} else {
		log.Info("Running vidstabdetect (pass 1/2): motion analysis")
		tmp := dir.TempPath(trfPath)
		os.Remove(tmp)
		if err := ffmpeg.RunDetect(ctx, cfg.InputFile, tmp, settings.Engine.Detect,
			cfg.StartSeconds, cfg.DurationSeconds, cfg.Verbose); err != nil {
			return err
		}
		if err := dir.Commit(tmp, trfPath); err != nil {
			return err
		}
	}
	frameCount, err := ffmpeg.CountFrames(trfPath)
	if err != nil {
		return err
	}
	if frameCount <= 1 {
		return errors.New("insufficient frames for stabilization")
	}

	// --- Derive the smoothed global motion path ---
	log.Info("Computing crop feasibility from motion path")
	motionsDir := ""
	if cfg.KeepTemp {
		motionsDir = filepath.Join(cacheDir, rKey+".global_motions")
	}
	motionsText, meta, motionsPath, err := ffmpeg.RunGlobalMotions(ctx, trfPath,
		r.width, r.height, r.fps, frameCount, settings.Engine.Transform, motionsDir, cfg.Verbose)
	if err != nil {
		return err
	}
	if cfg.KeepTemp {
		r.rep.Motion.GlobalMotionsPath = motionsPath
	}
	r.rep.Motion.GlobalMotionsDriver = &report.MotionsDriver{
		Width: r.width, Height: r.height, FPS: r.fps, FrameCount: frameCount,
	}
	r.rep.Motion.DebugMeta = &meta

	path, err := motion.Parse(motionsText)
	if err != nil {
		return err
	}
	r.rep.Motion.FrameCount = path.Len()

	// --- Decide ---
	res := planner.Decide(path, r.width, r.height, settings, effMinHeight)
	r.recordMotion(&res)

	if res.Outcome == planner.OutcomeRejected {
		return r.finishRejected(&res)
	}
	r.recordCrop(&res)

	switch res.Outcome {
	case planner.OutcomeCropOnly:
		return r.finishCropOnly(ctx, &res, trfPath, audioIndex)
	case planner.OutcomeCropInfeasible:
		return r.finishFailure(&res, "global stabilization unsuitable for this material (crop infeasible)")
	case planner.OutcomeFillCropInfeasible:
		return r.finishFailure(&res, "global stabilization unsuitable for this material (fill crop infeasible)")
	case planner.OutcomeFillBudgetExceeded:
		return r.finishFailure(&res, "global stabilization unsuitable for this material (fill budget exceeded)")
	default:
		return r.finishFill(ctx, &res, trfPath, audioIndex)
	}
}

// selectAudio picks the audio stream to carry over and records it in the
// report. Returns -1 for video-only output.
func (r *run) selectAudio(pr *probe.ProbeResult) int {
	if !r.cfg.CopyAudio {
		return -1
	}
	sel := pr.SelectAudioStream()
	if sel == nil {
		r.rep.Warn("no usable audio stream found; output will be video-only")
		return -1
	}
	def := 0
	if sel.IsDefault {
		def = 1
	}
	r.rep.Streams.AudioSelected = &report.AudioSelected{
		Index:     sel.Index,
		CodecName: sel.Codec,
		Channels:  sel.Channels,
		Default:   def,
	}
	return sel.Index
}

func (r *run) recordMotion(res *planner.Result) {
	reasons := res.Motion.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	r.rep.Motion.Stats = &res.Motion.Stats
	r.rep.Motion.Thresholds = &r.settings.Rejection
	r.rep.Motion.Rejection = &report.Rejection{Pass: res.Motion.OK, Reasons: reasons}
}

func (r *run) recordCrop(res *planner.Result) {
	rect := res.CropRect
	r.rep.Crop.CropToContentRect = &rect
	if !rect.Empty() {
		r.rep.Crop.CropToContentAreaRatio = rect.AreaRatio(r.width, r.height)
		r.rep.Crop.CropToContentZoomFactor = float64(r.width) / float64(rect.W)
	}
}

func (r *run) writeReport() error {
	return report.Write(r.reportPath, r.rep, r.settings.IO.ReportFormat)
}

func (r *run) finishRejected(res *planner.Result) error {
	s := &res.Motion.Stats
	r.rep.Motion.RequiredThresholds = &report.RequiredThresholds{
		MaxAbsAngleRad:              s.MaxAbsAngleRad,
		MaxAbsZoomPercent:           s.MaxAbsZoomPercent,
		MaxScaleJump:                s.MaxScaleJump,
		OutlierFramesRatio:          s.CombinedOutliers.BadFramesRatio,
		OutlierMaxConsecutiveFrames: s.CombinedOutliers.MaxConsecutiveBadFrames,
	}
	r.rep.Result = report.Outcome{Pass: false, Mode: res.Mode(), Message: res.Message()}
	if err := r.writeReport(); err != nil {
		return err
	}
	logRejectionSummary(r.log, &res.Motion, r.settings.Rejection, r.fps, r.cfg.StartSeconds)
	return errors.New(res.Message())
}

// finishFailure writes the report for a non-renderable crop/fill outcome
// and returns the terminal error.
func (r *run) finishFailure(res *planner.Result, message string) error {
	r.rep.Crop.CropToContentReasons = res.CropReasons
	r.rep.Border.Mode = r.settings.Border.Mode
	if res.Outcome != planner.OutcomeCropInfeasible {
		rect := res.FillCropRect
		r.rep.Crop.FillCropRect = &rect
		r.rep.Crop.FillCropReasons = res.FillCropReasons
		r.rep.Border.FillBudget = res.FillStats
	}
	r.rep.Result = report.Outcome{Pass: false, Mode: res.Mode(), Message: res.Message()}
	if err := r.writeReport(); err != nil {
		return err
	}
	return errors.New(message)
}

func (r *run) warnSubs() {
	if r.cfg.CopySubs {
		r.rep.Warn("subtitles copied unchanged; crop may remove visible subtitle regions")
	}
}

func (r *run) renderSpec(trfPath string, rect crop.Rect, audioIndex int) ffmpeg.RenderSpec {
	return ffmpeg.RenderSpec{
		InputFile:       r.cfg.InputFile,
		OutputFile:      r.cfg.OutputFile,
		TrfPath:         trfPath,
		Transform:       r.settings.Engine.Transform,
		Rect:            rect,
		OutputWidth:     r.width,
		OutputHeight:    r.height,
		AudioIndex:      audioIndex,
		CopySubs:        r.cfg.CopySubs,
		StartSeconds:    r.cfg.StartSeconds,
		DurationSeconds: r.cfg.DurationSeconds,
		Verbose:         r.cfg.Verbose,
	}
}

func (r *run) finishCropOnly(ctx context.Context, res *planner.Result,
	trfPath string, audioIndex int) error {
	r.warnSubs()
	rect := res.CropRect
	r.rep.Border.Mode = r.settings.Border.Mode
	r.rep.Crop.Rect = &rect

	r.log.Render("Running vidstabtransform (pass 2/2): stabilize + crop + encode")
	if err := ffmpeg.Render(ctx, r.renderSpec(trfPath, rect, audioIndex)); err != nil {
		return err
	}
	r.rep.Result = report.Outcome{Pass: true, Mode: res.Mode(), Message: res.Message()}
	if err := r.writeReport(); err != nil {
		return err
	}
	r.log.Success("Stabilized %s (crop %s, zoom %.3fx)",
		filepath.Base(r.cfg.OutputFile), rect.String(), float64(r.width)/float64(rect.W))
	return nil
}

func (r *run) finishFill(ctx context.Context, res *planner.Result,
	trfPath string, audioIndex int) error {
	rect := res.FillCropRect
	stats := res.FillStats
	r.rep.Crop.CropToContentReasons = res.CropReasons
	r.rep.Crop.FillCropRect = &rect
	r.rep.Crop.Rect = &rect
	r.rep.Border.Mode = r.settings.Border.Mode
	r.rep.Border.FillBudget = stats

	bandPx := fill.BandWidth(stats.MaxGapPx, r.width, rect.W)
	r.rep.Border.FillBandPx = bandPx
	safeMarginPx := float64(min(r.width, r.height)) * r.settings.Crop.CenterSafeMargin
	r.rep.Border.SafeMarginPx = safeMarginPx
	if float64(bandPx) > safeMarginPx {
		r.rep.Warn("fill band exceeds center_safe_margin; fill may reach into the safe region")
	}

	fillColor, err := r.sampleFillColor(ctx)
	if err != nil {
		return err
	}
	fs := r.settings.Border.Fill
	r.rep.Border.FillColor = &report.FillColor{
		Color:         fillColor.Hex(),
		Samples:       fs.SampleFrames,
		PatchFraction: fs.PatchFraction,
	}
	r.warnSubs()

	r.log.Render("Running vidstabtransform (pass 2/2): stabilize + crop + fill + encode")
	if err := ffmpeg.RenderFill(ctx, r.renderSpec(trfPath, rect, audioIndex),
		r.fps, fillColor.Hex(), bandPx); err != nil {
		return err
	}
	r.rep.Result = report.Outcome{Pass: true, Mode: res.Mode(), Message: res.Message()}
	if err := r.writeReport(); err != nil {
		return err
	}
	r.log.Success("Stabilized %s (fill crop %s, band %dpx, color %s)",
		filepath.Base(r.cfg.OutputFile), rect.String(), bandPx, fillColor.Hex())
	return nil
}

// sampleFillColor derives the deterministic fill color over the analyzed
// range. The sampling window falls back to the probed duration when no
// explicit range was given.
func (r *run) sampleFillColor(ctx context.Context) (fill.RGB, error) {
	start := 0.0
	if r.cfg.StartSeconds != nil {
		start = *r.cfg.StartSeconds
	}
	var duration float64
	if r.cfg.DurationSeconds != nil {
		duration = *r.cfg.DurationSeconds
	} else {
		duration = r.probedDuration - start
	}
	if duration <= 0 {
		return fill.RGB{}, errors.New("invalid duration for fill color sampling")
	}
	fs := r.settings.Border.Fill
	sampler := ffmpeg.NewCenterPatchSampler(r.cfg.InputFile, r.width, r.height, fs.PatchFraction)
	return fill.MedianColor(ctx, sampler, start, duration, fs.SampleFrames)
}
