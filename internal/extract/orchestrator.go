package extract

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"video-transcriber/internal/domain"
	"video-transcriber/internal/media"
	"video-transcriber/internal/progress"
)

// probeBudget is the slice of the extraction phase spent on media analysis
// before a strategy starts.
const probeBudget = 0.05

// Orchestrator selects and drives one extraction/compression strategy to
// completion. It holds no backend-specific state, only the fallback policy:
// native first, then one full engine retry, never more.
type Orchestrator struct {
	native        Strategy
	engine        Strategy
	prober        *media.Prober
	nativeCapable func() bool
	mkdirTemp     func(dir, pattern string) (string, error)
	removeAll     func(path string) error
	stat          func(string) (os.FileInfo, error)
	logger        hclog.Logger
	now           func() time.Time
}

// NewOrchestrator constructs the production orchestrator. nativeCapable is
// the capability probe gating the accelerated path.
func NewOrchestrator(native, engine Strategy, prober *media.Prober, nativeCapable func() bool, logger hclog.Logger) *Orchestrator {
	return &Orchestrator{
		native:        native,
		engine:        engine,
		prober:        prober,
		nativeCapable: nativeCapable,
		mkdirTemp:     os.MkdirTemp,
		removeAll:     os.RemoveAll,
		stat:          os.Stat,
		logger:        logger.Named("orchestrator"),
		now:           time.Now,
	}
}

// NewOrchestratorForTests constructs an orchestrator with injectable deps.
func NewOrchestratorForTests(
	native, engine Strategy,
	prober *media.Prober,
	nativeCapable func() bool,
	mkdirTemp func(dir, pattern string) (string, error),
	removeAll func(path string) error,
	stat func(string) (os.FileInfo, error),
) *Orchestrator {
	return &Orchestrator{
		native:        native,
		engine:        engine,
		prober:        prober,
		nativeCapable: nativeCapable,
		mkdirTemp:     mkdirTemp,
		removeAll:     removeAll,
		stat:          stat,
		logger:        hclog.NewNullLogger(),
		now:           time.Now,
	}
}

// Outcome bundles an extraction result with its scratch-space cleanup.
type Outcome struct {
	Result domain.ExtractionResult
	Info   media.Info

	tempDir   string
	removeAll func(path string) error
}

// Cleanup removes the run's temporary workspace, including the output file.
func (o *Outcome) Cleanup() error {
	if o == nil || o.tempDir == "" {
		return nil
	}
	if err := o.removeAll(o.tempDir); err != nil {
		return err
	}
	o.tempDir = ""
	return nil
}

// AudioOptions tunes an audio-only extraction run. The settings layer owns
// the values; the orchestrator only forwards them to the strategy.
type AudioOptions struct {
	// LargeFileOptimizations enables the size-tiered accelerated capture
	// rate on the native path.
	LargeFileOptimizations bool
}

// ExtractAudioOnly produces a compact speech-optimized audio file from the
// asset, using the full progress budget and finishing at exactly 100.
func (o *Orchestrator) ExtractAudioOnly(ctx context.Context, asset domain.MediaAsset, opts AudioOptions, onProgress domain.ProgressFunc) (*Outcome, error) {
	gauge := progress.NewGauge(onProgress)
	outcome, err := o.ExtractAudioOnlyInto(ctx, asset, opts, gauge, progress.Full)
	if err != nil {
		return nil, err
	}
	gauge.Finish("Audio ready")
	return outcome, nil
}

// ExtractAudioOnlyInto is the phase-aware variant used when extraction is
// one stage of a larger workflow: progress is scaled into the given phase
// and the terminal 100 is left to the workflow owner.
func (o *Orchestrator) ExtractAudioOnlyInto(ctx context.Context, asset domain.MediaAsset, opts AudioOptions, gauge *progress.Gauge, phase progress.Phase) (*Outcome, error) {
	start := o.now()

	gauge.ReportAt(phase, 0, "Analyzing media")
	info, err := o.prober.Probe(ctx, asset.Path)
	if err != nil {
		return nil, &Error{Strategy: "probe", Stage: "analyzing", Message: "cannot analyze source media", Terminal: true, Err: err}
	}

	tempDir, err := o.mkdirTemp("", "video-transcriber-*")
	if err != nil {
		return nil, &Error{Strategy: "workspace", Stage: "preparing", Message: "failed to create temporary workspace", Terminal: true, Err: err}
	}

	req := Request{
		Asset:                  asset,
		Mode:                   domain.ModeAudioOnly,
		Info:                   info,
		WorkDir:                tempDir,
		LargeFileOptimizations: opts.LargeFileOptimizations,
	}
	report := strategyReporter(gauge, phase)

	var outPath string
	if o.nativeCapable() {
		outPath, err = o.native.Extract(ctx, req, report)
		if err != nil {
			if ctx.Err() != nil {
				_ = o.removeAll(tempDir)
				return nil, ctx.Err()
			}

			// One-shot fallback: the engine rerun starts from scratch and
			// never combines partial native output.
			o.logger.Warn("native extraction failed, falling back to engine", "err", err)
			gauge.ReportAt(phase, probeBudget, "Fast path unavailable, retrying with transcoding engine")
			outPath, err = o.engine.Extract(ctx, req, report)
		}
	} else {
		o.logger.Info("native path not capable, using engine directly")
		outPath, err = o.engine.Extract(ctx, req, report)
	}
	if err != nil {
		_ = o.removeAll(tempDir)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, terminalize(err)
	}

	outcome, err := o.buildOutcome(asset, info, outPath, tempDir, true, start)
	if err != nil {
		_ = o.removeAll(tempDir)
		return nil, err
	}
	return outcome, nil
}

// CompressVideo re-encodes the asset with explicit settings. The engine is
// the only strategy for full re-compression; failure is terminal.
func (o *Orchestrator) CompressVideo(ctx context.Context, asset domain.MediaAsset, settings domain.CompressionSettings, onProgress domain.ProgressFunc) (*Outcome, error) {
	gauge := progress.NewGauge(onProgress)
	start := o.now()

	gauge.Report(0, "Analyzing media")
	info, err := o.prober.Probe(ctx, asset.Path)
	if err != nil {
		return nil, &Error{Strategy: "probe", Stage: "analyzing", Message: "cannot analyze source media", Terminal: true, Err: err}
	}

	tempDir, err := o.mkdirTemp("", "video-transcriber-*")
	if err != nil {
		return nil, &Error{Strategy: "workspace", Stage: "preparing", Message: "failed to create temporary workspace", Terminal: true, Err: err}
	}

	req := Request{Asset: asset, Mode: domain.ModeCompress, Settings: settings, Info: info, WorkDir: tempDir}
	outPath, err := o.engine.Extract(ctx, req, strategyReporter(gauge, progress.Full))
	if err != nil {
		_ = o.removeAll(tempDir)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, terminalize(err)
	}

	outcome, err := o.buildOutcome(asset, info, outPath, tempDir, false, start)
	if err != nil {
		_ = o.removeAll(tempDir)
		return nil, err
	}
	gauge.Finish("Compression complete")
	return outcome, nil
}

// buildOutcome stats the output and computes size accounting. Output larger
// than the source is tolerated; the ratio simply drops below 1.
func (o *Orchestrator) buildOutcome(asset domain.MediaAsset, info media.Info, outPath, tempDir string, audioOnly bool, start time.Time) (*Outcome, error) {
	outInfo, err := o.stat(outPath)
	if err != nil {
		return nil, &Error{Strategy: "workspace", Stage: "finishing", Message: "output file vanished", Terminal: true, Err: err}
	}

	outputSize := outInfo.Size()
	ratio := 0.0
	if outputSize > 0 {
		ratio = float64(asset.SizeBytes) / float64(outputSize)
	}

	return &Outcome{
		Result: domain.ExtractionResult{
			OutputPath:        outPath,
			OriginalSize:      asset.SizeBytes,
			OutputSize:        outputSize,
			CompressionRatio:  ratio,
			SavedBytes:        asset.SizeBytes - outputSize,
			AudioOnly:         audioOnly,
			ProcessingSeconds: o.now().Sub(start).Seconds(),
		},
		Info:      info,
		tempDir:   tempDir,
		removeAll: o.removeAll,
	}, nil
}

// strategyReporter scales strategy-local fractions into the phase budget,
// reserving the leading probe slice.
func strategyReporter(gauge *progress.Gauge, phase progress.Phase) reportFunc {
	return func(fraction float64, stage string) {
		gauge.ReportAt(phase, probeBudget+(1-probeBudget)*fraction, stage)
	}
}

// terminalize marks a strategy error as final before it crosses the
// orchestrator boundary.
func terminalize(err error) error {
	var strategyErr *Error
	if errors.As(err, &strategyErr) {
		strategyErr.Terminal = true
		strategyErr.Message = strategyErr.Message + "; try a smaller file or pre-compress the video"
		return strategyErr
	}
	return &Error{Strategy: "engine", Stage: "transcoding", Message: "extraction failed; try a smaller file", Terminal: true, Err: err}
}

// RecommendedSettings derives compression settings from source size. Pure
// and total: quality steps down monotonically as size grows.
func RecommendedSettings(sizeBytes int64) domain.CompressionSettings {
	switch {
	case sizeBytes > 4<<30:
		return domain.CompressionSettings{Quality: domain.QualityLow, MaxWidth: 854, MaxHeight: 480, FrameRate: 24, AudioBitrateKbps: 96}
	case sizeBytes > 2<<30:
		return domain.CompressionSettings{Quality: domain.QualityLow, MaxWidth: 1280, MaxHeight: 720, FrameRate: 24, AudioBitrateKbps: 128}
	case sizeBytes > 512<<20:
		return domain.CompressionSettings{Quality: domain.QualityMedium, MaxWidth: 1280, MaxHeight: 720, FrameRate: 30, AudioBitrateKbps: 128}
	default:
		return domain.CompressionSettings{Quality: domain.QualityHigh, MaxWidth: 1920, MaxHeight: 1080, FrameRate: 30, AudioBitrateKbps: 192}
	}
}
