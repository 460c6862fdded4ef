package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"video-transcriber/internal/domain"
	"video-transcriber/internal/media"
)

// EngineStrategy is the full transcoding fallback: the engine decodes the
// container and re-encodes audio (and, in compress mode, video) at explicit
// codec/bitrate/resolution parameters. Slower than the native path but
// tolerant of sources the accelerated graph rejects.
type EngineStrategy struct {
	ffmpegPath string
	negotiator *media.Negotiator
	run        streamRunner
	stat       func(string) (os.FileInfo, error)
	logger     hclog.Logger
}

// NewEngineStrategy constructs the production transcoding fallback.
func NewEngineStrategy(negotiator *media.Negotiator, logger hclog.Logger) *EngineStrategy {
	return &EngineStrategy{
		ffmpegPath: "ffmpeg",
		negotiator: negotiator,
		run:        execStream,
		stat:       os.Stat,
		logger:     logger.Named("engine"),
	}
}

// NewEngineStrategyForTests constructs the strategy with injectable deps.
func NewEngineStrategyForTests(ffmpegPath string, negotiator *media.Negotiator, run streamRunner, stat func(string) (os.FileInfo, error)) *EngineStrategy {
	return &EngineStrategy{
		ffmpegPath: ffmpegPath,
		negotiator: negotiator,
		run:        run,
		stat:       stat,
		logger:     hclog.NewNullLogger(),
	}
}

// Name identifies the strategy in errors and logs.
func (s *EngineStrategy) Name() string { return "engine" }

// Extract transcodes the source according to the request mode.
func (s *EngineStrategy) Extract(ctx context.Context, req Request, report reportFunc) (string, error) {
	switch req.Mode {
	case domain.ModeCompress:
		return s.compress(ctx, req, report)
	default:
		return s.audioOnly(ctx, req, report)
	}
}

// audioOnly re-encodes the audio track at full decode rate.
func (s *EngineStrategy) audioOnly(ctx context.Context, req Request, report reportFunc) (string, error) {
	codec, err := s.negotiator.FirstSupported(ctx, media.AudioCodecPreference)
	if err != nil {
		return "", newError(s.Name(), "negotiating", "no audio codec available", err)
	}

	bitrate := req.Settings.AudioBitrateKbps
	if bitrate <= 0 {
		bitrate = nativeAudioBitrateKbps
	}
	outPath := filepath.Join(req.WorkDir, "audio-transcoded."+audioExtension(codec))

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", req.Asset.Path,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", codec,
		"-b:a", fmt.Sprintf("%dk", bitrate),
		"-progress", "pipe:2",
		outPath,
	}

	return s.transcode(ctx, req, args, outPath, "Transcoding audio", report)
}

// compress re-encodes video and audio with tier-derived parameters. Output
// dimensions are min(maxWidth, sourceWidth) x min(maxHeight, sourceHeight).
func (s *EngineStrategy) compress(ctx context.Context, req Request, report reportFunc) (string, error) {
	videoCodec, err := s.negotiator.FirstSupported(ctx, media.VideoCodecPreference)
	if err != nil {
		return "", newError(s.Name(), "negotiating", "no video codec available", err)
	}
	audioCodec, err := s.negotiator.FirstSupported(ctx, media.AudioCodecPreference)
	if err != nil {
		return "", newError(s.Name(), "negotiating", "no audio codec available", err)
	}

	width, height := outputDimensions(req.Settings, req.Info)
	audioBitrate := req.Settings.AudioBitrateKbps
	if audioBitrate <= 0 {
		audioBitrate = 128
	}
	outPath := filepath.Join(req.WorkDir, "compressed.mp4")

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", req.Asset.Path,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-r", fmt.Sprintf("%d", req.Settings.FrameRate),
		"-c:v", videoCodec,
		"-b:v", fmt.Sprintf("%dk", videoBitrateKbps(req.Settings.Quality)),
		"-c:a", audioCodec,
		"-b:a", fmt.Sprintf("%dk", audioBitrate),
		"-progress", "pipe:2",
		outPath,
	}

	return s.transcode(ctx, req, args, outPath, "Compressing video", report)
}

// transcode runs one engine pass with duration-based progress.
func (s *EngineStrategy) transcode(ctx context.Context, req Request, args []string, outPath, stage string, report reportFunc) (string, error) {
	s.logger.Debug("starting transcode", "mode", req.Mode, "source", req.Asset.Name)
	report(0, stage)

	parser := newProgressParser()
	duration := req.Info.DurationSeconds
	runErr := s.run(ctx, s.ffmpegPath, args, func(line string) {
		if seconds, ok := parser.ParseLine(line); ok && duration > 0 {
			report(seconds/duration, stage)
		}
	})
	if runErr != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", newError(s.Name(), "transcoding", "engine transcode failed", runErr)
	}

	if _, err := s.stat(outPath); err != nil {
		return "", newError(s.Name(), "transcoding", "transcode completed but output is missing", err)
	}

	report(1, stage+" complete")
	return outPath, nil
}

// videoBitrateKbps maps the quality tier to the target video bitrate.
func videoBitrateKbps(tier domain.QualityTier) int {
	switch tier {
	case domain.QualityHigh:
		return 2500
	case domain.QualityMedium:
		return 1500
	default:
		return 800
	}
}

// outputDimensions clamps the configured bounds to the source dimensions.
func outputDimensions(settings domain.CompressionSettings, info media.Info) (int, int) {
	width := settings.MaxWidth
	if info.Width > 0 && info.Width < width {
		width = info.Width
	}
	height := settings.MaxHeight
	if info.Height > 0 && info.Height < height {
		height = info.Height
	}
	return width, height
}
