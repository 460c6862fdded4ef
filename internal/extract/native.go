package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"video-transcriber/internal/media"
)

// nativeAudioBitrateKbps is the fixed speech-optimized capture bitrate.
// Fidelity is deliberately sacrificed: the only downstream consumer is the
// speech recognizer, not playback.
const nativeAudioBitrateKbps = 64

// NativeStrategy is the accelerated fast path: a single engine pass that
// drops video, downmixes to mono 16kHz, and runs the audio clock at a
// size-tiered playback multiplier through a chained atempo graph. An order
// of magnitude faster than a full transcode on large inputs.
type NativeStrategy struct {
	ffmpegPath string
	negotiator *media.Negotiator
	run        streamRunner
	stat       func(string) (os.FileInfo, error)
	logger     hclog.Logger
}

// NewNativeStrategy constructs the production fast path.
func NewNativeStrategy(negotiator *media.Negotiator, logger hclog.Logger) *NativeStrategy {
	return &NativeStrategy{
		ffmpegPath: "ffmpeg",
		negotiator: negotiator,
		run:        execStream,
		stat:       os.Stat,
		logger:     logger.Named("native"),
	}
}

// NewNativeStrategyForTests constructs the strategy with injectable deps.
func NewNativeStrategyForTests(ffmpegPath string, negotiator *media.Negotiator, run streamRunner, stat func(string) (os.FileInfo, error)) *NativeStrategy {
	return &NativeStrategy{
		ffmpegPath: ffmpegPath,
		negotiator: negotiator,
		run:        run,
		stat:       stat,
		logger:     hclog.NewNullLogger(),
	}
}

// Name identifies the strategy in errors and logs.
func (s *NativeStrategy) Name() string { return "native" }

// Extract runs the accelerated capture and returns the audio output path.
func (s *NativeStrategy) Extract(ctx context.Context, req Request, report reportFunc) (string, error) {
	codec, err := s.negotiator.FirstSupported(ctx, media.AudioCodecPreference)
	if err != nil {
		return "", newError(s.Name(), "negotiating", "no compact audio codec available", err)
	}

	rate := baseRate
	if req.LargeFileOptimizations {
		rate = playbackRate(req.Asset.SizeBytes)
	}
	outPath := filepath.Join(req.WorkDir, "audio-16k-mono."+audioExtension(codec))
	expected := req.Info.DurationSeconds / float64(rate)

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", req.Asset.Path,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-filter:a", atempoChain(rate),
		"-c:a", codec,
		"-b:a", fmt.Sprintf("%dk", nativeAudioBitrateKbps),
		"-progress", "pipe:2",
		outPath,
	}

	s.logger.Debug("starting accelerated capture",
		"rate", rate, "codec", codec, "source", req.Asset.Name)
	report(0, fmt.Sprintf("Extracting audio at %dx speed", rate))

	parser := newProgressParser()
	runErr := s.run(ctx, s.ffmpegPath, args, func(line string) {
		if seconds, ok := parser.ParseLine(line); ok && expected > 0 {
			report(seconds/expected, fmt.Sprintf("Extracting audio at %dx speed", rate))
		}
	})
	if runErr != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", newError(s.Name(), "capturing", "accelerated capture failed", runErr)
	}

	if _, err := s.stat(outPath); err != nil {
		return "", newError(s.Name(), "capturing", "capture completed but output is missing", err)
	}

	report(1, "Audio extraction complete")
	return outPath, nil
}

// baseRate is the capture multiplier used when size-tiered acceleration
// is switched off.
const baseRate = 2

// playbackRate maps source size to the accelerated playback multiplier.
func playbackRate(sizeBytes int64) int {
	switch {
	case sizeBytes > 2<<30:
		return 16
	case sizeBytes > 1<<30:
		return 8
	case sizeBytes > 512<<20:
		return 4
	default:
		return baseRate
	}
}

// atempoChain builds the accelerated audio filter graph. atempo caps at 2.0
// per stage, so higher multipliers chain stages: 16x is four doublings.
func atempoChain(rate int) string {
	stages := 0
	for r := rate; r > 1; r /= 2 {
		stages++
	}
	if stages == 0 {
		stages = 1
	}

	parts := make([]string, stages)
	for i := range parts {
		parts[i] = "atempo=2.0"
	}
	return strings.Join(parts, ",")
}

// audioExtension maps the negotiated codec to its container extension.
func audioExtension(codec string) string {
	switch codec {
	case "libopus":
		return "ogg"
	case "aac":
		return "m4a"
	case "libmp3lame":
		return "mp3"
	default:
		return "mka"
	}
}
