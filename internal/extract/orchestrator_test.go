package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"video-transcriber/internal/domain"
	"video-transcriber/internal/media"
)

// stubStrategy is a scripted strategy for fallback-policy tests.
type stubStrategy struct {
	name   string
	fail   error
	calls  int
	size   int64
	report []float64
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, req Request, report reportFunc) (string, error) {
	s.calls++
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if s.fail != nil {
		return "", s.fail
	}
	for _, f := range s.report {
		report(f, "working")
	}
	out := filepath.Join(req.WorkDir, s.name+".out")
	payload := make([]byte, s.size)
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return "", err
	}
	report(1, "done")
	return out, nil
}

// proberJSON is a minimal healthy probe payload.
const proberJSON = `{"streams":[{"codec_type":"audio","codec_name":"aac"}],"format":{"format_name":"mp4","duration":"120.0"}}`

type cannedProbe struct{ stdout string }

func (c *cannedProbe) Run(_ context.Context, _ string, _ ...string) (media.CommandResult, error) {
	return media.CommandResult{Stdout: c.stdout}, nil
}

// newTestOrchestrator wires stub strategies with real temp dirs.
func newTestOrchestrator(t *testing.T, native, engine Strategy, capable bool) *Orchestrator {
	t.Helper()
	prober := media.NewProberForTests("ffprobe", &cannedProbe{stdout: proberJSON})
	return NewOrchestratorForTests(
		native, engine, prober,
		func() bool { return capable },
		func(_, pattern string) (string, error) { return os.MkdirTemp(t.TempDir(), pattern) },
		os.RemoveAll,
		os.Stat,
	)
}

// TestRecommendedSettingsScenarios pins the published size tiers, including
// the 600MB and 3GB reference inputs.
func TestRecommendedSettingsScenarios(t *testing.T) {
	cases := []struct {
		size int64
		want domain.CompressionSettings
	}{
		{600 << 20, domain.CompressionSettings{Quality: domain.QualityMedium, MaxWidth: 1280, MaxHeight: 720, FrameRate: 30, AudioBitrateKbps: 128}},
		{3 << 30, domain.CompressionSettings{Quality: domain.QualityLow, MaxWidth: 1280, MaxHeight: 720, FrameRate: 24, AudioBitrateKbps: 128}},
		{5 << 30, domain.CompressionSettings{Quality: domain.QualityLow, MaxWidth: 854, MaxHeight: 480, FrameRate: 24, AudioBitrateKbps: 96}},
		{100 << 20, domain.CompressionSettings{Quality: domain.QualityHigh, MaxWidth: 1920, MaxHeight: 1080, FrameRate: 30, AudioBitrateKbps: 192}},
		{0, domain.CompressionSettings{Quality: domain.QualityHigh, MaxWidth: 1920, MaxHeight: 1080, FrameRate: 30, AudioBitrateKbps: 192}},
	}

	for _, tc := range cases {
		if got := RecommendedSettings(tc.size); got != tc.want {
			t.Fatalf("RecommendedSettings(%d) = %+v, want %+v", tc.size, got, tc.want)
		}
	}
}

// TestRecommendedSettingsMonotoneQuality verifies quality never improves as
// size grows.
func TestRecommendedSettingsMonotoneQuality(t *testing.T) {
	rank := map[domain.QualityTier]int{domain.QualityLow: 0, domain.QualityMedium: 1, domain.QualityHigh: 2}

	prev := rank[RecommendedSettings(0).Quality]
	for size := int64(1 << 20); size < 8<<30; size += 256 << 20 {
		cur := rank[RecommendedSettings(size).Quality]
		if cur > prev {
			t.Fatalf("quality improved at size %d", size)
		}
		prev = cur
	}
}

// TestExtractAudioOnlyPrefersNative verifies the engine stays idle when the
// fast path succeeds, and the progress stream is monotone ending at 100.
func TestExtractAudioOnlyPrefersNative(t *testing.T) {
	native := &stubStrategy{name: "native", size: 1 << 10, report: []float64{0.2, 0.7}}
	engine := &stubStrategy{name: "engine", size: 1 << 10}
	o := newTestOrchestrator(t, native, engine, true)

	var percents []float64
	outcome, err := o.ExtractAudioOnly(context.Background(), domain.MediaAsset{Path: "/in.mp4", SizeBytes: 4 << 10}, AudioOptions{LargeFileOptimizations: true}, func(e domain.ProgressEvent) {
		percents = append(percents, e.Percent)
	})
	if err != nil {
		t.Fatalf("ExtractAudioOnly() error = %v", err)
	}
	defer func() {
		if err := outcome.Cleanup(); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}()

	if engine.calls != 0 {
		t.Fatal("engine should not run when native succeeds")
	}
	if !outcome.Result.AudioOnly {
		t.Fatal("result should be audio-only")
	}
	if outcome.Result.OutputSize != 1<<10 || outcome.Result.SavedBytes != 3<<10 {
		t.Fatalf("size accounting = %+v", outcome.Result)
	}

	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress regressed: %v", percents)
		}
	}
	if percents[len(percents)-1] != 100 {
		t.Fatalf("final percent = %v, want 100", percents[len(percents)-1])
	}
}

// TestExtractAudioOnlyFallsBackToEngine verifies a native failure yields a
// valid engine blob with an intact progress stream and no surfaced error.
func TestExtractAudioOnlyFallsBackToEngine(t *testing.T) {
	native := &stubStrategy{name: "native", fail: newError("native", "capturing", "decode error mid-run", fmt.Errorf("boom"))}
	engine := &stubStrategy{name: "engine", size: 2 << 10, report: []float64{0.5}}
	o := newTestOrchestrator(t, native, engine, true)

	var percents []float64
	outcome, err := o.ExtractAudioOnly(context.Background(), domain.MediaAsset{Path: "/in.mp4", SizeBytes: 8 << 10}, AudioOptions{LargeFileOptimizations: true}, func(e domain.ProgressEvent) {
		percents = append(percents, e.Percent)
	})
	if err != nil {
		t.Fatalf("expected transparent fallback, got %v", err)
	}
	defer outcome.Cleanup()

	if native.calls != 1 || engine.calls != 1 {
		t.Fatalf("calls native=%d engine=%d, want 1 and 1", native.calls, engine.calls)
	}
	if filepath.Base(outcome.Result.OutputPath) != "engine.out" {
		t.Fatalf("output = %q, want the engine blob", outcome.Result.OutputPath)
	}
	if percents[len(percents)-1] != 100 {
		t.Fatalf("final percent = %v, want 100", percents[len(percents)-1])
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress regressed across fallback: %v", percents)
		}
	}
}

// TestExtractAudioOnlyEngineFailureIsTerminal verifies the one-shot policy:
// after both paths fail the error is typed terminal and no retry happens.
func TestExtractAudioOnlyEngineFailureIsTerminal(t *testing.T) {
	native := &stubStrategy{name: "native", fail: newError("native", "capturing", "x", nil)}
	engine := &stubStrategy{name: "engine", fail: newError("engine", "transcoding", "y", nil)}
	o := newTestOrchestrator(t, native, engine, true)

	_, err := o.ExtractAudioOnly(context.Background(), domain.MediaAsset{Path: "/in.mp4"}, AudioOptions{}, nil)
	if err == nil {
		t.Fatal("expected terminal error")
	}

	var extractErr *Error
	if !errors.As(err, &extractErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if !extractErr.Terminal {
		t.Fatal("engine failure after fallback must be terminal")
	}
	if native.calls != 1 || engine.calls != 1 {
		t.Fatalf("calls native=%d engine=%d, want exactly one each", native.calls, engine.calls)
	}
}

// TestExtractAudioOnlySkipsNativeWhenNotCapable verifies the capability
// probe gates the fast path entirely.
func TestExtractAudioOnlySkipsNativeWhenNotCapable(t *testing.T) {
	native := &stubStrategy{name: "native", size: 1}
	engine := &stubStrategy{name: "engine", size: 1}
	o := newTestOrchestrator(t, native, engine, false)

	outcome, err := o.ExtractAudioOnly(context.Background(), domain.MediaAsset{Path: "/in.mp4"}, AudioOptions{}, nil)
	if err != nil {
		t.Fatalf("ExtractAudioOnly() error = %v", err)
	}
	defer outcome.Cleanup()

	if native.calls != 0 {
		t.Fatal("native must not run when probe fails")
	}
	if engine.calls != 1 {
		t.Fatalf("engine calls = %d, want 1", engine.calls)
	}
}

// TestExtractAudioOnlyCancelledSkipsFallback verifies cancellation is not
// treated as a recoverable native failure.
func TestExtractAudioOnlyCancelledSkipsFallback(t *testing.T) {
	native := &stubStrategy{name: "native"}
	engine := &stubStrategy{name: "engine", size: 1}
	o := newTestOrchestrator(t, native, engine, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.ExtractAudioOnly(ctx, domain.MediaAsset{Path: "/in.mp4"}, AudioOptions{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if engine.calls != 0 {
		t.Fatal("cancellation must not trigger engine fallback")
	}
}

// TestCompressVideoOutcome verifies compression accounting and that the
// engine is the only strategy driven.
func TestCompressVideoOutcome(t *testing.T) {
	native := &stubStrategy{name: "native", size: 1}
	engine := &stubStrategy{name: "engine", size: 1 << 20}
	o := newTestOrchestrator(t, native, engine, true)

	settings := RecommendedSettings(3 << 30)
	outcome, err := o.CompressVideo(context.Background(), domain.MediaAsset{Path: "/in.mp4", SizeBytes: 4 << 20}, settings, nil)
	if err != nil {
		t.Fatalf("CompressVideo() error = %v", err)
	}
	defer outcome.Cleanup()

	if native.calls != 0 {
		t.Fatal("compression must use the engine path only")
	}
	if outcome.Result.AudioOnly {
		t.Fatal("compression outcome must not be audio-only")
	}
	if outcome.Result.CompressionRatio != 4 {
		t.Fatalf("ratio = %v, want 4", outcome.Result.CompressionRatio)
	}
}

// TestOutcomeCleanupRemovesWorkspace verifies scratch space release.
func TestOutcomeCleanupRemovesWorkspace(t *testing.T) {
	engine := &stubStrategy{name: "engine", size: 1}
	o := newTestOrchestrator(t, &stubStrategy{name: "native", size: 1}, engine, false)

	outcome, err := o.ExtractAudioOnly(context.Background(), domain.MediaAsset{Path: "/in.mp4"}, AudioOptions{}, nil)
	if err != nil {
		t.Fatalf("ExtractAudioOnly() error = %v", err)
	}

	path := outcome.Result.OutputPath
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output missing before cleanup: %v", err)
	}
	if err := outcome.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("output should be removed with the workspace")
	}
	// Second cleanup is a no-op.
	if err := outcome.Cleanup(); err != nil {
		t.Fatalf("repeat Cleanup() error = %v", err)
	}
}
