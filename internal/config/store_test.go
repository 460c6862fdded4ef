package config

import (
	"os"
	"path/filepath"
	"testing"

	"video-transcriber/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.Language != "auto" {
		t.Fatalf("language = %q, want auto", cfg.Language)
	}
	if cfg.Accuracy != domain.AccuracyBalanced {
		t.Fatalf("accuracy = %q, want balanced", cfg.Accuracy)
	}
	if cfg.MaxFileSizeBytes <= cfg.LargeFileWarnBytes {
		t.Fatal("hard ceiling must sit above the soft warning threshold")
	}
	if cfg.OutputDir == "" {
		t.Fatal("expected non-empty output dir")
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Language != "auto" {
		t.Fatalf("language = %q, want auto", got.Language)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		Language:               "en",
		Accuracy:               domain.AccuracyBest,
		OutputDir:              "/out",
		MaxFileSizeBytes:       1 << 30,
		LargeFileWarnBytes:     1 << 28,
		LargeFileOptimizations: true,
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("settings = %+v, want %+v", got, want)
	}
}

// TestJSONStoreLoadMergesPartialBlob checks that fields missing from an old
// settings file are filled from defaults instead of loading as zero values.
func TestJSONStoreLoadMergesPartialBlob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"language":"de"}`), 0o644); err != nil {
		t.Fatalf("write partial settings: %v", err)
	}

	got, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Language != "de" {
		t.Fatalf("language = %q, want de", got.Language)
	}
	if got.MaxFileSizeBytes != DefaultMaxFileSizeBytes {
		t.Fatalf("maxFileSizeBytes = %d, want default", got.MaxFileSizeBytes)
	}
	if got.Accuracy != domain.AccuracyBalanced {
		t.Fatalf("accuracy = %q, want default balanced", got.Accuracy)
	}
}

// TestJSONStoreLoadPreservesBooleanChoice distinguishes a key that was
// never written from one the user explicitly set to false. Missing keeps
// the default on; explicit false survives the merge.
func TestJSONStoreLoadPreservesBooleanChoice(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "old.json")
	if err := os.WriteFile(missing, []byte(`{"language":"en"}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	got, err := NewJSONStore(missing).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.LargeFileOptimizations {
		t.Fatal("blob without the key should keep optimizations enabled")
	}

	disabled := filepath.Join(dir, "disabled.json")
	if err := os.WriteFile(disabled, []byte(`{"largeFileOptimizations":false}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	got, err = NewJSONStore(disabled).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.LargeFileOptimizations {
		t.Fatal("explicit false must not be overwritten by the default")
	}
}

// TestMergeClampsWarnThresholdToCeiling verifies the soft threshold never
// exceeds the hard ceiling after merge.
func TestMergeClampsWarnThresholdToCeiling(t *testing.T) {
	cfg := mergeWithDefaults(domain.Settings{
		MaxFileSizeBytes:   1 << 20,
		LargeFileWarnBytes: 1 << 30,
	})
	if cfg.LargeFileWarnBytes != cfg.MaxFileSizeBytes {
		t.Fatalf("warn threshold = %d, want clamp to %d", cfg.LargeFileWarnBytes, cfg.MaxFileSizeBytes)
	}
}
