package config

import (
	"os"
	"path/filepath"

	"video-transcriber/internal/domain"
)

const (
	// DefaultMaxFileSizeBytes is the hard upload ceiling.
	DefaultMaxFileSizeBytes = int64(5) << 30
	// DefaultLargeFileWarnBytes is the soft threshold that flags an asset
	// as large and enables compression recommendations.
	DefaultLargeFileWarnBytes = int64(500) << 20
)

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		Language:               "auto",
		Accuracy:               domain.AccuracyBalanced,
		OutputDir:              filepath.Join(homeDir, "Documents", "Transcripts"),
		MaxFileSizeBytes:       DefaultMaxFileSizeBytes,
		LargeFileWarnBytes:     DefaultLargeFileWarnBytes,
		LargeFileOptimizations: true,
	}
}

// mergeWithDefaults fills zero-valued fields from defaults. A persisted blob
// is never trusted to be complete: older versions of the settings file may
// lack fields added since.
func mergeWithDefaults(cfg domain.Settings) domain.Settings {
	defaults := DefaultSettings()

	if cfg.Language == "" {
		cfg.Language = defaults.Language
	}
	if cfg.Accuracy == "" {
		cfg.Accuracy = defaults.Accuracy
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = defaults.MaxFileSizeBytes
	}
	if cfg.LargeFileWarnBytes <= 0 {
		cfg.LargeFileWarnBytes = defaults.LargeFileWarnBytes
	}
	if cfg.LargeFileWarnBytes > cfg.MaxFileSizeBytes {
		cfg.LargeFileWarnBytes = cfg.MaxFileSizeBytes
	}
	return cfg
}
