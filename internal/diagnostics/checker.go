package diagnostics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"video-transcriber/internal/domain"
)

// Checker validates the media engine binaries and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
	tempDir    func() string

	mu      sync.Mutex
	probed  bool
	capable bool
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
		tempDir:    os.TempDir,
	}
}

// Probe is the capability predicate gating the accelerated extraction
// path. The underlying checks touch the filesystem, so the result is
// cached: the first call (or the last Run) decides, and every extraction
// afterwards reads the cache. Run refreshes it.
func (c *Checker) Probe() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.probed {
		c.capable = c.probe()
		c.probed = true
	}
	return c.capable
}

// probe checks primitive availability: the media engine binaries must
// resolve and the temp workspace must accept writes.
func (c *Checker) probe() bool {
	if _, err := c.lookPath("ffmpeg"); err != nil {
		return false
	}
	if _, err := c.lookPath("ffprobe"); err != nil {
		return false
	}
	return c.tempWritable()
}

// Run executes all capability checks and returns a combined report. It
// also refreshes the cached Probe verdict.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	capable := c.probe()
	c.mu.Lock()
	c.capable = capable
	c.probed = true
	c.mu.Unlock()

	items := []domain.DiagnosticItem{
		c.checkTool("ffmpeg"),
		c.checkTool("ffprobe"),
		c.checkTempWorkspace(),
		c.checkOutputDir(settings.OutputDir),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt:   time.Now().UTC(),
		HasFailures:   hasFailures,
		NativeCapable: capable,
		Items:         items,
	}
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(name string) domain.DiagnosticItem {
	path, err := c.lookPath(name)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_" + name,
			Name:    name,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    "Install it and ensure the binary is available on PATH before processing media.",
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_" + name,
		Name:    name,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkTempWorkspace validates that extraction scratch files can be created.
func (c *Checker) checkTempWorkspace() domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "temp_workspace",
		Name: "Temp workspace",
	}

	if !c.tempWritable() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Temp directory is not writable: %s", c.tempDir())
		item.Hint = "Extraction needs scratch space; free disk space or fix temp directory permissions."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable temp directory: %s", c.tempDir())
	return item
}

// checkOutputDir validates output directory existence and write access.
func (c *Checker) checkOutputDir(outputDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "output_dir",
		Name: "Output directory",
	}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Output directory is empty."
		item.Hint = "Set an output directory where exports can be written."
		return item
	}

	if err := c.mkdirAll(outputDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create output directory: %s", outputDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(outputDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Output directory is not writable: %s", outputDir)
		item.Hint = "Choose a writable directory for transcript export."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	return item
}

// tempWritable reports whether the temp workspace accepts a scratch file.
func (c *Checker) tempWritable() bool {
	f, err := c.createTemp("", ".probe-*")
	if err != nil {
		return false
	}
	path := f.Name()
	_ = f.Close()
	_ = c.remove(path)
	return true
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
	tempDir func() string,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
		tempDir:    tempDir,
	}
}

// IsNotExist reports whether error represents file-not-found.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
