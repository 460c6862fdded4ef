package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/wailsapp/mimetype"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"video-transcriber/internal/config"
	"video-transcriber/internal/diagnostics"
	"video-transcriber/internal/domain"
	"video-transcriber/internal/export"
	"video-transcriber/internal/extract"
	"video-transcriber/internal/jobs"
	"video-transcriber/internal/media"
	"video-transcriber/internal/persist"
	"video-transcriber/internal/progress"
	"video-transcriber/internal/transcribe"
	"video-transcriber/internal/transcript"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var videoDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "Video files",
		Pattern:     "*.mp4;*.mov;*.mkv;*.avi;*.webm;*.wmv;*.flv",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// extractRunner isolates the extraction orchestrator behind an interface.
type extractRunner interface {
	ExtractAudioOnlyInto(ctx context.Context, asset domain.MediaAsset, opts extract.AudioOptions, gauge *progress.Gauge, phase progress.Phase) (*extract.Outcome, error)
	CompressVideo(ctx context.Context, asset domain.MediaAsset, settings domain.CompressionSettings, onProgress domain.ProgressFunc) (*extract.Outcome, error)
}

// transcribeRunner isolates the chunked transcription driver.
type transcribeRunner interface {
	TranscribeInto(ctx context.Context, audio []byte, opts transcribe.Options, gauge *progress.Gauge, phase progress.Phase) ([]domain.TranscriptSegment, error)
}

// repository isolates stored-transcription persistence.
type repository interface {
	Save(meta domain.TranscriptionMeta, segments []domain.TranscriptSegment) (string, error)
	List() ([]domain.TranscriptionMeta, error)
	Get(id string) (domain.TranscriptionMeta, []domain.TranscriptSegment, error)
	Delete(id string) error
}

// StoredTranscription bundles a persisted record with its segments for the UI.
type StoredTranscription struct {
	Meta     domain.TranscriptionMeta   `json:"meta"`
	Segments []domain.TranscriptSegment `json:"segments"`
}

// App wires configuration, jobs, extraction, transcription, and UI runtime
// callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Jobs        *jobs.Manager
	Transcripts *transcript.Store
	Diagnostics domain.DiagnosticReport

	assets      fs.FS
	checker     *diagnostics.Checker
	extractor   extractRunner
	transcriber transcribeRunner
	repo        repository
	logger      hclog.Logger
	detectMime  func(string) (string, error)
	readFile    func(string) ([]byte, error)
	stat        func(string) (os.FileInfo, error)

	mu           sync.Mutex
	asset        *domain.MediaAsset
	compressed   bool
	keptOutcome  *extract.Outcome
	lastMeta     domain.TranscriptionMeta
	activeJobID  string
	cancel       context.CancelFunc
	events       *jobs.EventBus
	runtimeCtx   context.Context
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded
// frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}
	appDir := filepath.Join(homeDir, ".video-transcriber")

	store := config.NewJSONStore(filepath.Join(appDir, "settings.json"))
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "video-transcriber",
		Level: hclog.Info,
	})

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)

	negotiator := media.NewNegotiator()
	prober := media.NewProber()
	orchestrator := extract.NewOrchestrator(
		extract.NewNativeStrategy(negotiator, logger),
		extract.NewEngineStrategy(negotiator, logger),
		prober,
		checker.Probe,
		logger,
	)
	driver := transcribe.NewDriver(transcribe.NewSimulatedBackend(0), logger)

	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare app directory: %w", err)
	}
	repo, err := persist.Open(filepath.Join(appDir, "transcriptions.db"))
	if err != nil {
		return nil, fmt.Errorf("open transcription store: %w", err)
	}

	return &App{
		Settings:    settings,
		Store:       store,
		Jobs:        jobs.NewManager(),
		Transcripts: transcript.NewStore(),
		Diagnostics: report,
		assets:      assets,
		checker:     checker,
		extractor:   orchestrator,
		transcriber: driver,
		repo:        repo,
		logger:      logger,
		detectMime:  detectMimeType,
		readFile:    os.ReadFile,
		stat:        os.Stat,
		events:      jobs.NewEventBus(1000),
	}, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "Video Transcriber",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			kept := a.keptOutcome
			a.keptOutcome = nil
			a.runtimeCtx = nil
			a.mu.Unlock()
			if kept != nil {
				_ = kept.Cleanup()
			}
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}

	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	return a.Diagnostics, nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

// PickVideoFile opens a native file dialog for video selection.
func (a *App) PickVideoFile() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select video file",
		Filters: videoDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputDirectory opens a native directory picker for exports.
func (a *App) PickOutputDirectory() (string, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Select output directory",
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// UploadVideo validates and registers a new source video, replacing any
// previously selected asset. Rejection is immediate: content-sniffed MIME
// must be video and the hard size ceiling applies before any processing.
func (a *App) UploadVideo(path string) (domain.MediaAsset, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("load settings: %w", err)
	}

	info, err := a.stat(path)
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("cannot access file: %w", err)
	}

	mime, err := a.detectMime(path)
	if err != nil {
		return domain.MediaAsset{}, fmt.Errorf("detect file type: %w", err)
	}
	if !strings.HasPrefix(mime, "video/") {
		return domain.MediaAsset{}, fmt.Errorf("unsupported file type %s: select a video file", mime)
	}

	if settings.MaxFileSizeBytes > 0 && info.Size() > settings.MaxFileSizeBytes {
		return domain.MediaAsset{}, fmt.Errorf(
			"file is too large (%d bytes, limit %d): compress it first or pick a smaller file",
			info.Size(), settings.MaxFileSizeBytes)
	}

	asset := domain.MediaAsset{
		Path:      path,
		Name:      filepath.Base(path),
		MimeType:  mime,
		SizeBytes: info.Size(),
		LargeFile: settings.LargeFileWarnBytes > 0 && info.Size() > settings.LargeFileWarnBytes,
	}

	a.mu.Lock()
	kept := a.keptOutcome
	a.keptOutcome = nil
	a.asset = &asset
	a.compressed = false
	a.mu.Unlock()
	if kept != nil {
		_ = kept.Cleanup()
	}

	a.logger.Info("video selected", "name", asset.Name, "bytes", asset.SizeBytes, "large", asset.LargeFile)
	return asset, nil
}

// CurrentAsset returns the selected video, or nil when none is loaded.
func (a *App) CurrentAsset() *domain.MediaAsset {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.asset
}

// GetRecommendedSettings derives compression settings for the current asset.
func (a *App) GetRecommendedSettings() (domain.CompressionSettings, error) {
	a.mu.Lock()
	asset := a.asset
	a.mu.Unlock()
	if asset == nil {
		return domain.CompressionSettings{}, fmt.Errorf("no video selected")
	}
	return extract.RecommendedSettings(asset.SizeBytes), nil
}

// StartTranscription creates a job for the current asset and runs the
// extract-then-transcribe workflow asynchronously.
func (a *App) StartTranscription() (domain.Job, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Job{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	asset := a.asset
	a.mu.Unlock()
	if asset == nil {
		return domain.Job{}, fmt.Errorf("no video selected")
	}

	jobID := uuid.NewString()
	if err := a.Jobs.Start(jobID); err != nil {
		return domain.Job{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.activeJobID = jobID
	a.cancel = cancel
	a.Settings = settings
	a.mu.Unlock()

	a.publishStatus(jobID, domain.JobStatusExtracting, "Preparing audio")
	go a.runTranscriptionJob(ctx, jobID, *asset, settings)
	return a.Jobs.Current(), nil
}

// StartCompression creates a job that re-encodes the current asset with the
// given settings. The compressed output replaces the asset on success.
func (a *App) StartCompression(settings domain.CompressionSettings) (domain.Job, error) {
	appSettings, err := a.Store.Load()
	if err != nil {
		return domain.Job{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	asset := a.asset
	a.mu.Unlock()
	if asset == nil {
		return domain.Job{}, fmt.Errorf("no video selected")
	}

	jobID := uuid.NewString()
	if err := a.Jobs.Start(jobID); err != nil {
		return domain.Job{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.activeJobID = jobID
	a.cancel = cancel
	a.mu.Unlock()

	a.publishStatus(jobID, domain.JobStatusExtracting, "Compressing video")
	go a.runCompressionJob(ctx, jobID, *asset, settings, appSettings)
	return a.Jobs.Current(), nil
}

// CancelJob cancels the currently running job, if any.
func (a *App) CancelJob() error {
	a.mu.Lock()
	cancel := a.cancel
	activeJobID := a.activeJobID
	a.mu.Unlock()

	if cancel == nil {
		return jobs.ErrNoRunningJob
	}

	cancel()
	if err := a.Jobs.Cancel(); err != nil && !errors.Is(err, jobs.ErrNoRunningJob) {
		return err
	}

	if activeJobID != "" {
		a.publishStatus(activeJobID, domain.JobStatusCancelled, "Cancellation requested")
	}
	return nil
}

// CurrentJob returns current job metadata and status.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// Segments returns the live transcript snapshot.
func (a *App) Segments() []domain.TranscriptSegment {
	return a.Transcripts.All()
}

// EditSegment replaces one segment's text, reporting whether the id existed.
func (a *App) EditSegment(id int, text string) bool {
	return a.Transcripts.Edit(id, text)
}

// SearchSegments returns case-insensitive substring matches in order.
func (a *App) SearchSegments(term string) []domain.TranscriptSegment {
	return a.Transcripts.Search(term)
}

// ActiveSegment returns the segment covering the playback position, or nil.
func (a *App) ActiveSegment(currentTime float64) *domain.TranscriptSegment {
	seg, ok := a.Transcripts.FindActive(currentTime)
	if !ok {
		return nil
	}
	return &seg
}

// SaveTranscription persists the live transcript and returns the record id.
func (a *App) SaveTranscription() (string, error) {
	segments := a.Transcripts.All()
	if len(segments) == 0 {
		return "", fmt.Errorf("no transcript to save")
	}

	a.mu.Lock()
	meta := a.lastMeta
	a.mu.Unlock()

	id, err := a.repo.Save(meta, segments)
	if err != nil {
		return "", err
	}
	a.logger.Info("transcription saved", "id", id, "segments", len(segments))
	return id, nil
}

// ListTranscriptions returns stored transcription headers, newest first.
func (a *App) ListTranscriptions() ([]domain.TranscriptionMeta, error) {
	return a.repo.List()
}

// GetTranscription loads one stored transcription with its segments.
func (a *App) GetTranscription(id string) (StoredTranscription, error) {
	meta, segments, err := a.repo.Get(id)
	if err != nil {
		return StoredTranscription{}, err
	}
	return StoredTranscription{Meta: meta, Segments: segments}, nil
}

// DeleteTranscription removes one stored transcription.
func (a *App) DeleteTranscription(id string) error {
	return a.repo.Delete(id)
}

// ExportTranscript writes the live transcript in the requested formats,
// collecting per-format outcomes. One failing format never aborts the rest.
func (a *App) ExportTranscript(exportType string, formats []string) ([]export.ItemResult, error) {
	segments := a.Transcripts.All()
	if len(segments) == 0 {
		return nil, fmt.Errorf("no transcript to export")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	baseName := a.lastMeta.FileName
	a.mu.Unlock()

	exporter := export.NewFileExporter(settings.OutputDir)
	out := make([]export.Format, 0, len(formats))
	for _, f := range formats {
		out = append(out, export.Format(f))
	}
	return exporter.ExportAll(segments, export.Type(exportType), out, baseName), nil
}

// runTranscriptionJob executes the extract-then-transcribe workflow and maps
// outcomes to job events.
func (a *App) runTranscriptionJob(ctx context.Context, jobID string, asset domain.MediaAsset, settings domain.Settings) {
	estimator := progress.NewEstimator()
	gauge := progress.NewGauge(func(event domain.ProgressEvent) {
		estimator.Update(event.Percent)
		a.publishProgress(jobID, event, estimator.ETASeconds())
	})

	outcome, err := a.extractor.ExtractAudioOnlyInto(ctx, asset, extract.AudioOptions{
		LargeFileOptimizations: settings.LargeFileOptimizations,
	}, gauge, progress.Extraction)
	if err != nil {
		a.finishJobError(jobID, err)
		return
	}

	if err := a.Jobs.Transition(domain.JobStatusTranscribing); err == nil {
		a.publishStatus(jobID, domain.JobStatusTranscribing, "Transcribing audio")
	}

	audio, err := a.readFile(outcome.Result.OutputPath)
	if err != nil {
		_ = outcome.Cleanup()
		a.finishJobError(jobID, fmt.Errorf("read extracted audio: %w", err))
		return
	}

	segments, err := a.transcriber.TranscribeInto(ctx, audio, transcribe.Options{
		Language:     settings.Language,
		ModelHint:    modelHintFor(settings.Accuracy),
		DurationHint: outcome.Info.DurationSeconds,
	}, gauge, progress.Transcription)
	if cleanupErr := outcome.Cleanup(); cleanupErr != nil {
		a.logger.Error("cleanup extraction workspace", "err", cleanupErr)
	}
	if err != nil {
		a.finishJobError(jobID, err)
		return
	}

	if err := a.Jobs.Transition(domain.JobStatusFinalizing); err == nil {
		a.publishStatus(jobID, domain.JobStatusFinalizing, "Finalizing transcript")
	}
	gauge.ReportAt(progress.Finalize, 0.5, "Finalizing transcript")

	a.Transcripts.Replace(segments)
	a.mu.Lock()
	a.lastMeta = domain.TranscriptionMeta{
		ID:              uuid.NewString(),
		FileName:        asset.Name,
		DurationSeconds: outcome.Info.DurationSeconds,
		Language:        settings.Language,
		SizeBytes:       asset.SizeBytes,
		LargeFile:       asset.LargeFile,
		Compressed:      a.compressed,
	}
	a.mu.Unlock()

	gauge.Finish("Transcript ready")
	if err := a.Jobs.Transition(domain.JobStatusDone); err == nil {
		a.publishStatus(jobID, domain.JobStatusDone, "Transcription complete")
	}
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeResult,
		Status:  domain.JobStatusDone,
		Message: fmt.Sprintf("Transcribed %d segments", len(segments)),
	})
	a.clearActiveJob(jobID)
}

// runCompressionJob executes video re-compression and swaps the asset on
// success.
func (a *App) runCompressionJob(ctx context.Context, jobID string, asset domain.MediaAsset, settings domain.CompressionSettings, appSettings domain.Settings) {
	estimator := progress.NewEstimator()
	onProgress := func(event domain.ProgressEvent) {
		estimator.Update(event.Percent)
		a.publishProgress(jobID, event, estimator.ETASeconds())
	}

	outcome, err := a.extractor.CompressVideo(ctx, asset, settings, onProgress)
	if err != nil {
		a.finishJobError(jobID, err)
		return
	}

	if err := a.Jobs.Transition(domain.JobStatusFinalizing); err == nil {
		a.publishStatus(jobID, domain.JobStatusFinalizing, "Swapping in compressed video")
	}

	replacement := domain.MediaAsset{
		Path:      outcome.Result.OutputPath,
		Name:      asset.Name,
		MimeType:  "video/mp4",
		SizeBytes: outcome.Result.OutputSize,
		LargeFile: appSettings.LargeFileWarnBytes > 0 && outcome.Result.OutputSize > appSettings.LargeFileWarnBytes,
	}

	// Only swap if the job's source is still the selected asset. The user
	// may have uploaded a different video while compression ran; that newer
	// selection wins and the stale output is discarded.
	a.mu.Lock()
	stale := a.asset == nil || a.asset.Path != asset.Path
	var previous *extract.Outcome
	if !stale {
		previous = a.keptOutcome
		a.keptOutcome = outcome
		a.asset = &replacement
		a.compressed = true
	}
	a.mu.Unlock()
	if stale {
		_ = outcome.Cleanup()
	} else if previous != nil {
		_ = previous.Cleanup()
	}

	if err := a.Jobs.Transition(domain.JobStatusDone); err == nil {
		a.publishStatus(jobID, domain.JobStatusDone, "Compression complete")
	}
	a.publishEvent(jobs.Event{
		JobID:      jobID,
		Type:       jobs.EventTypeResult,
		Status:     domain.JobStatusDone,
		Message:    fmt.Sprintf("Saved %d bytes (%.1fx smaller)", outcome.Result.SavedBytes, outcome.Result.CompressionRatio),
		OutputPath: outcome.Result.OutputPath,
	})
	a.clearActiveJob(jobID)
}

// finishJobError maps a failed or cancelled run to job state and events.
func (a *App) finishJobError(jobID string, err error) {
	if errors.Is(err, context.Canceled) {
		_ = a.Jobs.Transition(domain.JobStatusCancelled)
		a.publishStatus(jobID, domain.JobStatusCancelled, "Job cancelled")
		a.clearActiveJob(jobID)
		return
	}

	_ = a.Jobs.Transition(domain.JobStatusFailed)
	a.publishStatus(jobID, domain.JobStatusFailed, "Job failed")
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeError,
		Status:  domain.JobStatusFailed,
		Message: err.Error(),
	})
	a.clearActiveJob(jobID)
}

// publishStatus sends a normalized status event.
func (a *App) publishStatus(jobID string, status domain.JobStatus, message string) {
	a.publishEvent(jobs.Event{
		JobID:   jobID,
		Type:    jobs.EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishProgress sends one step of the unified progress stream.
func (a *App) publishProgress(jobID string, event domain.ProgressEvent, etaSeconds float64) {
	a.publishEvent(jobs.Event{
		JobID:      jobID,
		Type:       jobs.EventTypeProgress,
		Percent:    event.Percent,
		Stage:      event.Stage,
		EtaSeconds: etaSeconds,
	})
}

// publishEvent stores event history and emits runtime push notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "job:event", published)
	}
}

// clearActiveJob clears cancellation handles for completed job IDs.
func (a *App) clearActiveJob(jobID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.activeJobID == jobID {
		a.activeJobID = ""
		a.cancel = nil
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings trims user inputs and applies defaults for empty choices.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.OutputDir = strings.TrimSpace(settings.OutputDir)
	settings.Language = strings.TrimSpace(settings.Language)
	if settings.Language == "" {
		settings.Language = "auto"
	}
	if settings.Accuracy == "" {
		settings.Accuracy = domain.AccuracyBalanced
	}
	return settings
}

// modelHintFor maps the accuracy tier onto a backend model hint.
func modelHintFor(tier domain.AccuracyTier) string {
	switch tier {
	case domain.AccuracyFast:
		return "base"
	case domain.AccuracyBest:
		return "medium"
	default:
		return "small"
	}
}

// detectMimeType sniffs the file's content type from its leading bytes.
func detectMimeType(path string) (string, error) {
	kind, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return kind.String(), nil
}
