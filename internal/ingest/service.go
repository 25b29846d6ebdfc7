package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"mediavault/internal/catalog"
	"mediavault/internal/logging"
	"mediavault/internal/services/s3store"
	"mediavault/internal/services/ytdlp"
	"mediavault/internal/textutil"
)

// ErrEmptyBatch indicates a batch submission with no items.
var ErrEmptyBatch = errors.New("batch contains no items")

// SetupError indicates a missing prerequisite that fails the whole call
// before any item is touched.
type SetupError struct {
	Reason string
}

func (e *SetupError) Error() string {
	return "ingest setup: " + e.Reason
}

// ToolResolver locates the retrieval tool binary.
type ToolResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// BatchRecorder persists a completed batch for history queries. Recording is
// best-effort; failures are logged and never surface to the caller.
type BatchRecorder interface {
	RecordBatch(ctx context.Context, requests []Request, summary BatchSummary) error
}

// Service runs acquisition batches.
type Service struct {
	workDir    string
	resolver   ToolResolver
	downloader ytdlp.Downloader
	uploader   s3store.Uploader
	persister  catalog.Persister
	reporter   Reporter
	recorder   BatchRecorder
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecorder attaches a batch history recorder.
func WithRecorder(recorder BatchRecorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// NewService constructs the coordinator. reporter may be nil, in which case
// progress events are discarded.
func NewService(workDir string, resolver ToolResolver, downloader ytdlp.Downloader, uploader s3store.Uploader, persister catalog.Persister, reporter Reporter, logger *slog.Logger, opts ...Option) *Service {
	if reporter == nil {
		reporter = NopReporter{}
	}
	svc := &Service{
		workDir:    workDir,
		resolver:   resolver,
		downloader: downloader,
		uploader:   uploader,
		persister:  persister,
		reporter:   reporter,
		logger:     logging.NewComponentLogger(logger, "ingest"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) checkSetup() error {
	switch {
	case s.workDir == "":
		return &SetupError{Reason: "work directory not configured"}
	case s.resolver == nil:
		return &SetupError{Reason: "tool resolver not configured"}
	case s.downloader == nil:
		return &SetupError{Reason: "downloader not configured"}
	case s.uploader == nil:
		return &SetupError{Reason: "object storage client not configured"}
	case s.persister == nil:
		return &SetupError{Reason: "metadata store not configured"}
	}
	return nil
}

// RunBatch processes requests strictly sequentially and returns one result
// per request in submission order. Item failures are recorded and do not
// abort the batch.
func (s *Service) RunBatch(ctx context.Context, requests []Request) (*BatchSummary, error) {
	if err := s.checkSetup(); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := os.MkdirAll(s.workDir, 0o755); err != nil {
		return nil, &SetupError{Reason: fmt.Sprintf("create work directory: %v", err)}
	}

	summary := &BatchSummary{Total: len(requests), Results: make([]Result, 0, len(requests))}
	started := s.now()

	for i, req := range requests {
		req.Index = i
		result := s.processItem(ctx, req)
		if result.Success {
			summary.SuccessCount++
		} else {
			summary.FailCount++
		}
		summary.Results = append(summary.Results, result)
	}

	s.logger.Info("batch complete",
		logging.Int("total", summary.Total),
		logging.Int("succeeded", summary.SuccessCount),
		logging.Int("failed", summary.FailCount),
		logging.Duration("elapsed", s.now().Sub(started)))

	if s.recorder != nil {
		if err := s.recorder.RecordBatch(ctx, requests, *summary); err != nil {
			s.logger.Warn("batch history not recorded", logging.Error(err))
		}
	}
	return summary, nil
}

func (s *Service) processItem(ctx context.Context, req Request) Result {
	tempPath := s.tempPath(req.Title)
	defer s.cleanupTemp(tempPath)

	itemLogger := s.logger.With(logging.Int("item", req.Index), logging.String("title", req.Title))

	s.reporter.Publish(Event{Index: req.Index, Stage: StageFetching})
	binary, err := s.resolver.Resolve(ctx)
	if err != nil {
		return s.failItem(itemLogger, req, "resolve retrieval tool", err)
	}

	s.reporter.Publish(Event{Index: req.Index, Stage: StageDownloading})
	resolved, err := s.downloader.Download(ctx, binary, req.SourceURL, tempPath, func(update ytdlp.ProgressUpdate) {
		s.reporter.Publish(Event{Index: req.Index, Stage: StageDownloading, Percent: update.Percent})
	})
	if err != nil {
		return s.failItem(itemLogger, req, "download", err)
	}

	s.reporter.Publish(Event{Index: req.Index, Stage: StageUploading})
	uploaded, err := s.uploader.Upload(ctx, resolved, s.storageKey(req, resolved))
	if err != nil {
		return s.failItem(itemLogger, req, "upload", err)
	}

	s.reporter.Publish(Event{Index: req.Index, Stage: StageSaving})
	record := catalog.MediaRecord{
		ID:           catalog.NewRecordID(s.now()),
		StorageURL:   uploaded.URL,
		Category:     req.Category,
		Group:        req.Group,
		Title:        req.Title,
		ChannelTitle: req.ChannelTitle,
		UploadDate:   catalog.NormalizeDate(req.UploadDate, s.now()),
		ViewCount:    req.ViewCount,
	}
	record.Finalize(s.now())
	if err := s.persister.Put(ctx, record); err != nil {
		return s.failItem(itemLogger, req, "persist metadata", err)
	}

	itemLogger.Info("item ingested",
		logging.String("record", record.ID),
		logging.String("url", uploaded.URL),
		logging.Int64("bytes", uploaded.SizeBytes),
		logging.Duration("upload_elapsed", uploaded.Elapsed))

	result := Result{
		Index:      req.Index,
		Success:    true,
		RecordID:   record.ID,
		Title:      req.Title,
		StorageURL: uploaded.URL,
		SizeBytes:  uploaded.SizeBytes,
		SizeLabel:  humanize.IBytes(uint64(uploaded.SizeBytes)),
	}
	s.reporter.Publish(Event{Index: req.Index, Stage: StageDone, Message: result.SizeLabel})
	return result
}

func (s *Service) failItem(logger *slog.Logger, req Request, stage string, err error) Result {
	message := fmt.Sprintf("%s: %v", stage, err)
	logger.Error("item failed", logging.String("stage", stage), logging.Error(err))
	s.reporter.Publish(Event{Index: req.Index, Stage: StageError, Message: message})
	return Result{Index: req.Index, Title: req.Title, Error: message}
}

// tempPath namespaces in-flight downloads by timestamp plus a sanitized
// title fragment so items never collide, within a batch or across
// concurrent batch submissions.
func (s *Service) tempPath(title string) string {
	token := textutil.SanitizeToken(title)
	if len(token) > 48 {
		token = token[:48]
	}
	return filepath.Join(s.workDir, fmt.Sprintf("%d-%s.mp4", s.now().UnixMilli(), token))
}

// cleanupTemp removes every file the tool may have produced for the item.
// Cleanup failures are swallowed; they never surface into the item result.
func (s *Service) cleanupTemp(tempPath string) {
	for _, candidate := range ytdlp.OutputCandidates(tempPath) {
		_ = os.Remove(candidate)
	}
}

func (s *Service) storageKey(req Request, resolvedPath string) string {
	return textutil.SanitizeToken(req.Group) + "/" + filepath.Base(resolvedPath)
}
