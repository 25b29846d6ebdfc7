package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"mediavault/internal/catalog"
	"mediavault/internal/logging"
	"mediavault/internal/services/s3store"
	"mediavault/internal/services/ytdlp"
)

type fakeResolver struct {
	path string
	err  error
}

func (f *fakeResolver) Resolve(context.Context) (string, error) {
	return f.path, f.err
}

type fakeDownloader struct {
	// failFor maps source URLs that should fail to their error.
	failFor map[string]error
	// ext is the extension of the file the fake tool produces.
	ext string

	mu        sync.Mutex
	written   []string
	templates []string
}

func (f *fakeDownloader) Download(_ context.Context, _, sourceURL, outputPath string, progress func(ytdlp.ProgressUpdate)) (string, error) {
	f.mu.Lock()
	f.templates = append(f.templates, outputPath)
	f.mu.Unlock()

	if err, ok := f.failFor[sourceURL]; ok {
		return "", err
	}
	if progress != nil {
		progress(ytdlp.ProgressUpdate{Percent: 50})
		progress(ytdlp.ProgressUpdate{Percent: 100})
	}
	ext := f.ext
	if ext == "" {
		ext = ".mp4"
	}
	produced := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ext
	if err := os.WriteFile(produced, []byte("media"), 0o644); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.written = append(f.written, produced)
	f.mu.Unlock()
	return produced, nil
}

type fakeUploader struct {
	err      error
	uploaded []string
	keys     []string
}

func (f *fakeUploader) Upload(_ context.Context, localPath, key string) (s3store.UploadResult, error) {
	if f.err != nil {
		return s3store.UploadResult{}, f.err
	}
	if _, err := os.Stat(localPath); err != nil {
		return s3store.UploadResult{}, fmt.Errorf("local file vanished before upload: %w", err)
	}
	f.uploaded = append(f.uploaded, localPath)
	f.keys = append(f.keys, key)
	return s3store.UploadResult{
		URL:       "https://clips.s3.us-east-1.amazonaws.com/" + key,
		SizeBytes: 5,
		Elapsed:   10 * time.Millisecond,
	}, nil
}

type fakePersister struct {
	err     error
	records []catalog.MediaRecord
}

func (f *fakePersister) Put(_ context.Context, record catalog.MediaRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

type eventSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *eventSink) Publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *eventSink) stagesFor(index int) []Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stages []Stage
	for _, event := range s.events {
		if event.Index == index {
			stages = append(stages, event.Stage)
		}
	}
	return stages
}

type fixture struct {
	service    *Service
	workDir    string
	resolver   *fakeResolver
	downloader *fakeDownloader
	uploader   *fakeUploader
	persister  *fakePersister
	sink       *eventSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		workDir:    t.TempDir(),
		resolver:   &fakeResolver{path: "/usr/bin/yt-dlp"},
		downloader: &fakeDownloader{},
		uploader:   &fakeUploader{},
		persister:  &fakePersister{},
		sink:       &eventSink{},
	}
	f.service = NewService(f.workDir, f.resolver, f.downloader, f.uploader, f.persister, f.sink, logging.NewNop())
	return f
}

func remainingFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestRunBatchSingleSuccess(t *testing.T) {
	f := newFixture(t)
	summary, err := f.service.RunBatch(context.Background(), []Request{
		{SourceURL: "https://video.example/abc", Title: "Test", Group: "News", Category: "current"},
	})
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}
	if summary.Total != 1 || summary.SuccessCount != 1 || summary.FailCount != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	result := summary.Results[0]
	if !result.Success || result.Index != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(result.StorageURL, "https://clips.s3.us-east-1.amazonaws.com/news/") {
		t.Fatalf("unexpected storage url: %q", result.StorageURL)
	}
	if result.RecordID == "" || result.SizeLabel == "" {
		t.Fatalf("expected record id and size label, got %+v", result)
	}

	stages := f.sink.stagesFor(0)
	want := []Stage{StageFetching, StageDownloading, StageDownloading, StageDownloading, StageUploading, StageSaving, StageDone}
	if len(stages) != len(want) {
		t.Fatalf("unexpected stage sequence: %v", stages)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Fatalf("stage %d = %q, want %q (full: %v)", i, stages[i], want[i], stages)
		}
	}

	if files := remainingFiles(t, f.workDir); len(files) != 0 {
		t.Fatalf("temp files left after batch: %v", files)
	}
}

func TestRunBatchContinuesAfterItemFailure(t *testing.T) {
	f := newFixture(t)
	f.downloader.failFor = map[string]error{
		"https://video.example/down": &ytdlp.DownloadError{ExitCode: 1, Detail: "unreachable"},
	}

	summary, err := f.service.RunBatch(context.Background(), []Request{
		{SourceURL: "https://video.example/down", Title: "Broken", Group: "News"},
		{SourceURL: "https://video.example/ok", Title: "Fine", Group: "News"},
	})
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}
	if summary.SuccessCount != 1 || summary.FailCount != 1 || summary.Total != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Results[0].Success || summary.Results[0].Index != 0 {
		t.Fatalf("expected first result failed: %+v", summary.Results[0])
	}
	if !strings.Contains(summary.Results[0].Error, "unreachable") {
		t.Fatalf("expected failure detail, got %q", summary.Results[0].Error)
	}
	if !summary.Results[1].Success || summary.Results[1].Index != 1 {
		t.Fatalf("expected second result succeeded: %+v", summary.Results[1])
	}

	stages := f.sink.stagesFor(0)
	if stages[len(stages)-1] != StageError {
		t.Fatalf("expected terminal error stage for failed item, got %v", stages)
	}
}

func TestRunBatchEmpty(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.RunBatch(context.Background(), nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if len(f.persister.records) != 0 {
		t.Fatal("expected no records persisted for empty batch")
	}
}

func TestRunBatchSetupError(t *testing.T) {
	svc := NewService("", nil, nil, nil, nil, nil, logging.NewNop())
	_, err := svc.RunBatch(context.Background(), []Request{{SourceURL: "https://x"}})
	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("expected SetupError, got %v", err)
	}
}

func TestRunBatchResolverFailureIsPerItem(t *testing.T) {
	f := newFixture(t)
	f.resolver.err = fmt.Errorf("%w: nothing worked", errToolMissing)

	summary, err := f.service.RunBatch(context.Background(), []Request{
		{SourceURL: "https://video.example/a", Title: "A"},
		{SourceURL: "https://video.example/b", Title: "B"},
	})
	if err != nil {
		t.Fatalf("expected per-item failures, not a fatal error: %v", err)
	}
	if summary.FailCount != 2 || len(summary.Results) != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	for i, result := range summary.Results {
		if result.Success {
			t.Fatalf("result %d unexpectedly succeeded", i)
		}
		if !strings.Contains(result.Error, "nothing worked") {
			t.Fatalf("expected resolver error in result, got %q", result.Error)
		}
	}
}

var errToolMissing = errors.New("retrieval tool not found")

func TestRunBatchCleansTempOnFailure(t *testing.T) {
	f := newFixture(t)
	f.uploader.err = &s3store.UploadError{Key: "k", Err: errors.New("AccessDenied")}

	summary, err := f.service.RunBatch(context.Background(), []Request{
		{SourceURL: "https://video.example/abc", Title: "Test", Group: "News"},
	})
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}
	if summary.FailCount != 1 {
		t.Fatalf("expected failed item, got %+v", summary)
	}
	// The downloader produced a file before the upload failed; it must be
	// gone by the time the terminal result exists.
	if files := remainingFiles(t, f.workDir); len(files) != 0 {
		t.Fatalf("temp files left after failed item: %v", files)
	}
}

func TestRunBatchCleansSubstitutedContainer(t *testing.T) {
	f := newFixture(t)
	f.downloader.ext = ".webm"

	if _, err := f.service.RunBatch(context.Background(), []Request{
		{SourceURL: "https://video.example/abc", Title: "Test", Group: "News"},
	}); err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}
	if files := remainingFiles(t, f.workDir); len(files) != 0 {
		t.Fatalf("substituted-container temp file left behind: %v", files)
	}
}

func TestRunBatchNormalizesDates(t *testing.T) {
	f := newFixture(t)
	fixed := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	WithClock(func() time.Time { return fixed })(f.service)

	_, err := f.service.RunBatch(context.Background(), []Request{
		{SourceURL: "https://video.example/a", Title: "Dated", UploadDate: "20240517"},
		{SourceURL: "https://video.example/b", Title: "Undated", UploadDate: "garbage value"},
	})
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}
	if len(f.persister.records) != 2 {
		t.Fatalf("expected two persisted records, got %d", len(f.persister.records))
	}
	if f.persister.records[0].UploadDate != "2024-05-17" {
		t.Fatalf("expected parsed date, got %q", f.persister.records[0].UploadDate)
	}
	if f.persister.records[1].UploadDate != "2026-08-30" {
		t.Fatalf("expected fallback to today, got %q", f.persister.records[1].UploadDate)
	}
	for _, record := range f.persister.records {
		if !record.Active {
			t.Fatalf("expected active record: %+v", record)
		}
		if record.CreatedAt == "" || record.UpdatedAt == "" {
			t.Fatalf("expected timestamps: %+v", record)
		}
	}
	if f.persister.records[0].ID == f.persister.records[1].ID {
		t.Fatalf("record ids must be fresh per item, both %q", f.persister.records[0].ID)
	}
}

func TestRunBatchPersistenceFailureIsPerItem(t *testing.T) {
	f := newFixture(t)
	f.persister.err = &catalog.PersistenceError{RecordID: "x", Err: errors.New("table missing")}

	summary, err := f.service.RunBatch(context.Background(), []Request{
		{SourceURL: "https://video.example/abc", Title: "Test", Group: "News"},
	})
	if err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}
	if summary.FailCount != 1 {
		t.Fatalf("expected persistence failure to be recorded: %+v", summary)
	}
	if !strings.Contains(summary.Results[0].Error, "persist metadata") {
		t.Fatalf("expected persist stage in error, got %q", summary.Results[0].Error)
	}
}

type recordingRecorder struct {
	requests []Request
	summary  BatchSummary
	err      error
}

func (r *recordingRecorder) RecordBatch(_ context.Context, requests []Request, summary BatchSummary) error {
	r.requests = requests
	r.summary = summary
	return r.err
}

func TestRunBatchRecordsHistory(t *testing.T) {
	f := newFixture(t)
	recorder := &recordingRecorder{}
	WithRecorder(recorder)(f.service)

	if _, err := f.service.RunBatch(context.Background(), []Request{
		{SourceURL: "https://video.example/abc", Title: "Test", Group: "News"},
	}); err != nil {
		t.Fatalf("RunBatch returned error: %v", err)
	}
	if recorder.summary.Total != 1 || len(recorder.requests) != 1 {
		t.Fatalf("expected batch recorded, got %+v", recorder.summary)
	}
}

func TestRunBatchRecorderFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	WithRecorder(&recordingRecorder{err: errors.New("journal closed")})(f.service)

	summary, err := f.service.RunBatch(context.Background(), []Request{
		{SourceURL: "https://video.example/abc", Title: "Test", Group: "News"},
	})
	if err != nil {
		t.Fatalf("recorder failure must not fail the batch: %v", err)
	}
	if summary.SuccessCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
