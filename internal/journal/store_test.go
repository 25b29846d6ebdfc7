package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mediavault/internal/ingest"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordBatchRoundtrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	requests := []ingest.Request{
		{SourceURL: "https://video.example/a", Title: "First"},
		{SourceURL: "https://video.example/b", Title: "Second"},
	}
	summary := ingest.BatchSummary{
		Total:        2,
		SuccessCount: 1,
		FailCount:    1,
		Results: []ingest.Result{
			{Index: 0, Success: true, Title: "First", RecordID: "123-ab", StorageURL: "https://clips/a.mp4", SizeBytes: 99},
			{Index: 1, Title: "Second", Error: "download: unreachable"},
		},
	}
	if err := store.RecordBatch(ctx, requests, summary); err != nil {
		t.Fatalf("RecordBatch returned error: %v", err)
	}

	batches, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(batches))
	}
	batch := batches[0]
	if batch.Total != 2 || batch.SuccessCount != 1 || batch.FailCount != 1 {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	if batch.CreatedAt.IsZero() {
		t.Fatal("expected created_at to round-trip")
	}
	if len(batch.Items) != 2 {
		t.Fatalf("expected two items, got %d", len(batch.Items))
	}
	if batch.Items[0].Position != 0 || !batch.Items[0].Success || batch.Items[0].RecordID != "123-ab" {
		t.Fatalf("unexpected first item: %+v", batch.Items[0])
	}
	if batch.Items[1].Success || batch.Items[1].Error != "download: unreachable" {
		t.Fatalf("unexpected second item: %+v", batch.Items[1])
	}
	if batch.Items[1].SourceURL != "https://video.example/b" {
		t.Fatalf("expected source url to round-trip, got %q", batch.Items[1].SourceURL)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		summary := ingest.BatchSummary{
			Total:        1,
			SuccessCount: 1,
			Results:      []ingest.Result{{Index: 0, Success: true, Title: "Clip"}},
		}
		if err := store.RecordBatch(ctx, []ingest.Request{{SourceURL: "https://x"}}, summary); err != nil {
			t.Fatalf("RecordBatch %d: %v", i, err)
		}
	}

	batches, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected limit of 2 batches, got %d", len(batches))
	}
	if batches[0].ID <= batches[1].ID {
		t.Fatalf("expected newest first, got ids %d, %d", batches[0].ID, batches[1].ID)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer reopened.Close()
	if reopened.Path() != path {
		t.Fatalf("unexpected path %q", reopened.Path())
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = Open(path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestRecentEmptyJournal(t *testing.T) {
	store := openStore(t)
	batches, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected no batches, got %d", len(batches))
	}
}
