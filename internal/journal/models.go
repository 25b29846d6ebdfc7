package journal

import "time"

// Batch is one recorded batch run.
type Batch struct {
	ID           int64
	CreatedAt    time.Time
	Total        int
	SuccessCount int
	FailCount    int
	Items        []Item
}

// Item is one recorded batch item outcome.
type Item struct {
	ID         int64
	BatchID    int64
	Position   int
	Title      string
	SourceURL  string
	Success    bool
	StorageURL string
	RecordID   string
	SizeBytes  int64
	Error      string
}
