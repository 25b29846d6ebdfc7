package api

import "time"

// VideoInput is one item of an ingest batch submission.
type VideoInput struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Group        string `json:"group"`
	Section      string `json:"section,omitempty"`
	ChannelTitle string `json:"channelTitle,omitempty"`
	UploadDate   string `json:"uploadDate,omitempty"`
	ViewCount    int64  `json:"viewCount,omitempty"`
}

// IngestRequest is the batch submission body.
type IngestRequest struct {
	Videos []VideoInput `json:"videos"`
}

// ItemResult is the terminal outcome for one submitted video. The results
// array always matches the request's videos array in length and order.
type ItemResult struct {
	Success   bool   `json:"success"`
	VideoID   string `json:"videoId,omitempty"`
	Title     string `json:"title"`
	S3URL     string `json:"s3Url,omitempty"`
	Size      string `json:"size,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	Error     string `json:"error,omitempty"`
}

// IngestResponse summarizes a processed batch.
type IngestResponse struct {
	Success      bool         `json:"success"`
	SuccessCount int          `json:"successCount"`
	FailCount    int          `json:"failCount"`
	Total        int          `json:"total"`
	Results      []ItemResult `json:"results"`
}

// DependencyStatus reports availability of one external binary.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus reports daemon runtime information.
type DaemonStatus struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	UptimeSeconds int64              `json:"uptimeSeconds"`
	JournalPath   string             `json:"journalPath"`
	LockFilePath  string             `json:"lockFilePath"`
	Dependencies  []DependencyStatus `json:"dependencies"`
}

// HistoryItem is one recorded batch item outcome.
type HistoryItem struct {
	Position  int    `json:"position"`
	Title     string `json:"title"`
	SourceURL string `json:"sourceUrl"`
	Success   bool   `json:"success"`
	S3URL     string `json:"s3Url,omitempty"`
	RecordID  string `json:"recordId,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HistoryBatch is one recorded batch run.
type HistoryBatch struct {
	ID           int64         `json:"id"`
	CreatedAt    time.Time     `json:"createdAt"`
	Total        int           `json:"total"`
	SuccessCount int           `json:"successCount"`
	FailCount    int           `json:"failCount"`
	Items        []HistoryItem `json:"items"`
}

// HistoryResponse lists recent batch runs, newest first.
type HistoryResponse struct {
	Batches []HistoryBatch `json:"batches"`
}
