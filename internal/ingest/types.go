package ingest

// Request describes one item of an acquisition batch. Requests are immutable
// once submitted.
type Request struct {
	SourceURL    string
	Title        string
	Category     string
	Group        string
	ChannelTitle string
	UploadDate   string
	ViewCount    int64
	Index        int
}

// Stage is the per-item pipeline state. done and error are terminal.
type Stage string

const (
	StageFetching    Stage = "fetching"
	StageDownloading Stage = "downloading"
	StageUploading   Stage = "uploading"
	StageSaving      Stage = "saving"
	StageDone        Stage = "done"
	StageError       Stage = "error"
)

// Result is the terminal outcome for one request. Exactly one Result is
// produced per Request, in submission order.
type Result struct {
	Index      int
	Success    bool
	RecordID   string
	Title      string
	StorageURL string
	SizeBytes  int64
	SizeLabel  string
	Error      string
}

// BatchSummary aggregates a completed batch run.
type BatchSummary struct {
	Total        int
	SuccessCount int
	FailCount    int
	Results      []Result
}
