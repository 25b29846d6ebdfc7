package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaRecord is the persisted metadata for one ingested item. It is written
// once by the ingest pipeline and never mutated here.
type MediaRecord struct {
	ID           string `dynamodbav:"id" json:"id"`
	StorageURL   string `dynamodbav:"storageUrl" json:"storageUrl"`
	Category     string `dynamodbav:"category" json:"category"`
	Group        string `dynamodbav:"group" json:"group"`
	Title        string `dynamodbav:"title" json:"title"`
	ChannelTitle string `dynamodbav:"channelTitle,omitempty" json:"channelTitle,omitempty"`
	UploadDate   string `dynamodbav:"uploadDate" json:"uploadDate"`
	Description  string `dynamodbav:"description,omitempty" json:"description,omitempty"`
	ViewCount    int64  `dynamodbav:"viewCount,omitempty" json:"viewCount,omitempty"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt    string `dynamodbav:"updatedAt" json:"updatedAt"`
	Active       bool   `dynamodbav:"active" json:"active"`
}

// NewRecordID generates a fresh record key: unix milliseconds plus a short
// random suffix.
func NewRecordID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// Finalize stamps the bookkeeping fields every record carries.
func (r *MediaRecord) Finalize(now time.Time) {
	stamp := now.UTC().Format(time.RFC3339)
	r.CreatedAt = stamp
	r.UpdatedAt = stamp
	r.Active = true
}
