package s3store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadResult describes a completed upload.
type UploadResult struct {
	URL       string
	SizeBytes int64
	Elapsed   time.Duration
}

// Uploader defines the behaviour required by the ingest coordinator.
type Uploader interface {
	Upload(ctx context.Context, localPath, key string) (UploadResult, error)
}

// UploadError reports a transport or storage-side upload failure.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// uploadAPI matches manager.Uploader's Upload method so tests can fake it.
type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Option configures the client.
type Option func(*Client)

// WithUploadAPI injects a custom upload implementation (primarily for tests).
func WithUploadAPI(api uploadAPI) Option {
	return func(c *Client) {
		if api != nil {
			c.uploader = api
		}
	}
}

// Client streams local files into a bucket and derives their public address.
type Client struct {
	bucket   string
	region   string
	endpoint string
	uploader uploadAPI
}

// New constructs a storage client. endpoint may be empty for real AWS.
func New(api *s3.Client, bucket, region, endpoint string, opts ...Option) (*Client, error) {
	if bucket == "" {
		return nil, errors.New("bucket required")
	}
	client := &Client{
		bucket:   bucket,
		region:   region,
		endpoint: strings.TrimRight(endpoint, "/"),
	}
	if api != nil {
		client.uploader = manager.NewUploader(api)
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.uploader == nil {
		return nil, errors.New("s3 client required")
	}
	return client, nil
}

// contentTypes maps known video container extensions to MIME types.
var contentTypes = map[string]string{
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".flv":  "video/x-flv",
}

const fallbackContentType = "application/octet-stream"

// ContentTypeFor derives a MIME type from the file extension.
func ContentTypeFor(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return fallbackContentType
}

// Upload streams localPath to the bucket under key. The file is never
// buffered whole in memory; the manager uploader reads it in parts.
func (c *Client) Upload(ctx context.Context, localPath, key string) (UploadResult, error) {
	if key == "" {
		return UploadResult{}, errors.New("destination key required")
	}

	file, err := os.Open(localPath)
	if err != nil {
		return UploadResult{}, &UploadError{Key: key, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return UploadResult{}, &UploadError{Key: key, Err: err}
	}

	start := time.Now()
	_, err = c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(ContentTypeFor(localPath)),
	})
	if err != nil {
		return UploadResult{}, &UploadError{Key: key, Err: err}
	}

	return UploadResult{
		URL:       c.objectURL(key),
		SizeBytes: info.Size(),
		Elapsed:   time.Since(start),
	}, nil
}

func (c *Client) objectURL(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}
