package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ProgressUpdate captures a download progress event.
type ProgressUpdate struct {
	Percent float64
}

// Downloader defines the behaviour required by the ingest coordinator.
type Downloader interface {
	Download(ctx context.Context, binary, sourceURL, outputPath string, progress func(ProgressUpdate)) (string, error)
}

// ErrSpawn indicates the retrieval tool binary could not be started at all.
var ErrSpawn = errors.New("retrieval tool could not be started")

const spawnHint = "check tool.path, install yt-dlp on PATH, or configure tool.download_url"

// DownloadError reports an abnormal tool run: a non-zero exit, or an exit
// with no recognizable output file.
type DownloadError struct {
	ExitCode int
	Detail   string
}

func (e *DownloadError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("download failed with exit code %d", e.ExitCode)
	}
	return fmt.Sprintf("download failed with exit code %d: %s", e.ExitCode, e.Detail)
}

// Executor abstracts command execution for testability. Implementations must
// deliver lines to onLine sequentially, never from more than one goroutine at
// a time.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onLine func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	exec Executor
}

// New constructs a yt-dlp client.
func New(opts ...Option) *Client {
	client := &Client{exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// candidateExtensions are checked in order when resolving the file the tool
// actually produced. yt-dlp may pick a different container than the output
// template names.
var candidateExtensions = []string{".mp4", ".mkv", ".webm", ".mov", ".avi", ".flv"}

// diagnosticLines bounds the tail of tool output kept for error reporting.
const diagnosticLines = 20

// Download runs the retrieval tool against sourceURL, writing to outputPath
// (subject to container substitution), and returns the path of the file the
// tool produced. progress is invoked only when the reported percentage
// changes.
func (c *Client) Download(ctx context.Context, binary, sourceURL, outputPath string, progress func(ProgressUpdate)) (string, error) {
	if binary == "" {
		return "", errors.New("tool binary required")
	}
	if sourceURL == "" {
		return "", errors.New("source url required")
	}
	if outputPath == "" {
		return "", errors.New("output path required")
	}

	args := []string{"--newline", "--no-playlist", "-o", outputPath, sourceURL}

	var tail []string
	lastPercent := -1.0
	onLine := func(line string) {
		tail = append(tail, line)
		if len(tail) > diagnosticLines {
			tail = tail[1:]
		}
		percent, ok := parseProgressLine(line)
		if !ok || percent == lastPercent {
			return
		}
		lastPercent = percent
		if progress != nil {
			progress(ProgressUpdate{Percent: percent})
		}
	}

	if err := c.exec.Run(ctx, binary, args, onLine); err != nil {
		if errors.Is(err, ErrSpawn) {
			return "", err
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &DownloadError{ExitCode: exitCode, Detail: strings.Join(tail, "; ")}
	}

	resolved, err := resolveOutput(outputPath)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// parseProgressLine extracts the percentage from a yt-dlp progress line such
// as "[download]  42.3% of 10.00MiB at 1.2MiB/s".
func parseProgressLine(line string) (float64, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[download]") {
		return 0, false
	}
	for _, field := range strings.Fields(trimmed) {
		if !strings.HasSuffix(field, "%") {
			continue
		}
		percent, err := strconv.ParseFloat(strings.TrimSuffix(field, "%"), 64)
		if err != nil {
			return 0, false
		}
		return percent, true
	}
	return 0, false
}

// OutputCandidates lists every path the tool may have written for the given
// output template, in resolution order: the template itself, then the
// container-substituted variants. Callers use it both to find the produced
// file and to clean up after an item.
func OutputCandidates(outputPath string) []string {
	ext := filepath.Ext(outputPath)
	base := strings.TrimSuffix(outputPath, ext)

	candidates := make([]string, 0, len(candidateExtensions)+1)
	if ext != "" {
		candidates = append(candidates, outputPath)
	}
	for _, candidate := range candidateExtensions {
		if candidate == ext {
			continue
		}
		candidates = append(candidates, base+candidate)
	}
	return candidates
}

// resolveOutput returns the first existing file among the template path and
// its container-substituted variants.
func resolveOutput(outputPath string) (string, error) {
	for _, candidate := range OutputCandidates(outputPath) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", &DownloadError{Detail: "output file not found"}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v (%s)", ErrSpawn, err, spawnHint)
	}

	// Both pipes funnel through one channel so onLine only ever runs on
	// this goroutine, keeping callers free of locking.
	lines := make(chan string, 64)
	var wg sync.WaitGroup
	var scanErr error
	var once sync.Once

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout)
	go scan(stderr)
	go func() {
		wg.Wait()
		close(lines)
	}()

	for line := range lines {
		if onLine != nil {
			onLine(line)
		}
	}

	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}
	return cmd.Wait()
}
