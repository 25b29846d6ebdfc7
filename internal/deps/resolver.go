package deps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-getter"

	"mediavault/internal/logging"
)

// ToolName is the retrieval tool binary looked up on PATH.
const ToolName = "yt-dlp"

// ErrToolNotFound indicates that no resolution strategy produced a usable
// retrieval tool binary.
var ErrToolNotFound = errors.New("retrieval tool not found")

const remediation = "set tool.path in the config, install yt-dlp on PATH, or set tool.download_url so mediavault can provision it"

// Resolver locates the retrieval tool. Strategies are tried in order:
// configured path, PATH lookup, provisioned prebuilt binary.
type Resolver struct {
	configuredPath string
	cacheDir       string
	downloadURL    string
	logger         *slog.Logger

	mu     sync.Mutex
	future *provisionFuture
}

type provisionFuture struct {
	done chan struct{}
	path string
	err  error
}

// NewResolver constructs a resolver. configuredPath and downloadURL may be
// empty, which disables the corresponding strategy.
func NewResolver(configuredPath, cacheDir, downloadURL string, logger *slog.Logger) *Resolver {
	return &Resolver{
		configuredPath: configuredPath,
		cacheDir:       cacheDir,
		downloadURL:    downloadURL,
		logger:         logging.NewComponentLogger(logger, "tool-resolver"),
	}
}

// Resolve returns the path of a runnable retrieval tool binary.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if r.configuredPath != "" {
		if _, err := os.Stat(r.configuredPath); err == nil {
			return r.configuredPath, nil
		}
		r.logger.Warn("configured tool path does not exist, falling back",
			logging.String("path", r.configuredPath))
	}

	if path, err := exec.LookPath(ToolName); err == nil {
		return path, nil
	}

	path, err := r.provision(ctx)
	if err != nil {
		return "", fmt.Errorf("%w (provisioning failed: %v): %s", ErrToolNotFound, err, remediation)
	}
	return path, nil
}

// provision downloads the prebuilt binary at most once. The first caller
// performs the download; concurrent callers wait on the same in-flight
// result. A failed attempt is not memoized so a later call may retry.
func (r *Resolver) provision(ctx context.Context) (string, error) {
	if r.downloadURL == "" || r.cacheDir == "" {
		return "", errors.New("tool provisioning is not configured")
	}

	r.mu.Lock()
	fut := r.future
	if fut == nil {
		fut = &provisionFuture{done: make(chan struct{})}
		r.future = fut
		r.mu.Unlock()

		fut.path, fut.err = r.download(ctx)
		if fut.err != nil {
			r.mu.Lock()
			r.future = nil
			r.mu.Unlock()
		}
		close(fut.done)
		return fut.path, fut.err
	}
	r.mu.Unlock()

	select {
	case <-fut.done:
		return fut.path, fut.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Resolver) download(ctx context.Context) (string, error) {
	dst := filepath.Join(r.cacheDir, ToolName)
	if info, err := os.Stat(dst); err == nil && !info.IsDir() {
		return dst, nil
	}
	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create tool cache dir: %w", err)
	}

	r.logger.Info("provisioning retrieval tool",
		logging.String("source", r.downloadURL),
		logging.String("destination", dst))

	client := &getter.Client{
		Ctx:  ctx,
		Src:  r.downloadURL,
		Dst:  dst,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("fetch tool binary: %w", err)
	}
	if err := os.Chmod(dst, 0o755); err != nil {
		return "", fmt.Errorf("mark tool executable: %w", err)
	}
	return dst, nil
}
