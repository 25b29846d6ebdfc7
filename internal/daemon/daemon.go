package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"mediavault/internal/config"
	"mediavault/internal/deps"
	"mediavault/internal/ingest"
	"mediavault/internal/journal"
	"mediavault/internal/logging"
)

// Daemon coordinates the ingest service and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	ingest  *ingest.Service
	journal *journal.Store

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc

	api *apiServer
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Uptime       time.Duration
	JournalPath  string
	LockFilePath string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, svc *ingest.Service, store *journal.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || svc == nil || logger == nil {
		return nil, errors.New("daemon requires config, ingest service, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "mediavaultd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		ingest:   svc,
		journal:  store,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and brings up the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mediavault daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("mediavault daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the HTTP API and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("mediavault daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.journal != nil {
		return d.journal.Close()
	}
	return nil
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// RunBatch executes an ingest batch through the daemon's service.
func (d *Daemon) RunBatch(ctx context.Context, requests []ingest.Request) (*ingest.BatchSummary, error) {
	return d.ingest.RunBatch(ctx, requests)
}

// History returns the most recent recorded batches, newest first.
func (d *Daemon) History(ctx context.Context, limit int) ([]journal.Batch, error) {
	if d.journal == nil {
		return nil, nil
	}
	return d.journal.Recent(ctx, limit)
}

// Status reports runtime information including external tool availability.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		Dependencies: deps.CheckBinaries(deps.DefaultRequirements()),
	}
	if status.Running {
		status.Uptime = time.Since(d.startedAt)
	}
	if d.journal != nil {
		status.JournalPath = d.journal.Path()
	}
	return status
}
