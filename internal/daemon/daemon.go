package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"tryon/internal/config"
	"tryon/internal/extraction"
	"tryon/internal/ipc"
	"tryon/internal/logging"
	"tryon/internal/notifications"
	"tryon/internal/orchestrator"
	"tryon/internal/store"
)

// Daemon enforces single-instance execution and owns the lifecycle of the
// orchestrator, the IPC socket, and the optional HTTP API.
type Daemon struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        *store.Store
	orchestrator *orchestrator.Orchestrator
	notifier     notifications.Service
	fetcher      *extraction.Fetcher

	lockPath string
	lock     *flock.Flock

	ipcServer *ipc.Server
	apiServer *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DBPath       string
	LockFilePath string
	SocketPath   string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, orc *orchestrator.Orchestrator, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil || orc == nil {
		return nil, errors.New("daemon requires config, store, logger, and orchestrator")
	}

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:          cfg,
		logger:       logger,
		store:        st,
		orchestrator: orc,
		notifier:     notifier,
		fetcher:      extraction.NewFetcher(nil, cfg.Fetch.UserAgent, cfg.Fetch.MaxBodyBytes),
		lockPath:     lockPath,
		lock:         flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, recovers persisted state, and brings up
// the IPC and HTTP servers.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another tryond instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if err := d.orchestrator.Recover(d.ctx); err != nil {
		d.teardown()
		return fmt.Errorf("recover job state: %w", err)
	}
	d.orchestrator.Run(d.ctx)

	ipcServer, err := ipc.NewServer(d.ctx, d.cfg.SocketPath(), d.orchestrator, d.fetcher, d.notifier, d.logger)
	if err != nil {
		d.orchestrator.Stop()
		d.teardown()
		return fmt.Errorf("start ipc server: %w", err)
	}
	ipcServer.SetLogPath(d.cfg.LogPath())
	d.ipcServer = ipcServer
	d.ipcServer.Serve()

	apiServer, err := newAPIServer(d.cfg, d.orchestrator, d.fetcher, d.logger)
	if err != nil {
		d.ipcServer.Close()
		d.ipcServer = nil
		d.orchestrator.Stop()
		d.teardown()
		return fmt.Errorf("configure api server: %w", err)
	}
	if apiServer != nil {
		if err := apiServer.start(d.ctx); err != nil {
			d.ipcServer.Close()
			d.ipcServer = nil
			d.orchestrator.Stop()
			d.teardown()
			return err
		}
		d.apiServer = apiServer
	}

	d.running.Store(true)
	d.logger.Info("tryond started",
		logging.String("lock", d.lockPath),
		logging.String("socket", d.cfg.SocketPath()))
	return nil
}

// Stop shuts down servers and background work, then releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
	}
	if d.apiServer != nil {
		d.apiServer.stop()
		d.apiServer = nil
	}
	if d.ipcServer != nil {
		d.ipcServer.Close()
		d.ipcServer = nil
	}
	d.orchestrator.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.cancel = nil
	d.running.Store(false)
	d.logger.Info("tryond stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports runtime information for diagnostics.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DBPath:       d.cfg.StorePath(),
		LockFilePath: d.lockPath,
		SocketPath:   d.cfg.SocketPath(),
	}
}

func (d *Daemon) teardown() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx = nil
	d.cancel = nil
}
