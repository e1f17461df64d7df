// Package orchestrator owns the single try-on job slot.
//
// Exactly one job exists at a time. Every transition replaces the record
// wholesale and is persisted before any observer hears about it, so queries
// always reflect the last durable write. A start while a prior job is still
// generating silently supersedes it; the superseded call's eventual result
// is discarded by token comparison, never by aborting the network call.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tryon/internal/config"
	"tryon/internal/generation"
	"tryon/internal/job"
	"tryon/internal/logging"
	"tryon/internal/notifications"
	"tryon/internal/store"
)

var (
	// ErrNoGarment reports a start request without a garment source.
	ErrNoGarment = errors.New("start request needs a garment url or inline garment data")
	// ErrNoModelPhoto reports a start request with no inline photo and no
	// saved reference photo to fall back on.
	ErrNoModelPhoto = errors.New("no model photo provided and no reference photo saved")
)

// Generator is the outbound generation call. The production implementation
// is generation.Client; tests substitute doubles.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) ([]byte, error)
}

// Orchestrator serializes all job slot transitions behind one mutex and
// runs generation calls on background goroutines tagged with the job token.
type Orchestrator struct {
	cfg       *config.Config
	store     *store.Store
	logger    *slog.Logger
	notifier  notifications.Service
	generator Generator
	fetcher   *garmentFetcher

	mu      sync.Mutex
	current job.Record

	subsMu  sync.Mutex
	subs    map[int]chan job.Record
	nextSub int

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	runCtx  context.Context
	wg      sync.WaitGroup
}

// New constructs an orchestrator. The notifier may be a noop service; the
// generator must not be nil.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, notifier notifications.Service, generator Generator) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:       cfg,
		store:     st,
		logger:    logging.NewComponentLogger(logger, "orchestrator"),
		notifier:  notifier,
		generator: generator,
		fetcher:   newGarmentFetcher(cfg),
		current:   job.NewIdle(),
		subs:      make(map[int]chan job.Record),
	}
}

// Run starts background work (the stale-job reaper) and blocks new job
// goroutines on the returned context. Safe to call once.
func (o *Orchestrator) Run(ctx context.Context) {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	if o.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.runCtx = runCtx
	o.cancel = cancel
	o.running = true

	o.wg.Add(1)
	go o.reaperLoop(runCtx)
}

// Stop cancels background work and waits for in-flight goroutines.
func (o *Orchestrator) Stop() {
	o.runMu.Lock()
	if !o.running {
		o.runMu.Unlock()
		return
	}
	o.running = false
	cancel := o.cancel
	o.runMu.Unlock()

	cancel()
	o.wg.Wait()
	o.closeSubscribers()
}

// Start transitions the slot to generating with a fresh token and launches
// the generation call in the background. The prior job, whatever its state,
// is superseded. The returned record is the persisted generating snapshot.
func (o *Orchestrator) Start(ctx context.Context, req job.Request) (job.Record, error) {
	req.GarmentURL = strings.TrimSpace(req.GarmentURL)
	if req.GarmentURL == "" && req.GarmentData == "" {
		return job.Record{}, ErrNoGarment
	}
	if strings.TrimSpace(req.ModelPhoto) == "" {
		photo, found, err := o.store.LoadPhoto(ctx)
		if err != nil {
			return job.Record{}, err
		}
		if !found {
			return job.Record{}, ErrNoModelPhoto
		}
		req.ModelPhoto = photo.Data
	}

	token := uuid.NewString()
	now := time.Now().UTC()

	o.mu.Lock()
	candidate := o.current
	candidate.SetGenerating(token, req, now)
	if err := o.store.SaveJob(ctx, candidate); err != nil {
		o.mu.Unlock()
		return job.Record{}, err
	}
	o.current = candidate
	o.mu.Unlock()

	o.logger.Info("job started",
		logging.String(logging.FieldJobToken, token),
		logging.String(logging.FieldURL, req.GarmentURL))
	o.broadcast(candidate)

	runCtx := o.backgroundContext()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.runJob(runCtx, token, req)
	}()

	return candidate, nil
}

// Query returns the current job record snapshot.
func (o *Orchestrator) Query(context.Context) (job.Record, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current, nil
}

// Clear resets the slot to idle. Idempotent; an in-flight generation for a
// cleared job is discarded when it completes.
func (o *Orchestrator) Clear(ctx context.Context) (job.Record, error) {
	idle := job.NewIdle()

	o.mu.Lock()
	if err := o.store.SaveJob(ctx, idle); err != nil {
		o.mu.Unlock()
		return job.Record{}, err
	}
	o.current = idle
	o.mu.Unlock()

	o.logger.Info("job slot cleared")
	o.broadcast(idle)
	return idle, nil
}

// complete commits a successful result for the given token. Results whose
// token no longer matches the slot are discarded.
func (o *Orchestrator) complete(ctx context.Context, token, resultDataURL string) {
	o.mu.Lock()
	if o.current.Token != token || o.current.Status != job.StatusGenerating {
		o.mu.Unlock()
		o.logger.Info("discarding stale completion", logging.String(logging.FieldJobToken, token))
		return
	}
	candidate := o.current
	candidate.SetComplete(resultDataURL, time.Now().UTC())
	if err := o.store.SaveJob(ctx, candidate); err != nil {
		o.mu.Unlock()
		o.logger.Error("persist completed job", logging.Error(err))
		return
	}
	o.current = candidate
	o.mu.Unlock()

	o.logger.Info("job completed", logging.String(logging.FieldJobToken, token))
	o.broadcast(candidate)

	description := ""
	if candidate.Request != nil {
		description = candidate.Request.Description
	}
	if err := o.notifier.NotifyGenerationComplete(ctx, description); err != nil {
		o.logger.Warn("completion notification failed", logging.Error(err))
	}
}

// fail commits a terminal error for the given token, with the same stale
// discard rule as complete.
func (o *Orchestrator) fail(ctx context.Context, token, message string) {
	o.mu.Lock()
	if o.current.Token != token || o.current.Status != job.StatusGenerating {
		o.mu.Unlock()
		o.logger.Info("discarding stale failure", logging.String(logging.FieldJobToken, token))
		return
	}
	candidate := o.current
	candidate.SetFailed(message, time.Now().UTC())
	if err := o.store.SaveJob(ctx, candidate); err != nil {
		o.mu.Unlock()
		o.logger.Error("persist failed job", logging.Error(err))
		return
	}
	o.current = candidate
	o.mu.Unlock()

	o.logger.Warn("job failed",
		logging.String(logging.FieldJobToken, token),
		logging.String("reason", message))
	o.broadcast(candidate)

	if err := o.notifier.NotifyGenerationFailed(ctx, message); err != nil {
		o.logger.Warn("failure notification failed", logging.Error(err))
	}
}

// backgroundContext returns the context generation goroutines run under.
// Before Run is called (tests, mostly) it falls back to the background
// context so jobs are never silently cancelled.
func (o *Orchestrator) backgroundContext() context.Context {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	if o.runCtx != nil {
		return o.runCtx
	}
	return context.Background()
}
