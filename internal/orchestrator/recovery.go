package orchestrator

import (
	"context"
	"time"

	"tryon/internal/job"
	"tryon/internal/logging"
)

// Recover rehydrates the in-memory slot from the store on startup. A
// generating record older than the staleness threshold belongs to a dead
// process and is converted to a terminal error; a younger one is left
// alone and picked up by the reaper once it ages past the threshold.
func (o *Orchestrator) Recover(ctx context.Context) error {
	record, found, err := o.store.LoadJob(ctx)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	now := time.Now().UTC()
	if record.IsStale(now, o.cfg.StaleJobTimeout()) {
		record.SetFailed(job.StaleJobReason, now)
		if err := o.store.SaveJob(ctx, record); err != nil {
			return err
		}
		o.logger.Warn("recovered stale job as failed",
			logging.String(logging.FieldJobToken, record.Token))
	}

	o.mu.Lock()
	o.current = record
	o.mu.Unlock()
	return nil
}

// reaperLoop re-applies the staleness rule periodically so an abandoned
// generating record cannot outlive the threshold by more than one tick.
func (o *Orchestrator) reaperLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.cfg.ReaperInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.reapStale(ctx)
		}
	}
}

func (o *Orchestrator) reapStale(ctx context.Context) {
	o.mu.Lock()
	if !o.current.IsStale(time.Now().UTC(), o.cfg.StaleJobTimeout()) {
		o.mu.Unlock()
		return
	}
	token := o.current.Token
	o.mu.Unlock()

	o.fail(ctx, token, job.StaleJobReason)
}
