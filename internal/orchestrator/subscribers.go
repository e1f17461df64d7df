package orchestrator

import (
	"context"

	"tryon/internal/job"
	"tryon/internal/store"
)

const subscriberBuffer = 8

// Subscribe registers a best-effort observer of slot transitions. Slow
// subscribers miss updates rather than block the writer; the durable record
// remains the authority and observers must re-query after reattaching.
func (o *Orchestrator) Subscribe() (<-chan job.Record, func()) {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()

	id := o.nextSub
	o.nextSub++
	ch := make(chan job.Record, subscriberBuffer)
	o.subs[id] = ch

	cancel := func() {
		o.subsMu.Lock()
		defer o.subsMu.Unlock()
		if existing, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

func (o *Orchestrator) broadcast(record job.Record) {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()
	for _, ch := range o.subs {
		select {
		case ch <- record:
		default:
		}
	}
}

func (o *Orchestrator) closeSubscribers() {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()
	for id, ch := range o.subs {
		delete(o.subs, id)
		close(ch)
	}
}

// SavePhoto persists the reference photo used when a start request carries
// no inline model photo.
func (o *Orchestrator) SavePhoto(ctx context.Context, photo store.Photo) error {
	return o.store.SavePhoto(ctx, photo)
}

// LoadPhoto returns the persisted reference photo, if any.
func (o *Orchestrator) LoadPhoto(ctx context.Context) (store.Photo, bool, error) {
	return o.store.LoadPhoto(ctx)
}

// RemovePhoto deletes the persisted reference photo. Removing an absent
// photo is not an error.
func (o *Orchestrator) RemovePhoto(ctx context.Context) error {
	return o.store.RemovePhoto(ctx)
}
