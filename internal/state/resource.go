package state

import (
	"context"
	"sync"

	cl "photo-albums/pkg/catalog"
)

// resource is the plumbing shared by the album, image and profile stores: a
// lock over the store's data, the per-operation tracker and change
// notification.
type resource struct {
	notifier

	mu   sync.Mutex
	ops  tracker
	opts Options
}

func newResource(opts Options) resource {
	return resource{ops: newTracker(), opts: opts.withDefaults()}
}

// begin marks key in flight.
func (r *resource) begin(key OpKey) {
	r.mu.Lock()
	r.ops.start(key)
	r.mu.Unlock()
	r.notify()
}

// acquire marks key in flight unless it already is.
func (r *resource) acquire(key OpKey) bool {
	r.mu.Lock()
	ok := r.ops.acquire(key)
	r.mu.Unlock()
	if ok {
		r.notify()
	}
	return ok
}

// succeed records key as done and runs apply under the lock.
func (r *resource) succeed(key OpKey, apply func()) {
	r.mu.Lock()
	if apply != nil {
		apply()
	}
	r.ops.succeed(key)
	r.mu.Unlock()
	r.notify()
}

// fail records err against key. Data held by the store is left untouched.
func (r *resource) fail(key OpKey, err error, fallback string) {
	r.mu.Lock()
	r.ops.fail(key, cl.Message(err, fallback))
	r.mu.Unlock()
	r.notify()
	r.opts.Logger.Warn("[resource] operation failed",
		"op", string(key.Kind),
		"entity_id", key.EntityID,
		"kind", cl.KindOf(err).String(),
		"details", err.Error(),
	)
}

// Dismiss clears the error recorded for key.
func (r *resource) Dismiss(key OpKey) {
	r.mu.Lock()
	r.ops.dismiss(key)
	r.mu.Unlock()
	r.notify()
}

// Pending reports whether an operation of kind on entityID is in flight.
func (r *resource) Pending(entityID string, kind OpKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ops.pending(OpKey{EntityID: entityID, Kind: kind})
}

// reconcile reacts to the error classes that invalidate local state: a 401
// expires the session, a 404 re-reads the collection through refresh.
func (r *resource) reconcile(ctx context.Context, err error, refresh func(context.Context)) {
	switch cl.KindOf(err) {
	case cl.KindAuthentication:
		r.opts.onAuthFailure(ctx, err)
	case cl.KindNotFound:
		if refresh != nil {
			refresh(context.WithoutCancel(ctx))
		}
	}
}
