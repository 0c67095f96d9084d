package state

import (
	"context"
	"sync"

	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
)

// controller lends the optimistic update routine a store's lock,
// collection and tracker.
type controller[E any] struct {
	mu      *sync.Mutex
	items   *collection[E]
	ops     *tracker
	changed func()
}

// fieldChange is an optimistic mutation of one field of one entity.
type fieldChange[E any, V any] struct {
	key      OpKey
	read     func(E) V
	write    func(*E, V)
	guess    func(V) V
	fallback string
}

// runOptimistic applies ch to the entity key.EntityID before remote runs and
// reconciles afterwards:
//
//   - issue: the prior field value is captured, the guess is written and the
//     key joins the in-flight set, atomically under the store lock
//   - success: the field is overwritten with the value read from the
//     entity the server returned
//   - failure: the prior value is restored verbatim
//
// A key that is already in flight is rejected with ErrOperationPending and
// no request is made. The field value left in the store is returned, and
// issued reports whether remote ran at all.
func runOptimistic[E any, V any](ctx context.Context, c controller[E], ch fieldChange[E, V], remote func(context.Context) (E, error)) (final V, issued bool, err error) {
	var zero V
	id := ch.key.EntityID

	c.mu.Lock()
	entity, ok := c.items.get(id)
	if !ok {
		c.mu.Unlock()
		return zero, false, errors.Wrapf(cl.ErrNotFound, "%s %s", ch.key.Kind, id)
	}
	if !c.ops.acquire(ch.key) {
		c.mu.Unlock()
		return zero, false, errors.Wrapf(cl.ErrOperationPending, "%s %s", ch.key.Kind, id)
	}
	prior := ch.read(entity)
	ch.write(&entity, ch.guess(prior))
	c.items.replace(id, entity)
	c.mu.Unlock()
	c.changed()

	canonical, err := remote(ctx)

	c.mu.Lock()
	final = prior
	if err != nil {
		c.ops.fail(ch.key, cl.Message(err, ch.fallback))
	} else {
		final = ch.read(canonical)
		c.ops.succeed(ch.key)
	}
	// The entity may have been removed while the request was in flight.
	if current, ok := c.items.get(id); ok {
		ch.write(&current, final)
		c.items.replace(id, current)
	}
	c.mu.Unlock()
	c.changed()

	return final, true, err
}
