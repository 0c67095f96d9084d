package state

// collection is an id-keyed mapping that remembers insertion order.
type collection[T any] struct {
	order []string
	byID  map[string]T
	clone func(T) T
}

func newCollection[T any](clone func(T) T) *collection[T] {
	return &collection[T]{byID: make(map[string]T), clone: clone}
}

func (c *collection[T]) len() int { return len(c.order) }

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.byID[id]
	return v, ok
}

// put updates id in place, or appends it when it is new.
func (c *collection[T]) put(id string, v T) {
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byID[id] = v
}

// replace updates id in place only if it is already present.
func (c *collection[T]) replace(id string, v T) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	c.byID[id] = v
	return true
}

func (c *collection[T]) remove(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// reset replaces the contents with items, keyed by id.
func (c *collection[T]) reset(items []T, id func(T) string) {
	c.order = make([]string, 0, len(items))
	c.byID = make(map[string]T, len(items))
	for _, v := range items {
		c.put(id(v), v)
	}
}

// list returns deep copies in order.
func (c *collection[T]) list() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		v := c.byID[id]
		if c.clone != nil {
			v = c.clone(v)
		}
		out = append(out, v)
	}
	return out
}
