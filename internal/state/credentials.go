package state

import (
	"sync"

	"photo-albums/internal"
)

var _ internal.TokenSource = (*Credentials)(nil)

// Credentials holds the bearer token of the current session. It is handed to
// the API client by reference; only Session mutates it.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

// Token returns the held token, or "" when signed out.
func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Credentials) set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Credentials) clear() { c.set("") }
