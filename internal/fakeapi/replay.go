package fakeapi

import (
	"bytes"
	"net/http"
	"sync"
)

const headerIdempotencyKey = "Idempotency-Key"

// replay is a cached response. done is closed once the first request with
// the key has finished; kept reports whether its response was stored.
type replay struct {
	done   chan struct{}
	kept   bool
	code   int
	header http.Header
	body   []byte
}

// ReplayCache answers a repeated mutating request carrying the same
// Idempotency-Key with the first response instead of applying it twice.
// Keys are scoped to the bearer token. A request arriving while the first
// one is still in flight waits for its response.
type ReplayCache struct {
	mu      sync.Mutex
	entries map[string]*replay
}

func NewReplayCache() *ReplayCache {
	return &ReplayCache{entries: map[string]*replay{}}
}

// Len reports the number of reserved keys, in-flight requests included.
func (c *ReplayCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// reserve returns the entry for key and whether the caller now owns it.
func (c *ReplayCache) reserve(key string) (*replay, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e, false
	}
	e := &replay{done: make(chan struct{})}
	c.entries[key] = e
	return e, true
}

func (c *ReplayCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(headerIdempotencyKey)
		if key == "" || !mutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		key = bearerToken(r) + "|" + r.Method + "|" + r.URL.Path + "|" + key

		for {
			e, owner := c.reserve(key)
			if owner {
				c.apply(key, e, w, r, next)
				return
			}
			select {
			case <-e.done:
			case <-r.Context().Done():
				return
			}
			if e.kept {
				e.write(w)
				return
			}
			// The first attempt was not stored; try to become the owner.
		}
	})
}

func (c *ReplayCache) apply(key string, e *replay, w http.ResponseWriter, r *http.Request, next http.Handler) {
	rec := &recorder{ResponseWriter: w, code: http.StatusOK}
	defer func() {
		// Server errors may succeed on retry, so they are not remembered.
		if !rec.wroteHeader || rec.code >= http.StatusInternalServerError {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		} else {
			e.code, e.header, e.body = rec.code, w.Header().Clone(), rec.body.Bytes()
			e.kept = true
		}
		close(e.done)
	}()
	next.ServeHTTP(rec, r)
}

func (e *replay) write(w http.ResponseWriter) {
	for k, vs := range e.header {
		if k == "X-Request-Id" {
			continue
		}
		w.Header()[k] = append([]string(nil), vs...)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(e.code)
	_, _ = w.Write(e.body)
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// recorder tees the response so it can be replayed.
type recorder struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.code = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
