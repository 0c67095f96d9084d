package mock

import (
	"context"
	"sync"

	"photo-albums/internal"
)

var _ internal.LocalStorage = (*Storage)(nil)

// Storage is an in-memory LocalStorage. Setting Err makes every call fail.
type Storage struct {
	mu    sync.Mutex
	Items map[string]string
	Err   error
}

// NewStorage returns a Storage seeded with items.
func NewStorage(items map[string]string) *Storage {
	s := &Storage{Items: make(map[string]string, len(items))}
	for k, v := range items {
		s.Items[k] = v
	}
	return s
}

func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", false, s.Err
	}
	v, ok := s.Items[key]
	return v, ok, nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.Items == nil {
		s.Items = make(map[string]string)
	}
	s.Items[key] = value
	return nil
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.Items, key)
	return nil
}

// Snapshot returns a copy of the stored items.
func (s *Storage) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.Items))
	for k, v := range s.Items {
		out[k] = v
	}
	return out
}
