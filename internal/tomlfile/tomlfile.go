// Package tomlfile keeps local storage items in a TOML document on disk.
package tomlfile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"photo-albums/internal"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

var _ internal.LocalStorage = (*Store)(nil)

// DefaultPath is used when no path is configured.
const DefaultPath = "~/.config/photo-albums/session.toml"

type document struct {
	Items map[string]string `toml:"items"`
}

// Store is a LocalStorage kept in a single TOML file. Every write rewrites
// the file; concurrent use within one process is safe.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a Store for path. The file is created on the first write.
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolve storage path")
	}
	return &Store{path: resolved}, nil
}

// Path is the resolved file location.
func (s *Store) Path() string { return s.path }

func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Items[key]
	return v, ok, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Items[key] = value
	return s.save(doc)
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Items[key]; !ok {
		return nil
	}
	delete(doc.Items, key)
	return s.save(doc)
}

// Keys lists the stored keys in lexical order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc.Items))
	for k := range doc.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// load reads the document. A missing file is an empty document.
func (s *Store) load() (document, error) {
	doc := document{Items: map[string]string{}}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, errors.Wrap(err, "read storage file")
	}
	if err := toml.Unmarshal(b, &doc); err != nil {
		return doc, errors.Wrapf(err, "parse storage file %s", s.path)
	}
	if doc.Items == nil {
		doc.Items = map[string]string{}
	}
	return doc, nil
}

// save replaces the file through a rename so readers never see a partial
// document.
func (s *Store) save(doc document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create storage dir")
	}
	b, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshal storage file")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.toml")
	if err != nil {
		return errors.Wrap(err, "create temp storage file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write storage file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close storage file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replace storage file")
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
