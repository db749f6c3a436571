package store

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// shared is the process-wide handle registry behind Shared.
var shared = &registry{stores: make(map[string]*Store)}

type registry struct {
	mu     sync.Mutex
	stores map[string]*Store
	group  singleflight.Group
}

// Shared returns the Store for path, opening it on first use. Paths that
// normalize to the same file share one Store; opts only apply to the first
// open. Closing the returned Store removes it from the registry.
func Shared(path string, opts Options) (*Store, error) {
	return shared.get(path, opts)
}

func (r *registry) get(path string, opts Options) (*Store, error) {
	key := NormalizePath(path)

	r.mu.Lock()
	if s, ok := r.stores[key]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(key, func() (any, error) {
		r.mu.Lock()
		if s, ok := r.stores[key]; ok {
			r.mu.Unlock()
			return s, nil
		}
		r.mu.Unlock()

		s, err := Open(path, opts)
		if err != nil {
			return nil, err
		}
		s.key = key

		r.mu.Lock()
		r.stores[key] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

func (r *registry) forget(key string, s *Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stores[key] == s {
		delete(r.stores, key)
	}
}

// NormalizePath resolves path to an absolute, cleaned form. In-memory
// database names are returned unchanged.
func NormalizePath(path string) string {
	if path == ":memory:" || path == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
