// SPDX-License-Identifier: MPL-2.0

package filetree

import (
	"fmt"
	"io"
	"io/fs"
	"iter"
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// MemStore is an in-memory store. Entries are yielded in lexical order and
// every path can be written once. Unlike the other stores it may be used
// from several goroutines.
type MemStore struct {
	mu     sync.Mutex
	files  map[string][]byte
	closed bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

// Exists implements Store.
func (s *MemStore) Exists(p string) bool {
	clean, err := CleanPath(p)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[clean]
	return ok
}

// Create implements Store.
func (s *MemStore) Create(p string) (io.WriteCloser, error) {
	clean, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if _, dup := s.files[clean]; dup {
		return nil, fmt.Errorf("%s: %w", clean, ErrExists)
	}
	return &bufferWriter{commit: func(data []byte) error { return s.put(clean, data) }}, nil
}

func (s *MemStore) put(p string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, dup := s.files[p]; dup {
		return fmt.Errorf("%s: %w", p, ErrExists)
	}
	s.files[p] = slices.Clone(data)
	return nil
}

// WriteFile implements Store.
func (s *MemStore) WriteFile(p string, data []byte) error {
	clean, err := CleanPath(p)
	if err != nil {
		return err
	}
	return s.put(clean, data)
}

// ReadFile implements Store.
func (s *MemStore) ReadFile(p string) ([]byte, error) {
	clean, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	data, ok := s.files[clean]
	if !ok {
		return nil, fmt.Errorf("%s: %w", clean, fs.ErrNotExist)
	}
	return slices.Clone(data), nil
}

// Paths returns every stored path in lexical order.
func (s *MemStore) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := maps.Keys(s.files)
	slices.Sort(paths)
	return paths
}

// Snapshot returns a copy of every stored file keyed by path.
func (s *MemStore) Snapshot() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.files))
	for p, data := range s.files {
		out[p] = slices.Clone(data)
	}
	return out
}

// Entries implements Store. The sequence reads a snapshot of the paths
// taken when iteration starts.
func (s *MemStore) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			yield(Entry{}, ErrClosed)
			return
		}
		for _, p := range s.Paths() {
			data, err := s.ReadFile(p)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(Entry{Path: p, Data: data}, nil) {
				return
			}
		}
	}
}

// Close implements Store.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
