// SPDX-License-Identifier: MPL-2.0

package filetree

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

type (
	// DirStore is a store backed by an operating system directory.
	DirStore struct {
		root    string
		closed  bool
		created map[string]struct{}
	}

	// DirOption configures OpenDir.
	DirOption func(*dirOptions)

	dirOptions struct {
		clear bool
	}
)

// WithClear removes everything below the root before the store is used.
func WithClear() DirOption {
	return func(o *dirOptions) { o.clear = true }
}

// OpenDir opens root as a store, creating it when missing.
func OpenDir(root string, opts ...DirOption) (*DirStore, error) {
	var o dirOptions
	for _, opt := range opts {
		opt(&o)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	if o.clear {
		if err := os.RemoveAll(abs); err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", abs, err)
		}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", abs, err)
	}
	return &DirStore{root: abs, created: make(map[string]struct{})}, nil
}

// Root returns the absolute directory the store is rooted at.
func (s *DirStore) Root() string { return s.root }

func (s *DirStore) resolve(p string) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	clean, err := CleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Exists implements Store.
func (s *DirStore) Exists(p string) bool {
	full, err := s.resolve(p)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// Create implements Store. Files present before the store was opened are
// replaced, but a path created through the store cannot be created again.
func (s *DirStore) Create(p string) (io.WriteCloser, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	if _, dup := s.created[full]; dup {
		return nil, fmt.Errorf("%s: %w", p, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", p, err)
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", p, err)
	}
	s.created[full] = struct{}{}
	return f, nil
}

// WriteFile implements Store.
func (s *DirStore) WriteFile(p string, data []byte) (err error) {
	w, err := s.Create(p)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", p, closeErr)
		}
	}()

	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// ReadFile implements Store.
func (s *DirStore) ReadFile(p string) ([]byte, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// Entries implements Store. Files are visited in lexical order, folder by
// folder.
func (s *DirStore) Entries() iter.Seq2[Entry, error] {
	if s.closed {
		return errorSeq(ErrClosed)
	}
	return func(yield func(Entry, error) bool) {
		stopped := errors.New("stopped")
		err := filepath.WalkDir(s.root, func(full string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(s.root, full)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(full)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", rel, err)
			}
			if !yield(Entry{Path: filepath.ToSlash(rel), Data: data}, nil) {
				return stopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, stopped) {
			yield(Entry{}, err)
		}
	}
}

// Close implements Store. Directory writes are unbuffered, so closing only
// marks the store unusable.
func (s *DirStore) Close() error {
	s.closed = true
	return nil
}
