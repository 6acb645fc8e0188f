// SPDX-License-Identifier: MPL-2.0

// Package filetree abstracts the hierarchical byte store a pack is written
// to and read from.
//
// Paths are slash-separated and relative to the store root on every
// platform. Stores are single-writer: the write path of a store must not be
// used from several goroutines at once. Every store must be closed; Close
// flushes pending writes (for archives, the central directory) and is safe
// to call more than once.
package filetree

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"path"
	"strings"
)

var (
	// ErrInvalidPath is the sentinel error wrapped by InvalidPathError.
	ErrInvalidPath = errors.New("invalid store path")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrReadOnly is returned by write operations on a store opened for reading.
	ErrReadOnly = errors.New("store is read-only")

	// ErrWriteOnly is returned by read operations on a store opened for writing.
	ErrWriteOnly = errors.New("store is write-only")

	// ErrExists is returned when a store is asked to write a path twice.
	ErrExists = errors.New("entry already exists")
)

type (
	// Store is a readable or writable tree of byte blobs.
	Store interface {
		// Exists reports whether a file is stored at p.
		Exists(p string) bool
		// Create opens p for writing, creating parent folders as needed.
		// The data is committed when the returned writer is closed.
		Create(p string) (io.WriteCloser, error)
		// WriteFile stores data at p.
		WriteFile(p string, data []byte) error
		// ReadFile returns the content of p. A missing file yields an error
		// matching fs.ErrNotExist.
		ReadFile(p string) ([]byte, error)
		// Entries yields every file once. The sequence is lazy and cannot be
		// restarted; iteration stops after the first error.
		Entries() iter.Seq2[Entry, error]
		// Close releases the store. It is idempotent.
		Close() error
	}

	// Entry is one file of a store.
	Entry struct {
		Path string
		Data []byte
	}

	// InvalidPathError is returned when a path is absolute, empty, or leaves
	// the store root.
	InvalidPathError struct {
		Path string
	}
)

// CleanPath normalizes a store path and rejects paths that are empty,
// absolute, or escape the root through "..".
func CleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.ContainsRune(p, '\\') {
		return "", &InvalidPathError{Path: p}
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &InvalidPathError{Path: p}
	}
	return clean, nil
}

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid store path %q", e.Path)
}

// Unwrap returns ErrInvalidPath for errors.Is() compatibility.
func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }

// errorSeq is a sequence that yields a single error.
func errorSeq(err error) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		yield(Entry{}, err)
	}
}

// bufferWriter collects bytes and hands them to commit on Close.
type bufferWriter struct {
	buf    []byte
	commit func([]byte) error
	closed bool
}

func (w *bufferWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *bufferWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.commit(w.buf)
}
