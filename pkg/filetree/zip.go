// SPDX-License-Identifier: MPL-2.0

package filetree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

type (
	// ZipStore is a store backed by a single zip archive. A ZipStore is
	// opened either for writing, in which case entries are appended to the
	// archive stream, or for reading.
	ZipStore struct {
		// write mode
		zw    *zip.Writer
		names map[string]struct{}
		// read mode
		zr    *zip.Reader
		index map[string]*zip.File

		method uint16
		owned  io.Closer
		closed bool
	}

	// ZipOption configures an archive opened for writing.
	ZipOption func(*zipOptions)

	zipOptions struct {
		method uint16
		level  int
	}

	zipEntryWriter struct {
		w      io.Writer
		closed bool
	}
)

// WithStore writes entries uncompressed.
func WithStore() ZipOption {
	return func(o *zipOptions) { o.method = zip.Store }
}

// WithCompressionLevel sets the deflate level, from flate.HuffmanOnly to
// flate.BestCompression.
func WithCompressionLevel(level int) ZipOption {
	return func(o *zipOptions) {
		o.method = zip.Deflate
		o.level = level
	}
}

// NewZipWriter starts an archive on w. Entries carry no timestamps, so equal
// content always produces equal archive bytes. Closing the store finalizes
// the archive but does not close w.
func NewZipWriter(w io.Writer, opts ...ZipOption) *ZipStore {
	o := zipOptions{method: zip.Deflate, level: flate.DefaultCompression}
	for _, opt := range opts {
		opt(&o)
	}

	zw := zip.NewWriter(w)
	if o.method == zip.Deflate {
		level := o.level
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, level)
		})
	}
	return &ZipStore{zw: zw, names: make(map[string]struct{}), method: o.method}
}

// CreateZip creates the archive file at path, replacing an existing one.
func CreateZip(path string, opts ...ZipOption) (*ZipStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	s := NewZipWriter(f, opts...)
	s.owned = f
	return s, nil
}

// NewZipReader opens an archive for reading.
func NewZipReader(r io.ReaderAt, size int64) (*ZipStore, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip archive: %w", err)
	}
	index := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if clean, err := CleanPath(f.Name); err == nil {
			index[clean] = f
		}
	}
	return &ZipStore{zr: zr, index: index}, nil
}

// ReadZip buffers a non-seekable stream and opens it as an archive.
func ReadZip(r io.Reader) (*ZipStore, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to buffer zip stream: %w", err)
	}
	return NewZipReader(bytes.NewReader(data), int64(len(data)))
}

// OpenZip opens the archive file at path for reading.
func OpenZip(path string) (*ZipStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to stat %s: %w", path, err), f.Close())
	}
	s, err := NewZipReader(f, info.Size())
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", path, err), f.Close())
	}
	s.owned = f
	return s, nil
}

func (s *ZipStore) writing() bool { return s.zw != nil }

// Exists implements Store. In write mode it reports whether the entry was
// already written.
func (s *ZipStore) Exists(p string) bool {
	clean, err := CleanPath(p)
	if err != nil || s.closed {
		return false
	}
	if s.writing() {
		_, ok := s.names[clean]
		return ok
	}
	_, ok := s.index[clean]
	return ok
}

// Create implements Store. The returned writer stays valid until the next
// call to Create, WriteFile or Close.
func (s *ZipStore) Create(p string) (io.WriteCloser, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if !s.writing() {
		return nil, ErrReadOnly
	}
	clean, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	if _, dup := s.names[clean]; dup {
		return nil, fmt.Errorf("%s: %w", clean, ErrExists)
	}

	w, err := s.zw.CreateHeader(&zip.FileHeader{Name: clean, Method: s.method})
	if err != nil {
		return nil, fmt.Errorf("failed to add %s to archive: %w", clean, err)
	}
	s.names[clean] = struct{}{}
	return &zipEntryWriter{w: w}, nil
}

// WriteFile implements Store.
func (s *ZipStore) WriteFile(p string, data []byte) error {
	w, err := s.Create(p)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return w.Close()
}

// ReadFile implements Store.
func (s *ZipStore) ReadFile(p string) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.writing() {
		return nil, ErrWriteOnly
	}
	clean, err := CleanPath(p)
	if err != nil {
		return nil, err
	}
	f, ok := s.index[clean]
	if !ok {
		return nil, fmt.Errorf("%s: %w", clean, fs.ErrNotExist)
	}
	return readZipFile(f)
}

func readZipFile(f *zip.File) (data []byte, err error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return data, nil
}

// Entries implements Store. Files are yielded in archive order; folder
// entries are skipped. An entry whose name escapes the archive root stops
// the iteration with an InvalidPathError.
func (s *ZipStore) Entries() iter.Seq2[Entry, error] {
	if s.closed {
		return errorSeq(ErrClosed)
	}
	if s.writing() {
		return errorSeq(ErrWriteOnly)
	}
	return func(yield func(Entry, error) bool) {
		for _, f := range s.zr.File {
			if strings.HasSuffix(f.Name, "/") {
				continue
			}
			clean, err := CleanPath(f.Name)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			data, err := readZipFile(f)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(Entry{Path: clean, Data: data}, nil) {
				return
			}
		}
	}
}

// Close implements Store. In write mode it writes the central directory.
// An owned file is closed even when finalizing the archive fails.
func (s *ZipStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.writing() {
		err = s.zw.Close()
	}
	if s.owned != nil {
		err = errors.Join(err, s.owned.Close())
	}
	return err
}

func (w *zipEntryWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	return w.w.Write(p)
}

// Close ends the entry. Its compressed data is flushed by the next Create
// or by closing the store.
func (w *zipEntryWriter) Close() error {
	w.closed = true
	return nil
}
