// SPDX-License-Identifier: MPL-2.0

// Package serialize reads and writes resource packs through a filetree.Store.
//
// The folder and extension of every resource depend on the target pack
// format, resolved through the category registry. Writing is deterministic:
// the same pack always produces the same bytes, so archive hashes are
// stable across builds.
package serialize

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/packforge/packforge/pkg/filetree"
	"github.com/packforge/packforge/pkg/pack"

	"github.com/opencontainers/go-digest"
)

// Built is a pack archive held in memory.
type Built struct {
	// Data is the zip archive.
	Data []byte
	// SHA1 is the lowercase hex SHA-1 of Data, the hash game clients use to
	// verify and cache downloaded packs.
	SHA1 string
	// Digest is the SHA-256 content digest of Data.
	Digest digest.Digest
}

// Build writes p into an in-memory zip archive.
func Build(p *pack.Pack, format int, opts WriteOptions) (*Built, error) {
	var buf bytes.Buffer
	store := filetree.NewZipWriter(&buf, opts.ZipOptions...)
	if err := NewWriter(opts).Write(p, store, format); err != nil {
		return nil, errors.Join(err, store.Close())
	}
	if err := store.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	data := buf.Bytes()
	sum := sha1.Sum(data)
	return &Built{
		Data:   data,
		SHA1:   hex.EncodeToString(sum[:]),
		Digest: digest.FromBytes(data),
	}, nil
}

// WriteArchive builds p in memory, writes the archive to path, and returns
// it along with its hashes.
func WriteArchive(p *pack.Pack, path string, format int, opts WriteOptions) (*Built, error) {
	built, err := Build(p, format, opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, built.Data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return built, nil
}

// WriteZipFile streams p into a zip archive at path without holding the
// archive in memory. A partially written archive is removed when writing
// fails.
func WriteZipFile(p *pack.Pack, path string, format int, opts WriteOptions) (err error) {
	store, err := filetree.CreateZip(path, opts.ZipOptions...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return NewWriter(opts).Write(p, store, format)
}

// WriteDir writes p into the directory dir. When clearDir is set, the previous
// content of dir is removed first.
func WriteDir(p *pack.Pack, dir string, format int, clearDir bool, opts WriteOptions) (err error) {
	var dirOpts []filetree.DirOption
	if clearDir {
		dirOpts = append(dirOpts, filetree.WithClear())
	}
	store, err := filetree.OpenDir(dir, dirOpts...)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, store.Close()) }()

	return NewWriter(opts).Write(p, store, format)
}

// Open opens the pack at path for reading: a directory or a zip archive.
func Open(path string) (filetree.Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pack %s: %w", path, err)
	}
	if info.IsDir() {
		return filetree.OpenDir(path)
	}
	return filetree.OpenZip(path)
}

// ReadPath reads the pack at path, a directory or a zip archive.
func ReadPath(ctx context.Context, path string, opts ReadOptions) (result *Result, err error) {
	store, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return NewReader(opts).Read(ctx, store)
}
