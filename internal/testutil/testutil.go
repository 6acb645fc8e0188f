// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/packforge/packforge/pkg/key"
	"github.com/packforge/packforge/pkg/pack"
	"github.com/packforge/packforge/pkg/resource"
	"github.com/packforge/packforge/pkg/serialize"
)

// FixtureFormat is the pack format fixtures are written with.
const FixtureFormat = 46

// TexturePack returns a pack holding one texture per entry of textures,
// keyed by path in the minecraft namespace.
func TexturePack(textures map[string]string) *pack.Pack {
	p := pack.New()
	for path, data := range textures {
		p.Put(resource.NewTexture(key.MustNew(key.DefaultNamespace, path), []byte(data)))
	}
	return p
}

// MustWriteDir writes p as a directory pack.
func MustWriteDir(t testing.TB, p *pack.Pack, dir string) {
	t.Helper()
	if err := serialize.WriteDir(p, dir, FixtureFormat, false, serialize.WriteOptions{}); err != nil {
		t.Fatalf("failed to write pack to %s: %v", dir, err)
	}
}

// MustWriteArchive writes p as a zip archive.
func MustWriteArchive(t testing.TB, p *pack.Pack, path string) {
	t.Helper()
	if _, err := serialize.WriteArchive(p, path, FixtureFormat, serialize.WriteOptions{}); err != nil {
		t.Fatalf("failed to write archive %s: %v", path, err)
	}
}

// MustReadPack reads a directory or archive pack with default options.
func MustReadPack(t testing.TB, path string) *serialize.Result {
	t.Helper()
	result, err := serialize.ReadPath(context.Background(), path, serialize.ReadOptions{})
	if err != nil {
		t.Fatalf("failed to read pack %s: %v", path, err)
	}
	return result
}

// MustTexture returns the data of the texture at path in the minecraft
// namespace of c.
func MustTexture(t testing.TB, c *pack.Container, path string) string {
	t.Helper()
	tex, ok := pack.Lookup[resource.Texture](c, key.MustNew(key.DefaultNamespace, path))
	if !ok {
		t.Fatalf("texture %s missing", path)
	}
	return string(tex.Data())
}

// MustWriteFile writes data to path, creating parent directories.
func MustWriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustMkdirAll creates a directory along with any necessary parents.
func MustMkdirAll(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}
