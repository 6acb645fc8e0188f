// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/packforge/packforge/pkg/resource"
)

func TestFixtures_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := TexturePack(map[string]string{"block/stone": "stone", "block/dirt": "dirt"})

	MustWriteDir(t, p, filepath.Join(dir, "pack"))
	MustWriteArchive(t, p, filepath.Join(dir, "nested", "pack.zip"))

	for _, path := range []string{filepath.Join(dir, "pack"), filepath.Join(dir, "nested", "pack.zip")} {
		read := MustReadPack(t, path).Pack
		if n := read.Len(resource.KindTexture); n != 2 {
			t.Errorf("%s: %d textures, want 2", path, n)
		}
		if got := MustTexture(t, read.Root(), "block/dirt"); got != "dirt" {
			t.Errorf("%s: dirt = %q", path, got)
		}
	}
}
