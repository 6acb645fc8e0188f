// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/packforge/packforge/internal/config"
	"github.com/packforge/packforge/internal/testutil"
	"github.com/packforge/packforge/pkg/key"
	"github.com/packforge/packforge/pkg/pack"
	"github.com/packforge/packforge/pkg/resource"
)

type staticConfig struct {
	cfg *config.Config
	err error
}

func (s staticConfig) Load(context.Context, config.LoadOptions) (*config.Loaded, error) {
	if s.err != nil {
		return nil, s.err
	}
	cfg := s.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &config.Loaded{Config: cfg}, nil
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, provider config.Provider, args ...string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{Config: provider, Stdout: &stdout, Stderr: &stderr})
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

var stone = key.MustNew("minecraft", "block/stone")

// writePack writes a pack holding one stone texture into dir.
func writePack(t *testing.T, dir, texture string) {
	t.Helper()
	testutil.MustWriteDir(t, testutil.TexturePack(map[string]string{"block/stone": texture}), dir)
}

func stoneData(t *testing.T, path string) string {
	t.Helper()
	return testutil.MustTexture(t, testutil.MustReadPack(t, path).Pack.Root(), "block/stone")
}

func TestConvert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	writePack(t, in, "stone")

	archive := filepath.Join(dir, "out.zip")
	res := run(t, staticConfig{}, "convert", in, archive, "--format", "30")
	if res.err != nil {
		t.Fatalf("convert: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "sha1:") || !strings.Contains(res.stdout, "sha256:") {
		t.Errorf("archive hashes not reported:\n%s", res.stdout)
	}
	if got := stoneData(t, archive); got != "stone" {
		t.Errorf("stone = %q", got)
	}

	unpacked := filepath.Join(dir, "unpacked") + string(filepath.Separator)
	res = run(t, staticConfig{}, "convert", archive, unpacked)
	if res.err != nil {
		t.Fatalf("convert to directory: %v", res.err)
	}
	if got := stoneData(t, unpacked); got != "stone" {
		t.Errorf("unpacked stone = %q", got)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writePack(t, a, "one")
	writePack(t, b, "two")

	out := filepath.Join(dir, "merged.zip")
	res := run(t, staticConfig{}, "merge", a, b, "-o", out)
	var exitErr *ExitError
	if !errors.As(res.err, &exitErr) || exitErr.Code != exitConflict {
		t.Fatalf("err = %v, want exit code %d", res.err, exitConflict)
	}
	if !strings.Contains(res.stderr, "minecraft:block/stone") {
		t.Errorf("conflicting key not listed:\n%s", res.stderr)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("nothing should be written after a conflict")
	}

	res = run(t, staticConfig{}, "merge", a, b, "-o", out, "--strategy", "override")
	if res.err != nil {
		t.Fatalf("merge --strategy override: %v", res.err)
	}
	if got := stoneData(t, out); got != "two" {
		t.Errorf("stone = %q, want the later pack", got)
	}
}

func TestMerge_ConfiguredDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a, b := filepath.Join(dir, "a"), filepath.Join(dir, "b")
	writePack(t, a, "one")
	writePack(t, b, "two")

	cfg := config.DefaultConfig()
	cfg.Merge.Strategy = "merge-keep-first-on-error"
	res := run(t, staticConfig{cfg: cfg}, "merge", a, b, "-o", filepath.Join(dir, "merged"))
	if res.err != nil {
		t.Fatalf("merge: %v", res.err)
	}
	// output.archive appends the extension.
	if got := stoneData(t, filepath.Join(dir, "merged.zip")); got != "one" {
		t.Errorf("stone = %q, want the earlier pack", got)
	}
}

func TestMerge_BadStrategy(t *testing.T) {
	t.Parallel()

	res := run(t, staticConfig{}, "merge", "a", "b", "-o", "out", "--strategy", "union")
	if res.err == nil || !strings.Contains(res.err.Error(), "union") {
		t.Errorf("err = %v, want an invalid strategy error", res.err)
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := pack.New()
	p.Put(resource.NewTexture(stone, []byte("stone")))
	if err := p.PutFile("credits.txt", []byte("me")); err != nil {
		t.Fatal(err)
	}
	legacy := pack.NewContainer()
	legacy.Put(resource.NewTexture(stone, []byte("old")))
	if _, err := p.AddOverlay("legacy", pack.FormatRange{Min: 18, Max: 33}, legacy); err != nil {
		t.Fatal(err)
	}
	d, err := pack.NewDescriptor(46, "Inspected | pack")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetDescriptor(d); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "p.zip")
	testutil.MustWriteArchive(t, p, path)

	res := run(t, staticConfig{}, "inspect", path, "--markdown", "--keys")
	if res.err != nil {
		t.Fatalf("inspect: %v", res.err)
	}
	for _, want := range []string{
		"| Declared format | 46 |",
		`| Description | Inspected \| pack |`,
		"| texture | 1 | 1 |",
		"- `legacy`: formats 18-33",
		"- `credits.txt`",
		"### legacy",
		"- `minecraft:block/stone`",
	} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("report does not contain %q:\n%s", want, res.stdout)
		}
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Reader.Workers = 3
	res := run(t, staticConfig{cfg: cfg}, "config", "show", "--format", "toml")
	if res.err != nil {
		t.Fatalf("config show: %v", res.err)
	}
	if !strings.Contains(res.stdout, "workers = 3") || !strings.Contains(res.stderr, "built-in defaults") {
		t.Errorf("stdout:\n%s\nstderr:\n%s", res.stdout, res.stderr)
	}

	res = run(t, staticConfig{cfg: cfg}, "config", "show", "--defaults")
	if res.err != nil || !strings.Contains(res.stdout, "target_format: -1") {
		t.Errorf("config show --defaults = %v\n%s", res.err, res.stdout)
	}

	if res = run(t, staticConfig{}, "config", "show", "--format", "yaml"); res.err == nil {
		t.Error("unknown format should fail")
	}
}

func TestConfigInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res := run(t, staticConfig{}, "config", "init", "--dir", dir)
	if res.err != nil {
		t.Fatalf("config init: %v", res.err)
	}
	path := filepath.Join(dir, config.ConfigFileName)
	if !strings.Contains(res.stdout, path) {
		t.Errorf("stdout = %q", res.stdout)
	}

	// The generated file works with --config.
	in := filepath.Join(dir, "in")
	writePack(t, in, "stone")
	res = run(t, config.NewProvider(), "--config", path, "convert", in, filepath.Join(dir, "out.zip"))
	if res.err != nil {
		t.Fatalf("convert with --config: %v", res.err)
	}
}

func TestConfigLoadFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	res := run(t, staticConfig{err: boom}, "convert", "in", "out")
	if !errors.Is(res.err, boom) {
		t.Errorf("err = %v, want the load error", res.err)
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePack(t, filepath.Join(dir, "base"), "stone")
	manifestPath := filepath.Join(dir, "pack.cue")
	testutil.MustWriteFile(t, manifestPath, []byte(`
description: "Built from the CLI"
sources: [{path: "base"}]
output: {path: "dist/", archive: false}
`))

	res := run(t, staticConfig{}, "build", manifestPath)
	if res.err != nil {
		t.Fatalf("build: %v\n%s", res.err, res.stderr)
	}
	if d := testutil.MustReadPack(t, filepath.Join(dir, "dist")).Pack.Descriptor(); d == nil || d.Description != "Built from the CLI" {
		t.Errorf("descriptor = %+v", d)
	}
	if got := stoneData(t, filepath.Join(dir, "dist")); got != "stone" {
		t.Errorf("stone = %q", got)
	}
}

func TestBuild_MissingManifest(t *testing.T) {
	t.Parallel()

	res := run(t, staticConfig{}, "build", filepath.Join(t.TempDir(), "pack.cue"))
	if !errors.Is(res.err, os.ErrNotExist) {
		t.Errorf("err = %v, want a not-exist error", res.err)
	}
}
