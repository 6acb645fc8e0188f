// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/packforge/packforge/internal/cueutil"
	"github.com/packforge/packforge/pkg/merge"
	"github.com/packforge/packforge/pkg/pack"
)

// FileName is the manifest looked up when none is named.
const FileName = "pack.cue"

//go:embed manifest_schema.cue
var schema []byte

// ErrInvalidManifest is the sentinel error wrapped by InvalidManifestError.
var ErrInvalidManifest = errors.New("invalid manifest")

type (
	// Manifest describes a pack build. Paths are absolute once loaded.
	Manifest struct {
		Description string       `json:"description,omitempty"`
		PackFormat  *int         `json:"pack_format,omitempty"`
		Supported   *Range       `json:"supported_formats,omitempty"`
		Icon        string       `json:"icon,omitempty"`
		Strategy    string       `json:"strategy"`
		Sources     []Source     `json:"sources"`
		Overlays    []OverlaySet `json:"overlays"`
		Output      Output       `json:"output"`
	}

	// Range is an inclusive format range.
	Range struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}

	// Source is a pack directory or archive.
	Source struct {
		Path string `json:"path"`
	}

	// OverlaySet is an overlay directory built from its own sources.
	OverlaySet struct {
		Directory string   `json:"directory"`
		Formats   Range    `json:"formats"`
		Sources   []Source `json:"sources"`
	}

	// Output is the build target.
	Output struct {
		Path    string `json:"path"`
		Format  int    `json:"format"`
		Archive *bool  `json:"archive,omitempty"`
	}

	// InvalidManifestError reports a manifest that passes the schema but
	// cannot be built. It wraps ErrInvalidManifest for errors.Is().
	InvalidManifestError struct {
		Path string
		Err  error
	}
)

// Load reads and validates the manifest at path. Relative paths inside it
// resolve against its directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path, filepath.Dir(abs))
}

// Parse validates manifest data. name is used in error messages and
// relative paths resolve against baseDir.
func Parse(data []byte, name, baseDir string) (*Manifest, error) {
	result, err := cueutil.ParseAndDecode[Manifest](schema, data, "#Manifest", cueutil.WithFilename(name))
	if err != nil {
		return nil, err
	}
	m := result.Value
	if err := m.validate(); err != nil {
		return nil, &InvalidManifestError{Path: name, Err: err}
	}
	m.resolve(baseDir)
	return m, nil
}

// validate checks what the schema does not: descriptor consistency and
// duplicate overlay directories.
func (m *Manifest) validate() error {
	if _, err := merge.ParseStrategy(m.Strategy); err != nil {
		return err
	}
	if m.Supported != nil && m.PackFormat != nil && !m.Supported.formatRange().Contains(*m.PackFormat) {
		return fmt.Errorf("pack_format %d is outside supported_formats %s", *m.PackFormat, m.Supported.formatRange())
	}
	seen := make(map[string]struct{}, len(m.Overlays))
	for i, o := range m.Overlays {
		if _, dup := seen[o.Directory]; dup {
			return fmt.Errorf("overlays[%d]: directory %q is declared twice", i, o.Directory)
		}
		seen[o.Directory] = struct{}{}
	}
	return nil
}

func (m *Manifest) resolve(baseDir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, filepath.FromSlash(p))
	}
	for i := range m.Sources {
		m.Sources[i].Path = abs(m.Sources[i].Path)
	}
	for i := range m.Overlays {
		for j := range m.Overlays[i].Sources {
			m.Overlays[i].Sources[j].Path = abs(m.Overlays[i].Sources[j].Path)
		}
	}
	m.Icon = abs(m.Icon)
	m.Output.Path = abs(m.Output.Path)
}

// MergeStrategy returns the parsed strategy.
func (m *Manifest) MergeStrategy() merge.Strategy {
	s, _ := merge.ParseStrategy(m.Strategy)
	return s
}

// Inputs lists every file and directory the build reads, the manifest
// itself excluded.
func (m *Manifest) Inputs() []string {
	var inputs []string
	for _, src := range m.Sources {
		inputs = append(inputs, src.Path)
	}
	for _, o := range m.Overlays {
		for _, src := range o.Sources {
			inputs = append(inputs, src.Path)
		}
	}
	if m.Icon != "" {
		inputs = append(inputs, m.Icon)
	}
	return inputs
}

// IsArchive reports whether the output is a zip archive.
func (o Output) IsArchive() bool {
	if o.Archive != nil {
		return *o.Archive
	}
	return strings.EqualFold(filepath.Ext(o.Path), ".zip")
}

func (r Range) formatRange() pack.FormatRange {
	return pack.FormatRange{Min: r.Min, Max: r.Max}
}

// Error implements the error interface.
func (e *InvalidManifestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *InvalidManifestError) Unwrap() error { return ErrInvalidManifest }
