// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/packforge/packforge/pkg/category"
	"github.com/packforge/packforge/pkg/merge"
	"github.com/packforge/packforge/pkg/pack"
	"github.com/packforge/packforge/pkg/serialize"

	"github.com/charmbracelet/log"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Read applies to every source. Its Logger defaults to Logger.
	Read serialize.ReadOptions
	// Logger receives progress. Nil discards it.
	Logger *log.Logger
}

// Build reads every source and assembles the pack the manifest describes.
// Sources are merged in order, then every overlay set is merged from its
// own sources and folded in as an overlay, then the descriptor fields and
// icon are applied.
func Build(ctx context.Context, m *Manifest, opts BuildOptions) (*pack.Pack, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Read.Logger == nil {
		opts.Read.Logger = logger
	}
	strategy := m.MergeStrategy()
	mergeOpts := []merge.Option{merge.WithLogger(logger)}

	result, err := mergeSources(ctx, m.Sources, strategy, opts.Read, mergeOpts)
	if err != nil {
		return nil, err
	}

	for _, set := range m.Overlays {
		merged, err := mergeSources(ctx, set.Sources, strategy, opts.Read, mergeOpts)
		if err != nil {
			return nil, fmt.Errorf("overlay %s: %w", set.Directory, err)
		}
		layer := pack.New()
		if _, err := layer.AddOverlay(set.Directory, set.Formats.formatRange(), merged.Root()); err != nil {
			return nil, fmt.Errorf("overlay %s: %w", set.Directory, err)
		}
		if result, err = merge.Packs(result, layer, strategy, mergeOpts...); err != nil {
			return nil, fmt.Errorf("overlay %s: %w", set.Directory, err)
		}
		logger.Debug("overlay merged", "directory", set.Directory, "formats", set.Formats.formatRange())
	}

	if err := m.applyDescriptor(result); err != nil {
		return nil, err
	}
	if m.Icon != "" {
		icon, err := os.ReadFile(m.Icon)
		if err != nil {
			return nil, fmt.Errorf("failed to read icon: %w", err)
		}
		result.SetIcon(icon)
	}
	return result, nil
}

// mergeSources reads sources and folds them left to right.
func mergeSources(ctx context.Context, sources []Source, strategy merge.Strategy,
	readOpts serialize.ReadOptions, mergeOpts []merge.Option,
) (*pack.Pack, error) {
	var result *pack.Pack
	for _, src := range sources {
		read, err := serialize.ReadPath(ctx, src.Path, readOpts)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Path, err)
		}
		readOpts.Logger.Debug("source read", "path", src.Path, "resources", read.Pack.Size(), "skipped", len(read.Skipped))
		if result == nil {
			result = read.Pack
			continue
		}
		if result, err = merge.Packs(result, read.Pack, strategy, mergeOpts...); err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Path, err)
		}
	}
	return result, nil
}

// applyDescriptor overrides the merged descriptor with the manifest's
// fields, keeping the sections the sources declared.
func (m *Manifest) applyDescriptor(p *pack.Pack) error {
	if m.PackFormat == nil && m.Description == "" && m.Supported == nil {
		return nil
	}

	d := p.Descriptor().Clone()
	if d == nil {
		d = &pack.Descriptor{Format: m.Output.Format}
		if d.Format < 0 {
			d.Format = category.LatestFormat
		}
	}
	if m.PackFormat != nil {
		d.Format = *m.PackFormat
	}
	if m.Description != "" {
		d.Description = m.Description
		d.DescriptionJSON = nil
	}
	if m.Supported != nil {
		r := m.Supported.formatRange()
		d.Supported = &r
	}
	if err := p.SetDescriptor(d); err != nil {
		return fmt.Errorf("descriptor: %w", err)
	}
	return nil
}

// Write stores p at the manifest's output path. For archives it returns
// the written archive and its hashes; for directories it returns nil.
func (m *Manifest) Write(p *pack.Pack, clearDir bool, opts serialize.WriteOptions) (*serialize.Built, error) {
	if m.Output.IsArchive() {
		return serialize.WriteArchive(p, m.Output.Path, m.Output.Format, opts)
	}
	return nil, serialize.WriteDir(p, m.Output.Path, m.Output.Format, clearDir, opts)
}
