// SPDX-License-Identifier: MPL-2.0

package serialize

import (
	"fmt"

	"github.com/packforge/packforge/pkg/category"
	"github.com/packforge/packforge/pkg/filetree"
	"github.com/packforge/packforge/pkg/pack"

	"github.com/charmbracelet/log"
)

type (
	// Writer serializes packs for a target format.
	Writer struct {
		logger *log.Logger
	}

	// writeSession tracks the paths written by one Write call.
	writeSession struct {
		store   filetree.Store
		format  int
		written map[string]struct{}
		logger  *log.Logger
	}
)

// NewWriter creates a Writer.
func NewWriter(opts WriteOptions) *Writer {
	return &Writer{logger: opts.logger()}
}

// Write stores p into store using the folder layout of format. A negative
// format selects the latest layout.
//
// pack.mcmeta is always written and its pack_format records the layout
// format, so a Reader with default options reads the folders back the way
// they were written. A pack without a descriptor gets one with an empty
// description. A supported range that excludes the layout format is
// widened to include it.
//
// Output is fully determined by the pack content: the icon and descriptor
// come first, then the root container with categories in registry order
// and keys sorted, then its unrecognized files sorted by path, then every
// overlay in pack order the same way under its directory. Every overlay is
// written regardless of format and declared in pack.mcmeta.
//
// Write does not close store.
func (w *Writer) Write(p *pack.Pack, store filetree.Store, format int) error {
	s := &writeSession{store: store, format: format, written: make(map[string]struct{}), logger: w.logger}

	if icon, ok := p.Icon(); ok {
		if err := s.put(IconFile, icon); err != nil {
			return err
		}
	}

	overlays := p.Overlays()
	d := layoutDescriptor(p.Descriptor(), format)
	if p.Descriptor() == nil {
		w.logger.Debug("pack has no descriptor, declaring one", "pack_format", d.Format)
	}
	data, err := encodeDescriptor(d, overlays)
	if err != nil {
		return &CodecError{Path: DescriptorFile, Category: descriptorCategory, Err: err}
	}
	if err := s.put(DescriptorFile, data); err != nil {
		return err
	}

	if err := s.container("", p.Root()); err != nil {
		return err
	}
	for _, o := range overlays {
		if err := s.container(o.Directory()+"/", o.Container); err != nil {
			return err
		}
	}

	w.logger.Debug("pack written", "format", format, "files", len(s.written), "overlays", len(overlays))
	return nil
}

func (s *writeSession) put(path string, data []byte) error {
	if _, dup := s.written[path]; dup {
		return &PathCollisionError{Path: path}
	}
	s.written[path] = struct{}{}
	if err := s.store.WriteFile(path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *writeSession) container(prefix string, c *pack.Container) error {
	for _, cat := range category.All() {
		for _, r := range c.List(cat.Kind()) {
			path := prefix + cat.Path(r.Key(), s.format)
			data, err := cat.Encode(r, s.format)
			if err != nil {
				return &CodecError{Path: path, Category: cat.Name(), Err: err}
			}
			if err := s.put(path, data); err != nil {
				return err
			}

			meta, ok, err := cat.EncodeMeta(r)
			if err != nil {
				return &CodecError{Path: path + category.MetaExtension, Category: cat.Name(), Err: err}
			}
			if ok {
				if err := s.put(prefix+cat.MetaPath(r.Key(), s.format), meta); err != nil {
					return err
				}
			}
		}
	}

	for _, path := range c.Files() {
		if prefix == "" && path == DescriptorFile {
			// An unreadable pack.mcmeta kept verbatim by a lenient read.
			s.logger.Warn("replacing unreadable pack.mcmeta with a generated descriptor")
			continue
		}
		data, _ := c.File(path)
		if err := s.put(prefix+path, data); err != nil {
			return err
		}
	}
	return nil
}

// declaredFormat is the pack_format recorded for a layout format.
func declaredFormat(format int) int {
	if format < 0 {
		return category.LatestFormat
	}
	return format
}

// layoutDescriptor returns a copy of d declaring the layout format. d may
// be nil.
func layoutDescriptor(d *pack.Descriptor, format int) *pack.Descriptor {
	out := d.Clone()
	if out == nil {
		out = &pack.Descriptor{}
	}
	out.Format = declaredFormat(format)
	if r := out.Supported; r != nil && !r.Contains(out.Format) {
		r.Min = min(r.Min, out.Format)
		r.Max = max(r.Max, out.Format)
	}
	return out
}
