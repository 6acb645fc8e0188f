// SPDX-License-Identifier: MPL-2.0

package serialize

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/packforge/packforge/pkg/category"
	"github.com/packforge/packforge/pkg/filetree"
	"github.com/packforge/packforge/pkg/key"
	"github.com/packforge/packforge/pkg/pack"
	"github.com/packforge/packforge/pkg/resource"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

type (
	// Reader deserializes packs.
	Reader struct {
		opts   ReadOptions
		logger *log.Logger
	}

	// Result is the outcome of a successful read.
	Result struct {
		Pack *pack.Pack
		// Format is the layout format paths were classified with.
		Format int
		// Skipped lists the entries dropped under the Skip policy. Their
		// bytes are kept in the pack as unrecognized files.
		Skipped []*CodecError
	}

	// entry is a classified store entry waiting to be decoded.
	entry struct {
		path   string
		rel    string
		target *pack.Container
		cat    *category.Category
		key    key.Key
		data   []byte
	}

	readSession struct {
		*Reader
		result *Result
	}
)

// NewReader creates a Reader.
func NewReader(opts ReadOptions) *Reader {
	return &Reader{opts: opts, logger: opts.logger()}
}

// Read loads a pack from store.
//
// pack.mcmeta is read first to learn the declared overlays and the layout
// format. Every other entry is then classified: the first path segment
// selects an overlay when it names one, "assets/<namespace>/" paths are
// matched against the category registry, and anything else is kept
// verbatim. Resources are decoded concurrently and inserted in path order.
//
// Store failures always abort the read. Decode failures follow the
// configured ErrorPolicy. Read does not close store.
func (r *Reader) Read(ctx context.Context, store filetree.Store) (*Result, error) {
	s := &readSession{Reader: r, result: &Result{Pack: pack.New()}}

	format, err := s.descriptor(store)
	if err != nil {
		return nil, err
	}
	s.result.Format = format

	var resources, metas []entry
	for e, err := range store.Entries() {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch e.Path {
		case DescriptorFile:
			continue
		case IconFile:
			s.result.Pack.SetIcon(e.Data)
			continue
		}

		target, rel := s.locate(e.Path)
		if cat, k, ok := classifyMeta(rel, format); ok {
			metas = append(metas, entry{path: e.Path, rel: rel, target: target, cat: cat, key: k, data: e.Data})
			continue
		}
		if cat, k, ok := classify(rel, format); ok {
			resources = append(resources, entry{path: e.Path, rel: rel, target: target, cat: cat, key: k, data: e.Data})
			continue
		}
		if err := target.PutFile(rel, e.Data); err != nil {
			return nil, err
		}
	}

	if err := s.decode(ctx, resources); err != nil {
		return nil, err
	}
	if err := s.attachMeta(metas); err != nil {
		return nil, err
	}

	r.logger.Debug("pack read",
		"format", format,
		"resources", len(resources),
		"overlays", len(s.result.Pack.Overlays()),
		"skipped", len(s.result.Skipped))
	return s.result, nil
}

// descriptor reads pack.mcmeta, restores the declared overlays, and returns
// the layout format.
func (s *readSession) descriptor(store filetree.Store) (int, error) {
	format := s.opts.Format

	data, err := store.ReadFile(DescriptorFile)
	if errors.Is(err, fs.ErrNotExist) {
		return layoutFormat(format, nil), nil
	}
	if err != nil {
		return 0, err
	}

	d, overlays, err := decodeDescriptor(data, s.opts.Lenient)
	if err == nil {
		err = s.result.Pack.SetDescriptor(d)
	}
	if err != nil {
		if err := s.fail(DescriptorFile, descriptorCategory, err); err != nil {
			return 0, err
		}
		return layoutFormat(format, nil), s.result.Pack.PutFile(DescriptorFile, data)
	}

	for _, o := range overlays {
		if _, err := s.result.Pack.AddOverlay(o.Directory, o.Formats, nil); err != nil {
			if err := s.fail(DescriptorFile, descriptorCategory, err); err != nil {
				return 0, err
			}
		}
	}
	return layoutFormat(format, d), nil
}

func layoutFormat(requested int, d *pack.Descriptor) int {
	switch {
	case requested != 0:
		return requested
	case d != nil:
		return d.Format
	default:
		return category.UnknownFormat
	}
}

// fail applies the error policy. It returns the error to abort with, or nil
// after recording a skipped entry.
func (s *readSession) fail(path, categoryName string, err error) error {
	codecErr := &CodecError{Path: path, Category: categoryName, Err: err}
	if s.opts.Policy == Abort {
		return codecErr
	}
	s.logger.Warn("skipping entry", "path", path, "category", categoryName, "err", err)
	s.result.Skipped = append(s.result.Skipped, codecErr)
	return nil
}

// locate returns the container a path belongs to and the path relative to
// that container.
func (s *readSession) locate(path string) (*pack.Container, string) {
	dir, rest, found := strings.Cut(path, "/")
	if !found {
		return s.result.Pack.Root(), path
	}
	if o, ok := s.result.Pack.Overlay(dir); ok {
		return o.Container, rest
	}
	return s.result.Pack.Root(), path
}

// splitNamespace splits "assets/<namespace>/<rest>" paths.
func splitNamespace(rel string) (namespace, rest string, ok bool) {
	inAssets, found := strings.CutPrefix(rel, category.AssetsFolder+"/")
	if !found {
		return "", "", false
	}
	namespace, rest, found = strings.Cut(inAssets, "/")
	if !found || !key.ValidNamespace(namespace) {
		return "", "", false
	}
	return namespace, rest, true
}

func classify(rel string, format int) (*category.Category, key.Key, bool) {
	namespace, rest, ok := splitNamespace(rel)
	if !ok {
		return nil, key.Key{}, false
	}
	cat, keyPath, ok := category.Classify(rest, format)
	if !ok {
		return nil, key.Key{}, false
	}
	k, err := key.New(namespace, keyPath)
	if err != nil {
		return nil, key.Key{}, false
	}
	return cat, k, true
}

func classifyMeta(rel string, format int) (*category.Category, key.Key, bool) {
	namespace, rest, ok := splitNamespace(rel)
	if !ok {
		return nil, key.Key{}, false
	}
	cat, keyPath, ok := category.ClassifyMeta(rest, format)
	if !ok {
		return nil, key.Key{}, false
	}
	k, err := key.New(namespace, keyPath)
	if err != nil {
		return nil, key.Key{}, false
	}
	return cat, k, true
}

// decode parses resources on a bounded pool, then inserts them one by one
// in path order. Under Abort the failure reported is the one with the
// smallest path, whatever order the workers finished in.
func (s *readSession) decode(ctx context.Context, entries []entry) error {
	slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.path, b.path) })

	decoded := make([]resource.Resource, len(entries))
	failures := make([]error, len(entries))
	opts := category.DecodeOptions{Lenient: s.opts.Lenient}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.workers())
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decoded[i], failures[i] = e.cat.Decode(e.data, e.key, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, e := range entries {
		if failures[i] != nil {
			if err := s.fail(e.path, e.cat.Name(), failures[i]); err != nil {
				return err
			}
			if err := e.target.PutFile(e.rel, e.data); err != nil {
				return err
			}
			continue
		}
		e.target.Put(decoded[i])
	}
	return nil
}

// attachMeta pairs sidecars with the resources they describe. A sidecar
// without its resource is kept as an unrecognized file.
func (s *readSession) attachMeta(metas []entry) error {
	slices.SortFunc(metas, func(a, b entry) int { return cmp.Compare(a.path, b.path) })
	opts := category.DecodeOptions{Lenient: s.opts.Lenient}

	for _, m := range metas {
		r, ok := m.target.Get(m.cat.Kind(), m.key)
		if !ok {
			if err := m.target.PutFile(m.rel, m.data); err != nil {
				return err
			}
			continue
		}
		withMeta, err := m.cat.AttachMeta(r, m.data, opts)
		if err != nil {
			if err := s.fail(m.path, m.cat.Name(), fmt.Errorf("sidecar: %w", err)); err != nil {
				return err
			}
			if err := m.target.PutFile(m.rel, m.data); err != nil {
				return err
			}
			continue
		}
		m.target.Put(withMeta)
	}
	return nil
}
