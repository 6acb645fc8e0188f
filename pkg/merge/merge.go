// SPDX-License-Identifier: MPL-2.0

// Package merge combines resource containers and packs.
//
// For every category independently, keys present on one side only are
// carried over. Keys present on both sides are resolved by the strategy:
// Override always takes the other side. The two merge strategies use the
// category's structural combiner when it has one (fonts concatenate,
// model overrides union and sort) and otherwise either fail or keep the
// base side. Values that encode identically never collide.
//
// Inputs are never modified; every merge returns a new value.
package merge

import (
	"bytes"
	"io"
	"reflect"

	"github.com/packforge/packforge/pkg/category"
	"github.com/packforge/packforge/pkg/pack"
	"github.com/packforge/packforge/pkg/resource"

	"github.com/charmbracelet/log"
)

const (
	descriptorEntry = "descriptor"
	iconEntry       = "icon"
	fileEntry       = "file"
	overlayEntry    = "overlay"
)

type (
	// Option configures a merge.
	Option func(*merger)

	merger struct {
		strategy  Strategy
		logger    *log.Logger
		conflicts []Conflict
	}
)

// WithLogger logs every collision and its resolution at debug level.
func WithLogger(l *log.Logger) Option {
	return func(m *merger) { m.logger = l }
}

func newMerger(strategy Strategy, opts []Option) (*merger, error) {
	if _, ok := strategyNames[strategy]; !ok {
		return nil, &InvalidStrategyError{Value: strategy.String()}
	}
	m := &merger{strategy: strategy, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *merger) result() error {
	if len(m.conflicts) == 0 {
		return nil
	}
	return &ConflictError{Conflicts: m.conflicts}
}

// Containers merges other into base. Under FailOnError every conflict is
// collected and returned as one *ConflictError, with no partial result.
func Containers(base, other *pack.Container, strategy Strategy, opts ...Option) (*pack.Container, error) {
	m, err := newMerger(strategy, opts)
	if err != nil {
		return nil, err
	}
	out := m.containers("", base, other)
	if err := m.result(); err != nil {
		return nil, err
	}
	return out, nil
}

// Packs merges other into base: the root containers, overlays sharing a
// directory, the descriptor, and the icon. Overlays only one side has are
// carried over; base's overlays come first, in their order.
func Packs(base, other *pack.Pack, strategy Strategy, opts ...Option) (*pack.Pack, error) {
	m, err := newMerger(strategy, opts)
	if err != nil {
		return nil, err
	}

	out := pack.NewWithRoot(m.containers("", base.Root(), other.Root()))

	descriptor := base.Descriptor()
	if od := other.Descriptor(); od != nil {
		if descriptor == nil || m.collide("", descriptorEntry, "pack.mcmeta", reflect.DeepEqual(descriptor, od)) {
			descriptor = od
		}
	}
	if err := out.SetDescriptor(descriptor); err != nil {
		return nil, err
	}

	icon, hasIcon := base.Icon()
	if oi, ok := other.Icon(); ok {
		if !hasIcon || m.collide("", iconEntry, "pack.png", bytes.Equal(icon, oi)) {
			icon = oi
		}
	}
	out.SetIcon(icon)

	for _, bo := range base.Overlays() {
		oo, shared := other.Overlay(bo.Directory())
		if !shared {
			if err := out.PutOverlay(bo.Clone()); err != nil {
				return nil, err
			}
			continue
		}

		dir := bo.Directory()
		formats := bo.Formats()
		if m.collide(dir, overlayEntry, dir, formats == oo.Formats()) {
			formats = oo.Formats()
		}
		merged, err := pack.NewOverlay(dir, formats, m.containers(dir, bo.Container, oo.Container))
		if err != nil {
			return nil, err
		}
		if err := out.PutOverlay(merged); err != nil {
			return nil, err
		}
	}
	for _, oo := range other.Overlays() {
		if _, shared := base.Overlay(oo.Directory()); shared {
			continue
		}
		if err := out.PutOverlay(oo.Clone()); err != nil {
			return nil, err
		}
	}

	if err := m.result(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *merger) containers(overlay string, base, other *pack.Container) *pack.Container {
	out := base.Clone()

	for _, c := range category.All() {
		for _, r := range other.List(c.Kind()) {
			existing, ok := out.Get(c.Kind(), r.Key())
			if !ok {
				out.Put(r)
				continue
			}
			out.Put(m.resolve(overlay, c, existing, r))
		}
	}

	for _, p := range other.Files() {
		data, _ := other.File(p)
		existing, ok := out.File(p)
		if ok && !m.collide(overlay, fileEntry, p, bytes.Equal(existing, data)) {
			continue
		}
		// Paths coming out of a container are already clean.
		_ = out.PutFile(p, data)
	}
	return out
}

// resolve picks the value stored for a key both containers hold.
func (m *merger) resolve(overlay string, c *category.Category, base, other resource.Resource) resource.Resource {
	if m.strategy == Override {
		m.logger.Debug("collision resolved", "overlay", overlay, "category", c.Name(), "key", base.Key(), "winner", "other")
		return other
	}

	if merged, entries, ok := c.Combine(base, other); ok {
		if len(entries) > 0 {
			if m.strategy == FailOnError {
				m.conflict(overlay, c.Name(), base.Key().String(), entries)
			} else {
				m.logger.Debug("kept base entries", "overlay", overlay, "category", c.Name(), "key", base.Key(), "entries", entries)
			}
		}
		m.logger.Debug("collision combined", "overlay", overlay, "category", c.Name(), "key", base.Key())
		return merged
	}

	if m.collide(overlay, c.Name(), base.Key().String(), sameResource(c, base, other)) {
		return other
	}
	return base
}

// collide resolves a collision between two opaque values and reports
// whether the other side wins. Equal values never conflict.
func (m *merger) collide(overlay, cat, name string, same bool) bool {
	if same {
		return false
	}
	switch m.strategy {
	case Override:
		m.logger.Debug("collision resolved", "overlay", overlay, "category", cat, "key", name, "winner", "other")
		return true
	case FailOnError:
		m.conflict(overlay, cat, name, nil)
	default:
		m.logger.Debug("collision resolved", "overlay", overlay, "category", cat, "key", name, "winner", "base")
	}
	return false
}

func (m *merger) conflict(overlay, cat, name string, entries []string) {
	m.logger.Debug("conflict", "overlay", overlay, "category", cat, "key", name)
	m.conflicts = append(m.conflicts, Conflict{Overlay: overlay, Category: cat, Key: name, Entries: entries})
}

// sameResource reports whether two instances serialize identically,
// sidecar included.
func sameResource(c *category.Category, a, b resource.Resource) bool {
	ea, errA := c.Encode(a, category.UnknownFormat)
	eb, errB := c.Encode(b, category.UnknownFormat)
	if errA != nil || errB != nil || !bytes.Equal(ea, eb) {
		return false
	}
	ma, _, errA := c.EncodeMeta(a)
	mb, _, errB := c.EncodeMeta(b)
	return errA == nil && errB == nil && bytes.Equal(ma, mb)
}
