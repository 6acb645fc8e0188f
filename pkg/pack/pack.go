// SPDX-License-Identifier: MPL-2.0

// Package pack models a resource pack: a root container of resources, an
// ordered list of version-gated overlays, the pack.mcmeta descriptor, an
// optional icon, and the files the engine does not recognize.
//
// Packs are assembled by mutation and are not safe for concurrent use.
// Serialization treats a pack as a read-only snapshot.
package pack

import (
	"slices"
	"strings"

	"github.com/packforge/packforge/pkg/filetree"
)

// Pack is a resource pack under assembly.
type Pack struct {
	*Container

	overlays   []*Overlay
	descriptor *Descriptor
	icon       []byte
}

// New returns an empty pack without descriptor or icon.
func New() *Pack {
	return &Pack{Container: NewContainer()}
}

// NewWithRoot returns a pack whose root container is root. A nil root
// starts the pack empty.
func NewWithRoot(root *Container) *Pack {
	if root == nil {
		root = NewContainer()
	}
	return &Pack{Container: root}
}

// Root returns the root container.
func (p *Pack) Root() *Container { return p.Container }

// AddOverlay creates an overlay and appends it to the pack. A nil container
// starts the overlay empty.
func (p *Pack) AddOverlay(directory string, formats FormatRange, c *Container) (*Overlay, error) {
	o, err := NewOverlay(directory, formats, c)
	if err != nil {
		return nil, err
	}
	if err := p.PutOverlay(o); err != nil {
		return nil, err
	}
	return o, nil
}

// PutOverlay appends an existing overlay, failing when its directory is
// already taken or already holds root files.
func (p *Pack) PutOverlay(o *Overlay) error {
	if _, exists := p.Overlay(o.Directory()); exists {
		return &DuplicateOverlayError{Directory: o.Directory()}
	}
	prefix := o.Directory() + "/"
	for _, path := range p.Files() {
		if path == o.Directory() || strings.HasPrefix(path, prefix) {
			return &ShadowedFileError{Path: path, Directory: o.Directory()}
		}
	}
	p.overlays = append(p.overlays, o)
	return nil
}

// PutFile stores a root unrecognized file. Unlike Container.PutFile it
// rejects an overlay directory and paths inside it, which a reader would
// assign to the overlay.
func (p *Pack) PutFile(path string, data []byte) error {
	clean, err := filetree.CleanPath(path)
	if err != nil {
		return err
	}
	dir, _, _ := strings.Cut(clean, "/")
	if _, exists := p.Overlay(dir); exists {
		return &ShadowedFileError{Path: clean, Directory: dir}
	}
	return p.Container.PutFile(clean, data)
}

// Overlay returns the overlay stored under directory.
func (p *Pack) Overlay(directory string) (*Overlay, bool) {
	for _, o := range p.overlays {
		if o.directory == directory {
			return o, true
		}
	}
	return nil, false
}

// RemoveOverlay deletes an overlay and reports whether it was present.
func (p *Pack) RemoveOverlay(directory string) bool {
	i := slices.IndexFunc(p.overlays, func(o *Overlay) bool { return o.directory == directory })
	if i < 0 {
		return false
	}
	p.overlays = slices.Delete(p.overlays, i, i+1)
	return true
}

// Overlays returns the overlays in insertion order.
func (p *Pack) Overlays() []*Overlay {
	return slices.Clone(p.overlays)
}

// OverlaysApplicableTo returns, in insertion order, the overlays a client
// using format would load.
func (p *Pack) OverlaysApplicableTo(format int) []*Overlay {
	var out []*Overlay
	for _, o := range p.overlays {
		if o.AppliesTo(format) {
			out = append(out, o)
		}
	}
	return out
}

// Descriptor returns the pack descriptor, or nil when none is set.
func (p *Pack) Descriptor() *Descriptor { return p.descriptor }

// SetDescriptor validates and sets the descriptor. A nil descriptor clears it.
func (p *Pack) SetDescriptor(d *Descriptor) error {
	if d != nil {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	p.descriptor = d.Clone()
	return nil
}

// Icon returns a copy of the pack.png bytes.
func (p *Pack) Icon() ([]byte, bool) {
	return slices.Clone(p.icon), p.icon != nil
}

// SetIcon sets the pack icon. A nil slice removes it.
func (p *Pack) SetIcon(data []byte) {
	p.icon = slices.Clone(data)
}

// Clone returns an independent copy of the pack. Merging works on clones so
// that its inputs are never modified.
func (p *Pack) Clone() *Pack {
	out := &Pack{
		Container:  p.Container.Clone(),
		descriptor: p.descriptor.Clone(),
		icon:       slices.Clone(p.icon),
	}
	for _, o := range p.overlays {
		out.overlays = append(out.overlays, o.Clone())
	}
	return out
}
