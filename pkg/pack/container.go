// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"slices"

	"github.com/packforge/packforge/pkg/filetree"
	"github.com/packforge/packforge/pkg/key"
	"github.com/packforge/packforge/pkg/resource"
)

// Container holds at most one resource per (kind, key) plus a bag of
// unrecognized files kept verbatim. The root of a pack and each overlay are
// containers. The zero value is ready to use. A Container is not safe for
// concurrent mutation.
type Container struct {
	resources [resource.KindCount]map[key.Key]resource.Resource
	files     map[string][]byte
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{}
}

// Put stores r under its own kind and key, replacing any previous instance.
// The addressed category is always the one r belongs to, so an instance can
// never be filed under the wrong kind.
func (c *Container) Put(r resource.Resource) {
	kind := r.Kind()
	if !kind.Valid() {
		panic("pack: resource of invalid kind " + kind.String())
	}
	if c.resources[kind] == nil {
		c.resources[kind] = make(map[key.Key]resource.Resource)
	}
	c.resources[kind][r.Key()] = r
}

// PutAll stores every resource, in order.
func (c *Container) PutAll(rs ...resource.Resource) {
	for _, r := range rs {
		c.Put(r)
	}
}

// Get returns the resource of the given kind stored under k.
func (c *Container) Get(kind resource.Kind, k key.Key) (resource.Resource, bool) {
	if !kind.Valid() {
		return nil, false
	}
	r, ok := c.resources[kind][k]
	return r, ok
}

// Remove deletes a resource and reports whether it was present.
func (c *Container) Remove(kind resource.Kind, k key.Key) bool {
	if !kind.Valid() {
		return false
	}
	if _, ok := c.resources[kind][k]; !ok {
		return false
	}
	delete(c.resources[kind], k)
	return true
}

// Keys returns the keys stored for a kind, sorted by namespace then path.
func (c *Container) Keys(kind resource.Kind) []key.Key {
	if !kind.Valid() {
		return nil
	}
	keys := make([]key.Key, 0, len(c.resources[kind]))
	for k := range c.resources[kind] {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, key.Compare)
	return keys
}

// List returns the resources of a kind sorted by key.
func (c *Container) List(kind resource.Kind) []resource.Resource {
	keys := c.Keys(kind)
	out := make([]resource.Resource, len(keys))
	for i, k := range keys {
		out[i] = c.resources[kind][k]
	}
	return out
}

// Len returns the number of resources of a kind.
func (c *Container) Len(kind resource.Kind) int {
	if !kind.Valid() {
		return 0
	}
	return len(c.resources[kind])
}

// Size returns the number of resources across all kinds.
func (c *Container) Size() int {
	n := 0
	for _, m := range c.resources {
		n += len(m)
	}
	return n
}

// Empty reports whether the container holds neither resources nor files.
func (c *Container) Empty() bool {
	return c.Size() == 0 && len(c.files) == 0
}

// PutFile stores an unrecognized file under its container-relative path.
// The path may be one a resource is serialized to: readers keep entries that
// fail to decode this way. Writing a container where a file and a resource
// share a path fails with a path collision.
func (c *Container) PutFile(path string, data []byte) error {
	clean, err := filetree.CleanPath(path)
	if err != nil {
		return err
	}
	if c.files == nil {
		c.files = make(map[string][]byte)
	}
	c.files[clean] = slices.Clone(data)
	return nil
}

// File returns a copy of an unrecognized file.
func (c *Container) File(path string) ([]byte, bool) {
	data, ok := c.files[path]
	return slices.Clone(data), ok
}

// RemoveFile deletes an unrecognized file and reports whether it was present.
func (c *Container) RemoveFile(path string) bool {
	if _, ok := c.files[path]; !ok {
		return false
	}
	delete(c.files, path)
	return true
}

// Files returns the paths of unrecognized files in lexical order.
func (c *Container) Files() []string {
	paths := make([]string, 0, len(c.files))
	for p := range c.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Clone returns an independent container with the same content. Resources
// are immutable values and are shared; file bytes are copied.
func (c *Container) Clone() *Container {
	out := &Container{}
	for kind, m := range c.resources {
		if len(m) == 0 {
			continue
		}
		out.resources[kind] = make(map[key.Key]resource.Resource, len(m))
		for k, r := range m {
			out.resources[kind][k] = r
		}
	}
	if len(c.files) > 0 {
		out.files = make(map[string][]byte, len(c.files))
		for p, data := range c.files {
			out.files[p] = slices.Clone(data)
		}
	}
	return out
}

// Lookup returns the resource of type T stored under k. T must be a
// concrete resource type such as resource.Model.
func Lookup[T resource.Resource](c *Container, k key.Key) (T, bool) {
	var zero T
	r, ok := c.Get(zero.Kind(), k)
	if !ok {
		return zero, false
	}
	t, ok := r.(T)
	return t, ok
}

// All returns every resource of type T sorted by key. T must be a concrete
// resource type.
func All[T resource.Resource](c *Container) []T {
	var zero T
	list := c.List(zero.Kind())
	out := make([]T, 0, len(list))
	for _, r := range list {
		if t, ok := r.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
