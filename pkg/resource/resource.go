// SPDX-License-Identifier: MPL-2.0

// Package resource defines the resource kinds a pack can hold.
//
// Every resource value is immutable once constructed. Constructors copy their
// inputs and accessors hand out copies, so a value can be shared between
// containers without aliasing. "With" methods return a new value.
package resource

import (
	"slices"

	"github.com/packforge/packforge/pkg/key"

	"golang.org/x/exp/maps"
)

type (
	// Resource is implemented by every resource kind.
	Resource interface {
		// Key returns the namespace-qualified identifier of the resource.
		Key() key.Key
		// Kind returns the category the resource belongs to.
		Kind() Kind
	}

	// Document is an opaque JSON object. Values are the types produced by
	// encoding/json when decoding into an interface: map[string]any, []any,
	// string, float64, bool and nil.
	Document map[string]any

	// document is the shared payload of kinds whose content is a single
	// opaque JSON object.
	document struct {
		key  key.Key
		body Document
	}

	// BlockState maps block property combinations to models.
	BlockState struct{ document }

	// Equipment describes the layers rendered for a piece of worn equipment.
	Equipment struct{ document }

	// Item is an item model definition (the items/ folder).
	Item struct{ document }

	// WaypointStyle describes the sprites used by a locator bar waypoint.
	WaypointStyle struct{ document }
)

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Document(t).Clone())
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneDocuments(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}

// NewBlockState creates a block state definition.
func NewBlockState(k key.Key, body Document) BlockState {
	return BlockState{document{key: k, body: body.Clone()}}
}

// NewEquipment creates an equipment definition.
func NewEquipment(k key.Key, body Document) Equipment {
	return Equipment{document{key: k, body: body.Clone()}}
}

// NewItem creates an item model definition.
func NewItem(k key.Key, body Document) Item {
	return Item{document{key: k, body: body.Clone()}}
}

// NewWaypointStyle creates a waypoint style definition.
func NewWaypointStyle(k key.Key, body Document) WaypointStyle {
	return WaypointStyle{document{key: k, body: body.Clone()}}
}

// Key returns the resource key.
func (d document) Key() key.Key { return d.key }

// Body returns a copy of the JSON document.
func (d document) Body() Document { return d.body.Clone() }

// Kind implements Resource.
func (BlockState) Kind() Kind { return KindBlockState }

// Kind implements Resource.
func (Equipment) Kind() Kind { return KindEquipment }

// Kind implements Resource.
func (Item) Kind() Kind { return KindItem }

// Kind implements Resource.
func (WaypointStyle) Kind() Kind { return KindWaypointStyle }

// NewDocument builds a resource of a document kind from its body.
// It returns false for kinds whose payload is not a single JSON object.
func NewDocument(kind Kind, k key.Key, body Document) (Resource, bool) {
	switch kind {
	case KindBlockState:
		return NewBlockState(k, body), true
	case KindEquipment:
		return NewEquipment(k, body), true
	case KindItem:
		return NewItem(k, body), true
	case KindWaypointStyle:
		return NewWaypointStyle(k, body), true
	default:
		return nil, false
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
