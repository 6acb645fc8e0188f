// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"bytes"
	"slices"

	"github.com/packforge/packforge/pkg/key"
)

type (
	// blob is the shared payload of kinds stored as raw bytes.
	blob struct {
		key  key.Key
		data []byte
	}

	// Texture is a PNG image with optional animation/rendering metadata
	// stored in a .mcmeta sidecar.
	Texture struct {
		blob
		meta Document
	}

	// Sound is an Ogg Vorbis clip.
	Sound struct{ blob }

	// Text is a plain text file such as the end poem or splash list.
	Text struct{ blob }
)

// NewTexture creates a texture without metadata.
func NewTexture(k key.Key, data []byte) Texture {
	return Texture{blob: blob{key: k, data: slices.Clone(data)}}
}

// NewSound creates a sound clip.
func NewSound(k key.Key, data []byte) Sound {
	return Sound{blob{key: k, data: slices.Clone(data)}}
}

// NewText creates a text resource.
func NewText(k key.Key, data []byte) Text {
	return Text{blob{key: k, data: slices.Clone(data)}}
}

// Key returns the resource key.
func (b blob) Key() key.Key { return b.key }

// Data returns a copy of the raw bytes.
func (b blob) Data() []byte { return slices.Clone(b.data) }

// Size returns the payload length in bytes.
func (b blob) Size() int { return len(b.data) }

// equal reports whether both blobs carry the same key and bytes.
func (b blob) equal(o blob) bool {
	return b.key == o.key && bytes.Equal(b.data, o.data)
}

// Kind implements Resource.
func (Texture) Kind() Kind { return KindTexture }

// Kind implements Resource.
func (Sound) Kind() Kind { return KindSound }

// Kind implements Resource.
func (Text) Kind() Kind { return KindText }

// WithMeta returns a copy of the texture carrying the given metadata.
// A nil meta removes the sidecar.
func (t Texture) WithMeta(meta Document) Texture {
	t.meta = meta.Clone()
	return t
}

// Meta returns a copy of the .mcmeta document and whether one is present.
func (t Texture) Meta() (Document, bool) {
	return t.meta.Clone(), t.meta != nil
}

// Animated reports whether the metadata declares an animation section.
func (t Texture) Animated() bool {
	_, ok := t.meta["animation"]
	return ok
}

// SameContent reports whether two textures carry identical image bytes.
// Metadata is not compared.
func (t Texture) SameContent(o Texture) bool { return t.blob.equal(o.blob) }
