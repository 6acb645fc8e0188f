// SPDX-License-Identifier: MPL-2.0

// Package category is the registry of resource categories.
//
// Each resource kind has exactly one Category describing where its files
// live for a given pack format, how instances are encoded and decoded, and
// optionally how two instances with the same key combine during a merge.
// The registry is a fixed table indexed by resource.Kind; adding a kind
// means adding one row here.
package category

import (
	"strings"

	"github.com/packforge/packforge/pkg/key"
	"github.com/packforge/packforge/pkg/resource"
)

const (
	// AssetsFolder is the top-level folder holding every namespace.
	AssetsFolder = "assets"

	// UnknownFormat stands for a format the caller cannot name. Every
	// negative format resolves to the latest layout.
	UnknownFormat = -1

	// LatestFormat is the newest pack format whose layout is known.
	LatestFormat = 64

	// EquipmentFolderFormat is the first format that reads equipment
	// definitions from "equipment" instead of "models/equipment".
	EquipmentFolderFormat = 43

	// MetaExtension is appended to a texture file name to form its sidecar.
	MetaExtension = ".mcmeta"
)

type (
	// DecodeOptions tunes how raw bytes are turned into resources.
	DecodeOptions struct {
		// Lenient accepts JSON with comments and trailing commas.
		Lenient bool
	}

	// Encoder serializes a resource for the given pack format.
	Encoder func(r resource.Resource, format int) ([]byte, error)

	// Decoder parses a resource stored under key k.
	Decoder func(data []byte, k key.Key, opts DecodeOptions) (resource.Resource, error)

	// Combiner merges two instances sharing a key. It returns the combined
	// value and a description of every sub-entry both sides define
	// differently; for those entries base's value is kept.
	Combiner func(base, other resource.Resource) (resource.Resource, []string)

	// Category describes one resource kind.
	Category struct {
		kind      resource.Kind
		folder    func(format int) string
		extension string
		// fileName, when set, fixes the namespace-relative file name and the
		// key path is implied by the kind.
		fileName string
		encode   Encoder
		decode   Decoder
		combine  Combiner
		// hasMeta marks categories written with a ".mcmeta" sidecar.
		hasMeta bool
	}
)

var registry = [resource.KindCount]*Category{
	resource.KindAtlas: {
		kind:      resource.KindAtlas,
		folder:    fixedFolder("atlases"),
		extension: ".json",
		encode:    encodeAtlas,
		decode:    decodeAtlas,
		combine:   combineAtlases,
	},
	resource.KindBlockState: {
		kind:      resource.KindBlockState,
		folder:    fixedFolder("blockstates"),
		extension: ".json",
		encode:    encodeDocument,
		decode:    documentDecoder(resource.KindBlockState),
	},
	resource.KindEquipment: {
		kind:      resource.KindEquipment,
		folder:    equipmentFolder,
		extension: ".json",
		encode:    encodeDocument,
		decode:    documentDecoder(resource.KindEquipment),
	},
	resource.KindFont: {
		kind:      resource.KindFont,
		folder:    fixedFolder("font"),
		extension: ".json",
		encode:    encodeFont,
		decode:    decodeFont,
		combine:   combineFonts,
	},
	resource.KindItem: {
		kind:      resource.KindItem,
		folder:    fixedFolder("items"),
		extension: ".json",
		encode:    encodeDocument,
		decode:    documentDecoder(resource.KindItem),
	},
	resource.KindLanguage: {
		kind:      resource.KindLanguage,
		folder:    fixedFolder("lang"),
		extension: ".json",
		encode:    encodeLanguage,
		decode:    decodeLanguage,
		combine:   combineLanguages,
	},
	resource.KindModel: {
		kind:      resource.KindModel,
		folder:    fixedFolder("models"),
		extension: ".json",
		encode:    encodeModel,
		decode:    decodeModel,
		combine:   combineModels,
	},
	resource.KindSound: {
		kind:      resource.KindSound,
		folder:    fixedFolder("sounds"),
		extension: ".ogg",
		encode:    encodeBlob,
		decode:    decodeSound,
	},
	resource.KindSoundRegistry: {
		kind:      resource.KindSoundRegistry,
		folder:    fixedFolder(""),
		extension: ".json",
		fileName:  resource.SoundRegistryPath,
		encode:    encodeSoundRegistry,
		decode:    decodeSoundRegistry,
		combine:   combineSoundRegistries,
	},
	resource.KindText: {
		kind:      resource.KindText,
		folder:    fixedFolder("texts"),
		extension: ".txt",
		encode:    encodeBlob,
		decode:    decodeText,
	},
	resource.KindTexture: {
		kind:      resource.KindTexture,
		folder:    fixedFolder("textures"),
		extension: ".png",
		encode:    encodeBlob,
		decode:    decodeTexture,
		hasMeta:   true,
	},
	resource.KindWaypointStyle: {
		kind:      resource.KindWaypointStyle,
		folder:    fixedFolder("waypoint_style"),
		extension: ".json",
		encode:    encodeDocument,
		decode:    documentDecoder(resource.KindWaypointStyle),
	},
}

func fixedFolder(name string) func(int) string {
	return func(int) string { return name }
}

func equipmentFolder(format int) string {
	if format >= 0 && format < EquipmentFolderFormat {
		return "models/equipment"
	}
	return "equipment"
}

// All returns every category in registry order.
func All() []*Category {
	out := make([]*Category, len(registry))
	copy(out, registry[:])
	return out
}

// ByKind returns the category of a kind. It panics on an invalid kind,
// which can only come from a programming error.
func ByKind(k resource.Kind) *Category {
	if !k.Valid() {
		panic("category: invalid resource kind " + k.String())
	}
	return registry[k]
}

// Of returns the category a resource belongs to.
func Of(r resource.Resource) *Category { return ByKind(r.Kind()) }

// Kind returns the resource kind described by the category.
func (c *Category) Kind() resource.Kind { return c.kind }

// Name returns the kind name, used in diagnostics.
func (c *Category) Name() string { return c.kind.String() }

// Folder returns the namespace-relative folder for a pack format. The sound
// registry lives at the namespace root and returns "".
func (c *Category) Folder(format int) string { return c.folder(format) }

// Extension returns the file extension, including the leading dot.
func (c *Category) Extension(int) string { return c.extension }

// HasMeta reports whether instances may carry a ".mcmeta" sidecar.
func (c *Category) HasMeta() bool { return c.hasMeta }

// Structural reports whether the category has a kind-specific combiner.
func (c *Category) Structural() bool { return c.combine != nil }

// Encode serializes r, which must belong to this category.
func (c *Category) Encode(r resource.Resource, format int) ([]byte, error) {
	if r.Kind() != c.kind {
		return nil, &KindMismatchError{Want: c.kind, Got: r.Kind()}
	}
	return c.encode(r, format)
}

// Decode parses data as an instance stored under k.
func (c *Category) Decode(data []byte, k key.Key, opts DecodeOptions) (resource.Resource, error) {
	return c.decode(data, k, opts)
}

// Combine merges two instances of this category. ok is false when the
// category has no structural combiner.
func (c *Category) Combine(base, other resource.Resource) (merged resource.Resource, conflicts []string, ok bool) {
	if c.combine == nil {
		return nil, nil, false
	}
	merged, conflicts = c.combine(base, other)
	return merged, conflicts, true
}

// RelativePath returns the namespace-relative file path of key path p.
func (c *Category) RelativePath(p string, format int) string {
	if c.fileName != "" {
		return c.fileName + c.extension
	}
	return c.folder(format) + "/" + p + c.extension
}

// Path returns the full slash-separated path of k below the pack root.
func (c *Category) Path(k key.Key, format int) string {
	return AssetsFolder + "/" + k.Namespace() + "/" + c.RelativePath(k.Path(), format)
}

// MetaPath returns the sidecar path of k, or "" for categories without one.
func (c *Category) MetaPath(k key.Key, format int) string {
	if !c.hasMeta {
		return ""
	}
	return c.Path(k, format) + MetaExtension
}

// match returns the key path of rel when it belongs to the category, along
// with the length of the matched folder.
func (c *Category) match(rel string, format int) (keyPath string, folderLen int, ok bool) {
	if c.fileName != "" {
		if rel == c.fileName+c.extension {
			return c.fileName, 0, true
		}
		return "", 0, false
	}

	folder := c.folder(format)
	prefix := folder + "/"
	if !strings.HasPrefix(rel, prefix) || !strings.HasSuffix(rel, c.extension) {
		return "", 0, false
	}
	keyPath = strings.TrimSuffix(rel[len(prefix):], c.extension)
	if keyPath == "" {
		return "", 0, false
	}
	return keyPath, len(folder), true
}

// Classify resolves a namespace-relative path (the part after
// "assets/<namespace>/") to its category. When several category folders
// prefix the path, the longest one wins, so "models/equipment/x.json" is
// equipment rather than a model for formats before 43.
func Classify(rel string, format int) (*Category, string, bool) {
	var (
		best    *Category
		bestKey string
		bestLen = -1
	)
	for _, c := range registry {
		keyPath, n, ok := c.match(rel, format)
		if ok && n > bestLen {
			best, bestKey, bestLen = c, keyPath, n
		}
	}
	return best, bestKey, best != nil
}

// ClassifyMeta resolves a sidecar path such as "textures/block/lava.png.mcmeta"
// to the category and key path of the resource it describes.
func ClassifyMeta(rel string, format int) (*Category, string, bool) {
	base, found := strings.CutSuffix(rel, MetaExtension)
	if !found {
		return nil, "", false
	}
	c, keyPath, ok := Classify(base, format)
	if !ok || !c.hasMeta {
		return nil, "", false
	}
	return c, keyPath, true
}
