// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/packforge/packforge/pkg/filetree"
	"github.com/packforge/packforge/pkg/key"
	"github.com/packforge/packforge/pkg/resource"
)

func TestContainer_PutGetRemove(t *testing.T) {
	t.Parallel()

	c := NewContainer()
	stone := key.MustNew("minecraft", "block/stone")

	first := resource.NewTexture(stone, []byte("one"))
	second := resource.NewTexture(stone, []byte("two"))
	c.Put(first)
	c.Put(second)

	if c.Len(resource.KindTexture) != 1 {
		t.Fatalf("Len = %d, want 1 (last write wins)", c.Len(resource.KindTexture))
	}
	got, ok := c.Get(resource.KindTexture, stone)
	if !ok {
		t.Fatal("Get returned nothing")
	}
	if string(got.(resource.Texture).Data()) != "two" {
		t.Error("Put should replace the previous instance")
	}

	if _, ok := c.Get(resource.KindModel, stone); ok {
		t.Error("a texture key must not resolve in the model category")
	}

	if !c.Remove(resource.KindTexture, stone) {
		t.Error("Remove should report the removed entry")
	}
	if c.Remove(resource.KindTexture, stone) {
		t.Error("second Remove should report nothing removed")
	}
	if !c.Empty() {
		t.Error("container should be empty")
	}
}

func TestContainer_ZeroValue(t *testing.T) {
	t.Parallel()

	var c Container
	c.Put(resource.NewText(key.MustNew("minecraft", "end"), []byte("poem")))
	if c.Size() != 1 {
		t.Errorf("Size = %d", c.Size())
	}
}

func TestContainer_ListSorted(t *testing.T) {
	t.Parallel()

	c := NewContainer()
	for _, s := range []string{"zeta:a", "minecraft:b", "alpha:z", "minecraft:a"} {
		c.Put(resource.NewSound(key.MustParse(s), nil))
	}

	want := []string{"alpha:z", "minecraft:a", "minecraft:b", "zeta:a"}
	list := c.List(resource.KindSound)
	if len(list) != len(want) {
		t.Fatalf("List returned %d entries", len(list))
	}
	for i, r := range list {
		if r.Key().String() != want[i] {
			t.Errorf("List[%d] = %s, want %s", i, r.Key(), want[i])
		}
	}
}

func TestContainer_Files(t *testing.T) {
	t.Parallel()

	c := NewContainer()
	if err := c.PutFile("credits.txt", []byte("me")); err != nil {
		t.Fatalf("PutFile: %v", err)
	}
	if err := c.PutFile("./assets/minecraft/shaders/core/x.fsh", []byte("shader")); err != nil {
		t.Fatalf("PutFile: %v", err)
	}
	if err := c.PutFile("../escape.txt", nil); !errors.Is(err, filetree.ErrInvalidPath) {
		t.Errorf("PutFile with .. err = %v, want ErrInvalidPath", err)
	}

	files := c.Files()
	if len(files) != 2 || files[0] != "assets/minecraft/shaders/core/x.fsh" || files[1] != "credits.txt" {
		t.Errorf("Files() = %v", files)
	}
	if data, ok := c.File("credits.txt"); !ok || string(data) != "me" {
		t.Errorf("File(credits.txt) = %q, %v", data, ok)
	}
	if !c.RemoveFile("credits.txt") || c.RemoveFile("credits.txt") {
		t.Error("RemoveFile should succeed exactly once")
	}
}

func TestPack_ShadowedFiles(t *testing.T) {
	t.Parallel()

	p := New()
	if _, err := p.AddOverlay("legacy", FormatRange{Min: 18, Max: 33}, nil); err != nil {
		t.Fatalf("AddOverlay: %v", err)
	}

	var shadowed *ShadowedFileError
	if err := p.PutFile("legacy/x.txt", nil); !errors.As(err, &shadowed) || shadowed.Directory != "legacy" {
		t.Errorf("PutFile inside an overlay directory err = %v, want *ShadowedFileError", err)
	}
	for _, path := range []string{"./legacy//deep/x.txt", "legacy"} {
		if err := p.PutFile(path, nil); !errors.Is(err, ErrShadowedFile) {
			t.Errorf("PutFile(%q) err = %v, want ErrShadowedFile", path, err)
		}
	}
	for _, path := range []string{"legacy.txt", "legacy2/x.txt", "assets/minecraft/textures/a.png"} {
		if err := p.PutFile(path, nil); err != nil {
			t.Errorf("PutFile(%q): %v", path, err)
		}
	}
	if got := p.Files(); len(got) != 3 {
		t.Errorf("Files() = %v", got)
	}

	if _, err := p.AddOverlay("legacy2", Single(19), nil); !errors.Is(err, ErrShadowedFile) {
		t.Errorf("AddOverlay over existing root files err = %v, want ErrShadowedFile", err)
	}
	if _, ok := p.Overlay("legacy2"); ok {
		t.Error("rejected overlay should not be added")
	}
}

func TestContainer_CloneIndependent(t *testing.T) {
	t.Parallel()

	c := NewContainer()
	c.Put(resource.NewText(key.MustNew("minecraft", "a"), nil))
	_ = c.PutFile("f", []byte("x"))

	clone := c.Clone()
	clone.Put(resource.NewText(key.MustNew("minecraft", "b"), nil))
	_ = clone.PutFile("g", nil)

	if c.Size() != 1 || len(c.Files()) != 1 {
		t.Error("changes to the clone leaked into the original")
	}
}

func TestLookupAndAll(t *testing.T) {
	t.Parallel()

	c := NewContainer()
	bow := key.MustNew("minecraft", "item/bow")
	c.Put(resource.NewModel(bow, resource.Document{"parent": "item/generated"}))
	c.Put(resource.NewModel(key.MustNew("minecraft", "item/arrow"), nil))
	c.Put(resource.NewTexture(bow, nil))

	m, ok := Lookup[resource.Model](c, bow)
	if !ok || m.Body()["parent"] != "item/generated" {
		t.Errorf("Lookup[Model] = %v, %v", m, ok)
	}
	if _, ok := Lookup[resource.Font](c, bow); ok {
		t.Error("Lookup[Font] should find nothing")
	}

	models := All[resource.Model](c)
	if len(models) != 2 || models[0].Key().Path() != "item/arrow" {
		t.Errorf("All[Model] = %v", models)
	}
}

func TestNewFormatRange(t *testing.T) {
	t.Parallel()

	r, err := NewFormatRange(18, 34)
	if err != nil {
		t.Fatalf("NewFormatRange: %v", err)
	}
	if !r.Contains(18) || !r.Contains(34) || r.Contains(35) || r.Contains(17) {
		t.Error("Contains should be inclusive on both bounds")
	}
	if r.String() != "18-34" || Single(46).String() != "46" {
		t.Errorf("String() = %q, %q", r.String(), Single(46).String())
	}

	_, err = NewFormatRange(34, 18)
	if !errors.Is(err, ErrInvalidFormatRange) {
		t.Errorf("err = %v, want ErrInvalidFormatRange", err)
	}
}

func TestAddOverlay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		directory string
		formats   FormatRange
		wantErr   error
	}{
		{"valid", "v19", FormatRange{Min: 19, Max: 30}, nil},
		{"underscores and hyphens", "overlay_1-21", Single(46), nil},
		{"uppercase and punctuation", "V19!", FormatRange{Min: 19, Max: 30}, ErrInvalidOverlayDirectory},
		{"empty", "", Single(1), ErrInvalidOverlayDirectory},
		{"nested", "a/b", Single(1), ErrInvalidOverlayDirectory},
		{"reserved", "assets", Single(1), ErrInvalidOverlayDirectory},
		{"inverted range", "v20", FormatRange{Min: 30, Max: 19}, ErrInvalidFormatRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New()
			o, err := p.AddOverlay(tt.directory, tt.formats, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AddOverlay(%q) err = %v, want %v", tt.directory, err, tt.wantErr)
				}
				if len(p.Overlays()) != 0 {
					t.Error("a rejected overlay must not be added")
				}
				return
			}
			if err != nil {
				t.Fatalf("AddOverlay(%q) unexpected error: %v", tt.directory, err)
			}
			if o.Directory() != tt.directory || o.Formats() != tt.formats {
				t.Errorf("overlay = (%q, %v)", o.Directory(), o.Formats())
			}
		})
	}
}

func TestAddOverlay_Duplicate(t *testing.T) {
	t.Parallel()

	p := New()
	if _, err := p.AddOverlay("v19", Single(19), nil); err != nil {
		t.Fatalf("AddOverlay: %v", err)
	}
	_, err := p.AddOverlay("v19", Single(20), nil)
	var dup *DuplicateOverlayError
	if !errors.As(err, &dup) || dup.Directory != "v19" {
		t.Errorf("err = %v, want *DuplicateOverlayError", err)
	}
}

func TestOverlaysApplicableTo(t *testing.T) {
	t.Parallel()

	p := New()
	for _, o := range []struct {
		dir      string
		min, max int
	}{
		{"old", 1, 18},
		{"mid", 15, 34},
		{"new", 35, 64},
	} {
		if _, err := p.AddOverlay(o.dir, FormatRange{Min: o.min, Max: o.max}, nil); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		format int
		want   []string
	}{
		{16, []string{"old", "mid"}},
		{34, []string{"mid"}},
		{35, []string{"new"}},
		{100, nil},
	}
	for _, tt := range tests {
		got := p.OverlaysApplicableTo(tt.format)
		if len(got) != len(tt.want) {
			t.Errorf("format %d: got %d overlays, want %v", tt.format, len(got), tt.want)
			continue
		}
		for i, o := range got {
			if o.Directory() != tt.want[i] {
				t.Errorf("format %d: overlay[%d] = %s, want %s", tt.format, i, o.Directory(), tt.want[i])
			}
		}
	}

	if !p.RemoveOverlay("mid") || len(p.Overlays()) != 2 {
		t.Error("RemoveOverlay should drop exactly one overlay")
	}
}

func TestDescriptor_Validate(t *testing.T) {
	t.Parallel()

	if _, err := NewDescriptor(46, "My pack"); err != nil {
		t.Errorf("NewDescriptor: %v", err)
	}

	tests := []struct {
		name string
		d    Descriptor
	}{
		{"negative format", Descriptor{Format: -1}},
		{"format outside supported", Descriptor{Format: 10, Supported: &FormatRange{Min: 18, Max: 34}}},
		{"invalid description json", Descriptor{Format: 10, DescriptionJSON: json.RawMessage(`{"text":`)}},
		{"reserved section", Descriptor{Format: 10, Sections: map[string]json.RawMessage{"pack": json.RawMessage(`{}`)}}},
	}
	for _, tt := range tests {
		if err := tt.d.Validate(); !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("%s: err = %v, want ErrInvalidDescriptor", tt.name, err)
		}
	}
}

func TestPack_SetDescriptorAndIcon(t *testing.T) {
	t.Parallel()

	p := New()
	if p.Descriptor() != nil {
		t.Error("a new pack has no descriptor")
	}
	if err := p.SetDescriptor(&Descriptor{Format: 5, Supported: &FormatRange{Min: 6, Max: 8}}); err == nil {
		t.Error("SetDescriptor should validate")
	}

	d := &Descriptor{Format: 46, Description: "x"}
	if err := p.SetDescriptor(d); err != nil {
		t.Fatalf("SetDescriptor: %v", err)
	}
	d.Description = "changed"
	if p.Descriptor().Description != "x" {
		t.Error("SetDescriptor should copy its argument")
	}

	if _, ok := p.Icon(); ok {
		t.Error("a new pack has no icon")
	}
	p.SetIcon([]byte{0x89, 'P', 'N', 'G'})
	if icon, ok := p.Icon(); !ok || len(icon) != 4 {
		t.Errorf("Icon() = %v, %v", icon, ok)
	}
}

func TestPack_Clone(t *testing.T) {
	t.Parallel()

	p := New()
	p.Put(resource.NewText(key.MustNew("minecraft", "a"), nil))
	o, _ := p.AddOverlay("v19", Single(19), nil)
	o.Put(resource.NewText(key.MustNew("minecraft", "b"), nil))

	clone := p.Clone()
	clone.Put(resource.NewText(key.MustNew("minecraft", "c"), nil))
	co, _ := clone.Overlay("v19")
	co.Put(resource.NewText(key.MustNew("minecraft", "d"), nil))
	_, _ = clone.AddOverlay("v20", Single(20), nil)

	if p.Size() != 1 || o.Size() != 1 || len(p.Overlays()) != 1 {
		t.Error("changes to the clone leaked into the original")
	}
}
