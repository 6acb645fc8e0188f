// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"errors"
	"testing"

	"github.com/packforge/packforge/pkg/key"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v", k, got)
		}
	}

	_, err := ParseKind("shader")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(shader) error = %v, want ErrUnknownKind", err)
	}
	if len(Kinds()) != int(KindCount) {
		t.Errorf("Kinds() returned %d kinds, want %d", len(Kinds()), KindCount)
	}
}

func TestItemOverride_Threshold(t *testing.T) {
	t.Parallel()

	model := key.MustNew("minecraft", "item/bow_pulling_0")

	tests := []struct {
		name     string
		override ItemOverride
		want     float64
	}{
		{"custom model data", CustomModelData(model, 14), 14},
		{
			"custom model data among others",
			NewItemOverride(model, Predicate{Name: "pulling", Value: 1}, Predicate{Name: CustomModelDataPredicate, Value: 7}),
			7,
		},
		{
			"first predicate by name",
			NewItemOverride(model, Predicate{Name: "pull", Value: 0.65}, Predicate{Name: "damaged", Value: 1}),
			1,
		},
		{"no predicates", NewItemOverride(model), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.override.Threshold(); got != tt.want {
				t.Errorf("Threshold() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortOverrides_Stable(t *testing.T) {
	t.Parallel()

	a := CustomModelData(key.MustNew("minecraft", "item/a"), 5)
	b := CustomModelData(key.MustNew("minecraft", "item/b"), 1)
	c := CustomModelData(key.MustNew("minecraft", "item/c"), 5)

	overrides := []ItemOverride{a, b, c}
	SortOverrides(overrides)

	want := []ItemOverride{b, a, c}
	for i := range want {
		if !overrides[i].Equal(want[i]) {
			t.Errorf("overrides[%d] = %v, want %v", i, overrides[i].Model(), want[i].Model())
		}
	}
}

func TestModel_OverridesMemberIgnored(t *testing.T) {
	t.Parallel()

	body := Document{"parent": "item/generated", "overrides": []any{}}
	m := NewModel(key.MustNew("minecraft", "item/stick"), body)

	if _, ok := m.Body()["overrides"]; ok {
		t.Error("model body should not keep the overrides member")
	}
	if _, ok := body["overrides"]; !ok {
		t.Error("NewModel must not modify the caller's document")
	}
}

func TestValuesDoNotAlias(t *testing.T) {
	t.Parallel()

	k := key.MustNew("minecraft", "default")

	provider := Document{"type": "bitmap", "chars": []any{"a"}}
	font := NewFont(k, provider)
	provider["type"] = "space"
	provider["chars"].([]any)[0] = "b"

	got := font.Providers()[0]
	if got["type"] != "bitmap" || got["chars"].([]any)[0] != "a" {
		t.Errorf("font provider changed through caller's document: %v", got)
	}

	got["type"] = "ttf"
	if font.Providers()[0]["type"] != "bitmap" {
		t.Error("font provider changed through accessor result")
	}

	extended := font.WithProviders(Document{"type": "space"})
	if len(font.Providers()) != 1 || len(extended.Providers()) != 2 {
		t.Errorf("WithProviders should not modify the receiver: %d, %d", len(font.Providers()), len(extended.Providers()))
	}

	data := []byte{1, 2, 3}
	tex := NewTexture(k, data)
	data[0] = 9
	if tex.Data()[0] != 1 {
		t.Error("texture data changed through caller's slice")
	}

	lang := NewLanguage(key.MustNew("minecraft", "en_us"), map[string]string{"a": "1"})
	lang2 := lang.With("b", "2")
	if lang.Len() != 1 || lang2.Len() != 2 {
		t.Errorf("With should not modify the receiver: %d, %d", lang.Len(), lang2.Len())
	}
}

func TestSoundRegistry(t *testing.T) {
	t.Parallel()

	reg, err := NewSoundRegistry("my_pack", map[string]Document{
		"block.bell": {"sounds": []any{"my_pack:bell"}},
	})
	if err != nil {
		t.Fatalf("NewSoundRegistry: %v", err)
	}
	if reg.Key() != key.MustNew("my_pack", SoundRegistryPath) {
		t.Errorf("Key() = %v", reg.Key())
	}

	reg2 := reg.WithEvent("ambient.cave", Document{"sounds": []any{}})
	if names := reg2.EventNames(); len(names) != 2 || names[0] != "ambient.cave" {
		t.Errorf("EventNames() = %v", names)
	}
	if _, ok := reg.Event("ambient.cave"); ok {
		t.Error("WithEvent should not modify the receiver")
	}

	if _, err := NewSoundRegistry("Bad Namespace", nil); !errors.Is(err, key.ErrInvalidKey) {
		t.Errorf("NewSoundRegistry with invalid namespace: err = %v", err)
	}
}

func TestTexture_Meta(t *testing.T) {
	t.Parallel()

	tex := NewTexture(key.MustNew("minecraft", "block/lava_still"), []byte("png"))
	if _, ok := tex.Meta(); ok {
		t.Error("new texture should have no metadata")
	}

	animated := tex.WithMeta(Document{"animation": map[string]any{"frametime": 2.0}})
	if !animated.Animated() {
		t.Error("texture with animation section should be animated")
	}
	if tex.Animated() {
		t.Error("WithMeta should not modify the receiver")
	}
	if !animated.SameContent(tex) {
		t.Error("metadata should not affect image content comparison")
	}
}
