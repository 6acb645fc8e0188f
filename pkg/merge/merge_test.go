// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"errors"
	"slices"
	"testing"

	"github.com/packforge/packforge/pkg/key"
	"github.com/packforge/packforge/pkg/pack"
	"github.com/packforge/packforge/pkg/resource"
)

var (
	stoneKey = key.MustNew("minecraft", "block/stone")
	stickKey = key.MustNew("minecraft", "item/stick")
	fontKey  = key.MustNew("minecraft", "default")
)

func texture(k key.Key, data string) resource.Texture {
	return resource.NewTexture(k, []byte(data))
}

func textureData(t *testing.T, c *pack.Container, k key.Key) string {
	t.Helper()
	tex, ok := pack.Lookup[resource.Texture](c, k)
	if !ok {
		t.Fatalf("texture %s missing", k)
	}
	return string(tex.Data())
}

func modelWith(values ...float64) resource.Model {
	overrides := make([]resource.ItemOverride, len(values))
	for i, v := range values {
		overrides[i] = resource.CustomModelData(key.MustNew("minecraft", "item/custom"), v)
	}
	return resource.NewModel(stickKey, resource.Document{"parent": "item/handheld"}, overrides...)
}

func thresholds(m resource.Model) []float64 {
	var out []float64
	for _, o := range m.Overrides() {
		out = append(out, o.Threshold())
	}
	return out
}

func TestContainers_OverrideLaw(t *testing.T) {
	t.Parallel()

	onlyBase := key.MustNew("minecraft", "block/dirt")
	onlyOther := key.MustNew("minecraft", "block/sand")

	base := pack.NewContainer()
	base.PutAll(texture(stoneKey, "base"), texture(onlyBase, "dirt"), modelWith(20, 25))
	other := pack.NewContainer()
	other.PutAll(texture(stoneKey, "other"), texture(onlyOther, "sand"), modelWith(14))

	out, err := Containers(base, other, Override)
	if err != nil {
		t.Fatalf("Containers: %v", err)
	}
	if got := textureData(t, out, stoneKey); got != "other" {
		t.Errorf("colliding texture = %q, want other's value", got)
	}
	if textureData(t, out, onlyBase) != "dirt" || textureData(t, out, onlyOther) != "sand" {
		t.Error("keys present on one side must be preserved")
	}
	m, _ := pack.Lookup[resource.Model](out, stickKey)
	if !slices.Equal(thresholds(m), []float64{14}) {
		t.Errorf("override should take other's model, got thresholds %v", thresholds(m))
	}
}

func TestContainers_KeepFirstLaw(t *testing.T) {
	t.Parallel()

	base := pack.NewContainer()
	base.PutAll(texture(stoneKey, "base"), resource.NewFont(fontKey, resource.Document{"type": "bitmap"}))
	other := pack.NewContainer()
	other.PutAll(texture(stoneKey, "other"), resource.NewFont(fontKey, resource.Document{"type": "space"}))

	out, err := Containers(base, other, KeepFirstOnError)
	if err != nil {
		t.Fatalf("Containers: %v", err)
	}
	if got := textureData(t, out, stoneKey); got != "base" {
		t.Errorf("colliding texture = %q, want base's value", got)
	}

	font, _ := pack.Lookup[resource.Font](out, fontKey)
	providers := font.Providers()
	if len(providers) != 2 || providers[0]["type"] != "bitmap" || providers[1]["type"] != "space" {
		t.Errorf("font providers = %v, want base then other", providers)
	}
}

func TestContainers_FailOnErrorLaw(t *testing.T) {
	t.Parallel()

	t.Run("opaque kind conflicts", func(t *testing.T) {
		t.Parallel()

		base := pack.NewContainer()
		base.Put(texture(stoneKey, "base"))
		other := pack.NewContainer()
		other.Put(texture(stoneKey, "other"))

		out, err := Containers(base, other, FailOnError)
		if out != nil {
			t.Error("a failed merge must not return a partial result")
		}
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", err)
		}
		var conflictErr *ConflictError
		if !errors.As(err, &conflictErr) || len(conflictErr.Conflicts) != 1 {
			t.Fatalf("err = %#v", err)
		}
		c := conflictErr.Conflicts[0]
		if c.Category != "texture" || c.Key != "minecraft:block/stone" {
			t.Errorf("conflict = %+v, want texture minecraft:block/stone", c)
		}
	})

	t.Run("item overrides combine", func(t *testing.T) {
		t.Parallel()

		base := pack.NewContainer()
		base.Put(modelWith(20, 25, 30))
		other := pack.NewContainer()
		other.Put(modelWith(35, 22, 14))

		out, err := Containers(base, other, FailOnError)
		if err != nil {
			t.Fatalf("Containers: %v", err)
		}
		m, _ := pack.Lookup[resource.Model](out, stickKey)
		want := []float64{14, 20, 22, 25, 30, 35}
		if got := thresholds(m); !slices.Equal(got, want) {
			t.Errorf("thresholds = %v, want %v", got, want)
		}
	})

	t.Run("every conflict is reported", func(t *testing.T) {
		t.Parallel()

		base := pack.NewContainer()
		base.PutAll(texture(stoneKey, "a"), resource.NewSound(stoneKey, []byte("a")))
		_ = base.PutFile("credits.txt", []byte("a"))
		other := pack.NewContainer()
		other.PutAll(texture(stoneKey, "b"), resource.NewSound(stoneKey, []byte("b")))
		_ = other.PutFile("credits.txt", []byte("b"))

		_, err := Containers(base, other, FailOnError)
		var conflictErr *ConflictError
		if !errors.As(err, &conflictErr) {
			t.Fatalf("err = %v, want *ConflictError", err)
		}
		var categories []string
		for _, c := range conflictErr.Conflicts {
			categories = append(categories, c.Category)
		}
		if !slices.Equal(categories, []string{"sound", "texture", "file"}) {
			t.Errorf("conflict categories = %v", categories)
		}
	})
}

func TestContainers_EqualValuesDoNotConflict(t *testing.T) {
	t.Parallel()

	base := pack.NewContainer()
	base.Put(resource.NewBlockState(stoneKey, resource.Document{"variants": map[string]any{}}))
	_ = base.PutFile("credits.txt", []byte("same"))
	other := pack.NewContainer()
	other.Put(resource.NewBlockState(stoneKey, resource.Document{"variants": map[string]any{}}))
	_ = other.PutFile("credits.txt", []byte("same"))

	if _, err := Containers(base, other, FailOnError); err != nil {
		t.Errorf("identical values should merge cleanly: %v", err)
	}
}

func TestContainers_TextureMetaDistinguishes(t *testing.T) {
	t.Parallel()

	plain := texture(stoneKey, "png")
	animated := plain.WithMeta(resource.Document{"animation": map[string]any{}})

	base := pack.NewContainer()
	base.Put(plain)
	other := pack.NewContainer()
	other.Put(animated)

	if _, err := Containers(base, other, FailOnError); !errors.Is(err, ErrConflict) {
		t.Errorf("textures differing in metadata should conflict, err = %v", err)
	}
}

func TestContainers_LanguageEntries(t *testing.T) {
	t.Parallel()

	langKey := key.MustNew("minecraft", "en_us")
	base := pack.NewContainer()
	base.Put(resource.NewLanguage(langKey, map[string]string{"a": "A", "b": "B"}))
	other := pack.NewContainer()
	other.Put(resource.NewLanguage(langKey, map[string]string{"b": "other", "c": "C"}))

	_, err := Containers(base, other, FailOnError)
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("err = %v, want *ConflictError", err)
	}
	if got := conflictErr.Conflicts[0]; got.Category != "language" || !slices.Equal(got.Entries, []string{"b"}) {
		t.Errorf("conflict = %+v", got)
	}

	out, err := Containers(base, other, KeepFirstOnError)
	if err != nil {
		t.Fatalf("Containers: %v", err)
	}
	lang, _ := pack.Lookup[resource.Language](out, langKey)
	if v, _ := lang.Translation("b"); v != "B" || lang.Len() != 3 {
		t.Errorf("keep-first language = %v", lang.Translations())
	}
}

func TestContainers_InputsUnchanged(t *testing.T) {
	t.Parallel()

	base := pack.NewContainer()
	base.Put(modelWith(1))
	other := pack.NewContainer()
	other.PutAll(modelWith(2), texture(stoneKey, "x"))

	if _, err := Containers(base, other, KeepFirstOnError); err != nil {
		t.Fatalf("Containers: %v", err)
	}
	m, _ := pack.Lookup[resource.Model](base, stickKey)
	if base.Size() != 1 || len(m.Overrides()) != 1 {
		t.Error("merge modified its base input")
	}
}

func TestContainers_InvalidStrategy(t *testing.T) {
	t.Parallel()

	_, err := Containers(pack.NewContainer(), pack.NewContainer(), Strategy(42))
	if !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("err = %v, want ErrInvalidStrategy", err)
	}
}

func newPack(t *testing.T, icon string, overlays map[string]pack.FormatRange) *pack.Pack {
	t.Helper()
	p := pack.New()
	if icon != "" {
		p.SetIcon([]byte(icon))
	}
	dirs := make([]string, 0, len(overlays))
	for dir := range overlays {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	for _, dir := range dirs {
		if _, err := p.AddOverlay(dir, overlays[dir], nil); err != nil {
			t.Fatalf("AddOverlay: %v", err)
		}
	}
	return p
}

func TestPacks_Icon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		strategy Strategy
		want     string
		wantErr  bool
	}{
		{Override, "other", false},
		{KeepFirstOnError, "base", false},
		{FailOnError, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			t.Parallel()

			out, err := Packs(newPack(t, "base", nil), newPack(t, "other", nil), tt.strategy)
			if tt.wantErr {
				var conflictErr *ConflictError
				if !errors.As(err, &conflictErr) || conflictErr.Conflicts[0].Category != "icon" {
					t.Fatalf("err = %v, want icon conflict", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Packs: %v", err)
			}
			if icon, _ := out.Icon(); string(icon) != tt.want {
				t.Errorf("icon = %q, want %q", icon, tt.want)
			}
		})
	}

	out, err := Packs(newPack(t, "", nil), newPack(t, "only", nil), FailOnError)
	if err != nil {
		t.Fatalf("Packs: %v", err)
	}
	if icon, _ := out.Icon(); string(icon) != "only" {
		t.Errorf("one-sided icon = %q", icon)
	}
}

func TestPacks_Overlays(t *testing.T) {
	t.Parallel()

	base := newPack(t, "", map[string]pack.FormatRange{
		"shared":    {Min: 18, Max: 30},
		"base_only": pack.Single(5),
	})
	other := newPack(t, "", map[string]pack.FormatRange{
		"shared":     {Min: 20, Max: 40},
		"other_only": pack.Single(50),
	})
	bs, _ := base.Overlay("shared")
	bs.Put(texture(stoneKey, "base"))
	os, _ := other.Overlay("shared")
	os.Put(texture(stoneKey, "other"))

	t.Run("override", func(t *testing.T) {
		t.Parallel()

		out, err := Packs(base, other, Override)
		if err != nil {
			t.Fatalf("Packs: %v", err)
		}
		var dirs []string
		for _, o := range out.Overlays() {
			dirs = append(dirs, o.Directory())
		}
		if !slices.Equal(dirs, []string{"base_only", "shared", "other_only"}) {
			t.Errorf("overlay order = %v", dirs)
		}
		shared, _ := out.Overlay("shared")
		if shared.Formats() != (pack.FormatRange{Min: 20, Max: 40}) {
			t.Errorf("override should take other's range, got %v", shared.Formats())
		}
		if textureData(t, shared.Container, stoneKey) != "other" {
			t.Error("overlay content should be merged with the same strategy")
		}
	})

	t.Run("keep first", func(t *testing.T) {
		t.Parallel()

		out, err := Packs(base, other, KeepFirstOnError)
		if err != nil {
			t.Fatalf("Packs: %v", err)
		}
		shared, _ := out.Overlay("shared")
		if shared.Formats() != (pack.FormatRange{Min: 18, Max: 30}) {
			t.Errorf("keep-first should keep base's range, got %v", shared.Formats())
		}
		if textureData(t, shared.Container, stoneKey) != "base" {
			t.Error("overlay content should keep base")
		}
	})

	t.Run("fail on error", func(t *testing.T) {
		t.Parallel()

		_, err := Packs(base, other, FailOnError)
		var conflictErr *ConflictError
		if !errors.As(err, &conflictErr) {
			t.Fatalf("err = %v, want *ConflictError", err)
		}
		var got []string
		for _, c := range conflictErr.Conflicts {
			got = append(got, c.String())
		}
		want := []string{"overlay shared: overlay shared", "overlay shared: texture minecraft:block/stone"}
		if !slices.Equal(got, want) {
			t.Errorf("conflicts = %v, want %v", got, want)
		}
	})
}

func TestPacks_Descriptor(t *testing.T) {
	t.Parallel()

	base := pack.New()
	_ = base.SetDescriptor(&pack.Descriptor{Format: 34, Description: "base"})
	other := pack.New()
	_ = other.SetDescriptor(&pack.Descriptor{Format: 46, Description: "other"})

	out, err := Packs(base, other, Override)
	if err != nil {
		t.Fatalf("Packs: %v", err)
	}
	if out.Descriptor().Description != "other" {
		t.Errorf("descriptor = %+v", out.Descriptor())
	}

	out, err = Packs(base, pack.New(), FailOnError)
	if err != nil {
		t.Fatalf("Packs: %v", err)
	}
	if out.Descriptor().Description != "base" {
		t.Errorf("one-sided descriptor = %+v", out.Descriptor())
	}

	if _, err := Packs(base, other, FailOnError); !errors.Is(err, ErrConflict) {
		t.Errorf("differing descriptors should conflict, err = %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Strategy
	}{
		{"override", Override},
		{"merge-fail-on-error", FailOnError},
		{"MERGE_KEEP_FIRST_ON_ERROR", KeepFirstOnError},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseStrategy("union"); !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("ParseStrategy(union) err = %v", err)
	}

	var s Strategy
	if err := s.UnmarshalText([]byte("override")); err != nil || s != Override {
		t.Errorf("UnmarshalText = %v, %v", s, err)
	}
}
