// SPDX-License-Identifier: MPL-2.0

package category

import (
	"reflect"

	"github.com/packforge/packforge/pkg/resource"
)

// combineFonts concatenates provider lists, base first.
func combineFonts(base, other resource.Resource) (resource.Resource, []string) {
	return base.(resource.Font).WithProviders(other.(resource.Font).Providers()...), nil
}

// combineModels unions the override lists and sorts them ascending by
// threshold. Overrides are never dropped, even when both sides declare an
// identical one. The rest of the model document comes from base.
func combineModels(base, other resource.Resource) (resource.Resource, []string) {
	b := base.(resource.Model)
	overrides := append(b.Overrides(), other.(resource.Model).Overrides()...)
	resource.SortOverrides(overrides)
	return resource.NewModel(b.Key(), b.Body(), overrides...), nil
}

// combineAtlases unions sprite sources, dropping sources from other that are
// already present in base.
func combineAtlases(base, other resource.Resource) (resource.Resource, []string) {
	b := base.(resource.Atlas)
	sources := b.Sources()

	seen := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		if id, err := MarshalCanonical(s); err == nil {
			seen[string(id)] = struct{}{}
		}
	}

	var added []resource.Document
	for _, s := range other.(resource.Atlas).Sources() {
		id, err := MarshalCanonical(s)
		if err == nil {
			if _, dup := seen[string(id)]; dup {
				continue
			}
			seen[string(id)] = struct{}{}
		}
		added = append(added, s)
	}
	return b.WithSources(added...), nil
}

// combineLanguages unions translation tables. A key translated differently
// on both sides is reported and keeps base's text.
func combineLanguages(base, other resource.Resource) (resource.Resource, []string) {
	merged := base.(resource.Language)
	o := other.(resource.Language)

	var conflicts []string
	for _, name := range o.SortedNames() {
		value, _ := o.Translation(name)
		existing, ok := merged.Translation(name)
		switch {
		case !ok:
			merged = merged.With(name, value)
		case existing != value:
			conflicts = append(conflicts, name)
		}
	}
	return merged, conflicts
}

// combineSoundRegistries unions sound events. An event defined differently
// on both sides is reported and keeps base's definition.
func combineSoundRegistries(base, other resource.Resource) (resource.Resource, []string) {
	merged := base.(resource.SoundRegistry)
	o := other.(resource.SoundRegistry)

	var conflicts []string
	for _, name := range o.EventNames() {
		event, _ := o.Event(name)
		existing, ok := merged.Event(name)
		switch {
		case !ok:
			merged = merged.WithEvent(name, event)
		case !reflect.DeepEqual(existing, event):
			conflicts = append(conflicts, name)
		}
	}
	return merged, conflicts
}
