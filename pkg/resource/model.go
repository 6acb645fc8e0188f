// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"cmp"
	"slices"

	"github.com/packforge/packforge/pkg/key"
)

// CustomModelDataPredicate is the predicate name that discriminates most
// item overrides.
const CustomModelDataPredicate = "custom_model_data"

type (
	// Predicate is a single named condition of an item override.
	Predicate struct {
		Name  string
		Value float64
	}

	// ItemOverride substitutes another model when all predicates match.
	ItemOverride struct {
		model      key.Key
		predicates []Predicate
	}

	// Model is a block or item model. The overrides list is kept apart from
	// the rest of the document because it is the only part that merges.
	Model struct {
		key       key.Key
		body      Document
		overrides []ItemOverride
	}
)

// NewItemOverride creates an override pointing at model. Predicates are
// sorted by name so that equal overrides have an equal representation.
func NewItemOverride(model key.Key, predicates ...Predicate) ItemOverride {
	ps := slices.Clone(predicates)
	slices.SortStableFunc(ps, func(a, b Predicate) int { return cmp.Compare(a.Name, b.Name) })
	return ItemOverride{model: model, predicates: ps}
}

// CustomModelData is shorthand for an override selected by custom model data.
func CustomModelData(model key.Key, value float64) ItemOverride {
	return NewItemOverride(model, Predicate{Name: CustomModelDataPredicate, Value: value})
}

// Model returns the substituted model.
func (o ItemOverride) Model() key.Key { return o.model }

// Predicates returns a copy of the predicates sorted by name.
func (o ItemOverride) Predicates() []Predicate { return slices.Clone(o.predicates) }

// Threshold is the value overrides are ordered by: the custom model data
// predicate when present, otherwise the first predicate, otherwise zero.
func (o ItemOverride) Threshold() float64 {
	for _, p := range o.predicates {
		if p.Name == CustomModelDataPredicate {
			return p.Value
		}
	}
	if len(o.predicates) > 0 {
		return o.predicates[0].Value
	}
	return 0
}

// Equal reports whether two overrides select the same model under the same
// predicates.
func (o ItemOverride) Equal(other ItemOverride) bool {
	return o.model == other.model && slices.Equal(o.predicates, other.predicates)
}

// NewModel creates a model. Any "overrides" member in body is ignored in
// favor of the explicit overrides argument.
func NewModel(k key.Key, body Document, overrides ...ItemOverride) Model {
	b := body.Clone()
	delete(b, "overrides")
	return Model{key: k, body: b, overrides: slices.Clone(overrides)}
}

// Key returns the resource key.
func (m Model) Key() key.Key { return m.key }

// Kind implements Resource.
func (Model) Kind() Kind { return KindModel }

// Body returns a copy of the model document without the overrides.
func (m Model) Body() Document { return m.body.Clone() }

// Overrides returns a copy of the overrides in evaluation order.
func (m Model) Overrides() []ItemOverride { return slices.Clone(m.overrides) }

// WithOverrides returns a copy of the model with overrides appended.
func (m Model) WithOverrides(overrides ...ItemOverride) Model {
	m.overrides = append(slices.Clone(m.overrides), overrides...)
	return m
}

// SortOverrides orders overrides ascending by threshold. The sort is stable
// so overrides sharing a threshold keep their relative order.
func SortOverrides(overrides []ItemOverride) {
	slices.SortStableFunc(overrides, func(a, b ItemOverride) int {
		return cmp.Compare(a.Threshold(), b.Threshold())
	})
}
