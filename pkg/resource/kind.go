// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"errors"
	"fmt"
)

// Resource kinds. The order is the registry order and therefore the order
// in which categories are serialized.
const (
	KindAtlas Kind = iota
	KindBlockState
	KindEquipment
	KindFont
	KindItem
	KindLanguage
	KindModel
	KindSound
	KindSoundRegistry
	KindText
	KindTexture
	KindWaypointStyle

	// KindCount is the number of known kinds. It is not a valid Kind.
	KindCount
)

// ErrUnknownKind is the sentinel error wrapped by UnknownKindError.
var ErrUnknownKind = errors.New("unknown resource kind")

var kindNames = [KindCount]string{
	KindAtlas:         "atlas",
	KindBlockState:    "blockstate",
	KindEquipment:     "equipment",
	KindFont:          "font",
	KindItem:          "item",
	KindLanguage:      "language",
	KindModel:         "model",
	KindSound:         "sound",
	KindSoundRegistry: "sound_registry",
	KindText:          "text",
	KindTexture:       "texture",
	KindWaypointStyle: "waypoint_style",
}

type (
	// Kind identifies a resource category. The set of kinds is closed.
	Kind uint8

	// UnknownKindError is returned when a kind name cannot be resolved.
	UnknownKindError struct {
		Name string
	}
)

// Kinds returns every known kind in registry order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, KindCount)
	for k := range KindCount {
		kinds = append(kinds, k)
	}
	return kinds
}

// ParseKind resolves a kind from its String form.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, &UnknownKindError{Name: name}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool { return k < KindCount }

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Error implements the error interface.
func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown resource kind %q", e.Name)
}

// Unwrap returns ErrUnknownKind for errors.Is() compatibility.
func (e *UnknownKindError) Unwrap() error { return ErrUnknownKind }
