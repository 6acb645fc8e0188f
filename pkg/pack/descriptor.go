// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrInvalidDescriptor is the sentinel error wrapped by InvalidDescriptorError.
var ErrInvalidDescriptor = errors.New("invalid pack descriptor")

type (
	// Descriptor is the content of pack.mcmeta.
	Descriptor struct {
		// Format is the pack format the pack declares.
		Format int
		// Supported optionally widens the formats the pack claims to work with.
		Supported *FormatRange
		// Description is the plain text description.
		Description string
		// DescriptionJSON holds a text component description. When set it is
		// written instead of Description.
		DescriptionJSON json.RawMessage
		// Sections keeps other top-level members (language, filter, ...)
		// verbatim. The "pack" and "overlays" members are managed by the
		// serializer and never appear here.
		Sections map[string]json.RawMessage
	}

	// InvalidDescriptorError is returned when a descriptor is inconsistent.
	InvalidDescriptorError struct {
		Reason string
	}
)

// NewDescriptor creates a descriptor with a plain text description.
func NewDescriptor(format int, description string) (*Descriptor, error) {
	d := &Descriptor{Format: format, Description: description}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the descriptor fields against each other.
func (d *Descriptor) Validate() error {
	if d.Format < 0 {
		return &InvalidDescriptorError{Reason: fmt.Sprintf("pack format %d is negative", d.Format)}
	}
	if d.Supported != nil {
		if err := d.Supported.Validate(); err != nil {
			return err
		}
		if !d.Supported.Contains(d.Format) {
			return &InvalidDescriptorError{
				Reason: fmt.Sprintf("pack format %d is outside the supported formats %s", d.Format, d.Supported),
			}
		}
	}
	if len(d.DescriptionJSON) > 0 && !json.Valid(d.DescriptionJSON) {
		return &InvalidDescriptorError{Reason: "description is not valid JSON"}
	}
	for _, reserved := range []string{"pack", "overlays"} {
		if _, ok := d.Sections[reserved]; ok {
			return &InvalidDescriptorError{Reason: fmt.Sprintf("section %q is managed by the serializer", reserved)}
		}
	}
	return nil
}

// SectionNames returns the passthrough section names in lexical order.
func (d *Descriptor) SectionNames() []string {
	return slices.Sorted(maps.Keys(d.Sections))
}

// Clone returns a deep copy of the descriptor.
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	out := *d
	if d.Supported != nil {
		r := *d.Supported
		out.Supported = &r
	}
	out.DescriptionJSON = slices.Clone(d.DescriptionJSON)
	if d.Sections != nil {
		out.Sections = make(map[string]json.RawMessage, len(d.Sections))
		for name, raw := range d.Sections {
			out.Sections[name] = slices.Clone(raw)
		}
	}
	return &out
}

// Error implements the error interface.
func (e *InvalidDescriptorError) Error() string {
	return "invalid pack descriptor: " + e.Reason
}

// Unwrap returns ErrInvalidDescriptor for errors.Is() compatibility.
func (e *InvalidDescriptorError) Unwrap() error { return ErrInvalidDescriptor }
