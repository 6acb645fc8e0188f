// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidFormatRange is the sentinel error wrapped by InvalidFormatRangeError.
var ErrInvalidFormatRange = errors.New("invalid format range")

type (
	// FormatRange is an inclusive range of pack formats.
	FormatRange struct {
		Min int
		Max int
	}

	// InvalidFormatRangeError is returned when a range has its bounds out of
	// order. It wraps ErrInvalidFormatRange for errors.Is().
	InvalidFormatRangeError struct {
		Min int
		Max int
	}
)

// NewFormatRange creates an inclusive range, failing when min > max.
func NewFormatRange(minFormat, maxFormat int) (FormatRange, error) {
	if minFormat > maxFormat {
		return FormatRange{}, &InvalidFormatRangeError{Min: minFormat, Max: maxFormat}
	}
	return FormatRange{Min: minFormat, Max: maxFormat}, nil
}

// Single returns the range holding exactly one format.
func Single(format int) FormatRange {
	return FormatRange{Min: format, Max: format}
}

// Validate checks the bounds of a range built as a literal.
func (r FormatRange) Validate() error {
	if r.Min > r.Max {
		return &InvalidFormatRangeError{Min: r.Min, Max: r.Max}
	}
	return nil
}

// Contains reports whether format lies inside the range.
func (r FormatRange) Contains(format int) bool {
	return r.Min <= format && format <= r.Max
}

// String returns "min-max", or the single format when both bounds agree.
func (r FormatRange) String() string {
	if r.Min == r.Max {
		return strconv.Itoa(r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Error implements the error interface.
func (e *InvalidFormatRangeError) Error() string {
	return fmt.Sprintf("invalid format range [%d, %d]: minimum exceeds maximum", e.Min, e.Max)
}

// Unwrap returns ErrInvalidFormatRange for errors.Is() compatibility.
func (e *InvalidFormatRangeError) Unwrap() error { return ErrInvalidFormatRange }
