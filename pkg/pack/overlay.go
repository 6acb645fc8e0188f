// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/packforge/packforge/pkg/category"
)

var (
	// ErrInvalidOverlayDirectory is the sentinel error wrapped by
	// InvalidOverlayDirectoryError.
	ErrInvalidOverlayDirectory = errors.New("invalid overlay directory")

	// ErrDuplicateOverlay is the sentinel error wrapped by DuplicateOverlayError.
	ErrDuplicateOverlay = errors.New("duplicate overlay")

	// ErrShadowedFile is the sentinel error wrapped by ShadowedFileError.
	ErrShadowedFile = errors.New("root file inside an overlay directory")

	overlayDirectoryPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
)

type (
	// Overlay is a container applied by clients whose pack format lies in
	// the overlay's range. Its files live under "<directory>/" in the
	// serialized pack.
	Overlay struct {
		*Container
		directory string
		formats   FormatRange
	}

	// InvalidOverlayDirectoryError is returned when an overlay directory name
	// is not made of lowercase letters, digits, hyphens and underscores.
	InvalidOverlayDirectoryError struct {
		Directory string
		Reason    string
	}

	// DuplicateOverlayError is returned when a pack already has an overlay
	// with the same directory.
	DuplicateOverlayError struct {
		Directory string
	}

	// ShadowedFileError is returned when a root unrecognized file would be
	// serialized inside an overlay directory and read back into the overlay.
	ShadowedFileError struct {
		Path      string
		Directory string
	}
)

// ValidateOverlayDirectory checks an overlay directory name.
func ValidateOverlayDirectory(directory string) error {
	if !overlayDirectoryPattern.MatchString(directory) {
		return &InvalidOverlayDirectoryError{Directory: directory, Reason: "must match [a-z0-9_-]+"}
	}
	if directory == category.AssetsFolder {
		return &InvalidOverlayDirectoryError{Directory: directory, Reason: "reserved for the root assets"}
	}
	return nil
}

// NewOverlay creates an overlay. A nil container starts the overlay empty.
func NewOverlay(directory string, formats FormatRange, c *Container) (*Overlay, error) {
	if err := ValidateOverlayDirectory(directory); err != nil {
		return nil, err
	}
	if err := formats.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		c = NewContainer()
	}
	return &Overlay{Container: c, directory: directory, formats: formats}, nil
}

// Directory returns the directory name the overlay is stored under.
func (o *Overlay) Directory() string { return o.directory }

// Formats returns the pack formats the overlay applies to.
func (o *Overlay) Formats() FormatRange { return o.formats }

// AppliesTo reports whether clients using format load the overlay.
func (o *Overlay) AppliesTo(format int) bool { return o.formats.Contains(format) }

// Clone returns an overlay with the same directory and range holding an
// independent copy of the content.
func (o *Overlay) Clone() *Overlay {
	return &Overlay{Container: o.Container.Clone(), directory: o.directory, formats: o.formats}
}

// Error implements the error interface.
func (e *InvalidOverlayDirectoryError) Error() string {
	return fmt.Sprintf("invalid overlay directory %q: %s", e.Directory, e.Reason)
}

// Unwrap returns ErrInvalidOverlayDirectory for errors.Is() compatibility.
func (e *InvalidOverlayDirectoryError) Unwrap() error { return ErrInvalidOverlayDirectory }

// Error implements the error interface.
func (e *DuplicateOverlayError) Error() string {
	return fmt.Sprintf("overlay %q already exists", e.Directory)
}

// Unwrap returns ErrDuplicateOverlay for errors.Is() compatibility.
func (e *DuplicateOverlayError) Unwrap() error { return ErrDuplicateOverlay }

// Error implements the error interface.
func (e *ShadowedFileError) Error() string {
	return fmt.Sprintf("root file %s lies inside overlay directory %q", e.Path, e.Directory)
}

// Unwrap returns ErrShadowedFile for errors.Is() compatibility.
func (e *ShadowedFileError) Unwrap() error { return ErrShadowedFile }
