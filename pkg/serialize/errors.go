// SPDX-License-Identifier: MPL-2.0

package serialize

import (
	"errors"
	"fmt"
)

var (
	// ErrCodec is matched by every *CodecError through errors.Is().
	ErrCodec = errors.New("codec error")

	// ErrPathCollision is the sentinel error wrapped by PathCollisionError.
	ErrPathCollision = errors.New("path written twice")
)

type (
	// CodecError reports an entry that could not be encoded or decoded.
	CodecError struct {
		// Path is the full path of the entry inside the store.
		Path string
		// Category is the kind name, or "descriptor" for pack.mcmeta.
		Category string
		Err      error
	}

	// PathCollisionError is returned when two artifacts of a pack resolve to
	// the same path, for example an unrecognized file shadowing a resource.
	PathCollisionError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *CodecError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Path, e.Category, e.Err)
}

// Unwrap returns the underlying codec failure.
func (e *CodecError) Unwrap() error { return e.Err }

// Is reports whether target is ErrCodec.
func (e *CodecError) Is(target error) bool { return target == ErrCodec }

// Error implements the error interface.
func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("%s: two artifacts resolve to the same path", e.Path)
}

// Unwrap returns ErrPathCollision for errors.Is() compatibility.
func (e *PathCollisionError) Unwrap() error { return ErrPathCollision }
