// SPDX-License-Identifier: MPL-2.0

// Package key provides namespace-qualified resource identifiers.
//
// A Key is the pair (namespace, path) written as "namespace:path". Keys are
// comparable values and can be used directly as map keys. Equality is purely
// structural: "stone" parsed with the default namespace and the explicit
// "minecraft:stone" are the same Key because parsing fills in the namespace,
// not because equality normalizes anything.
package key

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultNamespace is the namespace assumed when a key is written without one.
	DefaultNamespace = "minecraft"

	// Separator splits the namespace from the path in the text form.
	Separator = ':'
)

var (
	// ErrInvalidKey is the sentinel error wrapped by InvalidKeyError.
	ErrInvalidKey = errors.New("invalid key")

	namespacePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)
	pathPattern      = regexp.MustCompile(`^[a-z0-9_./-]+$`)
)

type (
	// Key is an immutable namespace-qualified identifier.
	// The zero value is not a valid key.
	Key struct {
		namespace string
		path      string
	}

	// InvalidKeyError is returned when a namespace or path does not match
	// the allowed character set. It wraps ErrInvalidKey for errors.Is().
	InvalidKeyError struct {
		Namespace string
		Path      string
		Reason    string
	}
)

// New creates a key from its two components, validating both.
func New(namespace, path string) (Key, error) {
	if !ValidNamespace(namespace) {
		return Key{}, &InvalidKeyError{
			Namespace: namespace,
			Path:      path,
			Reason:    "namespace must match [a-z0-9_.-]+",
		}
	}
	if !pathPattern.MatchString(path) {
		return Key{}, &InvalidKeyError{
			Namespace: namespace,
			Path:      path,
			Reason:    "path must match [a-z0-9_./-]+",
		}
	}
	if !cleanSegments(path) {
		return Key{}, &InvalidKeyError{
			Namespace: namespace,
			Path:      path,
			Reason:    `path segments must not be empty, "." or ".."`,
		}
	}
	return Key{namespace: namespace, path: path}, nil
}

// MustNew is like New but panics on invalid input.
// Intended for keys known at compile time.
func MustNew(namespace, path string) Key {
	k, err := New(namespace, path)
	if err != nil {
		panic(err)
	}
	return k
}

// Parse reads the "namespace:path" text form. A value without a separator
// resolves to DefaultNamespace.
func Parse(s string) (Key, error) {
	namespace, path, found := strings.Cut(s, string(Separator))
	if !found {
		return New(DefaultNamespace, s)
	}
	return New(namespace, path)
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// ValidNamespace reports whether s can be used as a key namespace.
// "." and ".." are rejected since the namespace names a directory.
func ValidNamespace(s string) bool {
	return namespacePattern.MatchString(s) && s != "." && s != ".."
}

// ValidPath reports whether s can be used as a key path. Every
// slash-separated segment must be non-empty and neither "." nor "..", so a
// key maps to exactly one file path and back.
func ValidPath(s string) bool {
	return pathPattern.MatchString(s) && cleanSegments(s)
}

func cleanSegments(path string) bool {
	for segment := range strings.SplitSeq(path, "/") {
		switch segment {
		case "", ".", "..":
			return false
		}
	}
	return true
}

// Namespace returns the namespace component.
func (k Key) Namespace() string { return k.namespace }

// Path returns the path component.
func (k Key) Path() string { return k.path }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.namespace == "" && k.path == "" }

// String returns the full "namespace:path" form.
func (k Key) String() string {
	return k.namespace + string(Separator) + k.path
}

// Compact returns the text form with the default namespace omitted.
// It is meant for display; identity is never affected.
func (k Key) Compact() string {
	if k.namespace == DefaultNamespace {
		return k.path
	}
	return k.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	if k.IsZero() {
		return nil, &InvalidKeyError{Reason: "zero key"}
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Compare orders keys by namespace, then by path.
// The result is suitable for slices.SortFunc.
func Compare(a, b Key) int {
	if c := strings.Compare(a.namespace, b.namespace); c != 0 {
		return c
	}
	return strings.Compare(a.path, b.path)
}

// Error implements the error interface for InvalidKeyError.
func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: %s", e.Namespace+string(Separator)+e.Path, e.Reason)
}

// Unwrap returns ErrInvalidKey for errors.Is() compatibility.
func (e *InvalidKeyError) Unwrap() error { return ErrInvalidKey }
