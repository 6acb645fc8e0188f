// SPDX-License-Identifier: MPL-2.0

package merge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConflict is the sentinel error wrapped by ConflictError.
var ErrConflict = errors.New("merge conflict")

type (
	// Conflict is one collision the fail-on-error strategy refused to resolve.
	Conflict struct {
		// Overlay is the overlay directory, empty for the root container.
		Overlay string
		// Category is the resource kind name, or one of "descriptor", "icon",
		// "file" and "overlay" for the entries that are not resources.
		Category string
		// Key is the resource key, file path, or overlay directory.
		Key string
		// Entries lists the sub-entries both sides define differently when a
		// structural kind could only partially combine, such as translation
		// keys of a language.
		Entries []string
	}

	// ConflictError aggregates every conflict of a failed merge. It wraps
	// ErrConflict for errors.Is().
	ConflictError struct {
		Conflicts []Conflict
	}
)

// String renders the conflict for diagnostics.
func (c Conflict) String() string {
	var sb strings.Builder
	if c.Overlay != "" {
		fmt.Fprintf(&sb, "overlay %s: ", c.Overlay)
	}
	sb.WriteString(c.Category)
	sb.WriteByte(' ')
	sb.WriteString(c.Key)
	if len(c.Entries) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(c.Entries, ", "))
	}
	return sb.String()
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 1 {
		return "merge conflict: " + e.Conflicts[0].String()
	}
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%d merge conflicts: %s", len(e.Conflicts), strings.Join(parts, "; "))
}

// Unwrap returns ErrConflict for errors.Is() compatibility.
func (e *ConflictError) Unwrap() error { return ErrConflict }
