// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors: ActionableError carries the
// failed operation and fix suggestions, and Issue holds a Markdown guide
// rendered in the terminal for the most common failures.
package issue
