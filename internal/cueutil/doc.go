// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user-written CUE documents against embedded
// schemas and decodes them into Go structs.
//
// Both the tool configuration and the build manifest go through
// ParseAndDecode:
//
//	//go:embed manifest_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[Manifest](schema, data, "#Manifest",
//	    cueutil.WithFilename("pack.cue"))
package cueutil
