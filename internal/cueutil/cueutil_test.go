// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Source: {
	path:  string & !=""
	weight: int & >=0 | *1
}

#Doc: {
	name:     string
	sources: [...#Source]
	enabled?: bool
}
`

type (
	testSource struct {
		Path   string `json:"path"`
		Weight int    `json:"weight"`
	}

	testDoc struct {
		Name    string       `json:"name"`
		Sources []testSource `json:"sources"`
		Enabled bool         `json:"enabled,omitempty"`
	}
)

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	data := []byte(`
name: "demo"
sources: [{path: "a"}, {path: "b", weight: 3}]
`)
	result, err := ParseAndDecode[testDoc]([]byte(testSchema), data, "#Doc")
	if err != nil {
		t.Fatalf("ParseAndDecode: %v", err)
	}
	doc := result.Value
	if doc.Name != "demo" || len(doc.Sources) != 2 {
		t.Fatalf("decoded %+v", doc)
	}
	if doc.Sources[0].Weight != 1 || doc.Sources[1].Weight != 3 {
		t.Errorf("weights = %d, %d, want the default 1 and 3", doc.Sources[0].Weight, doc.Sources[1].Weight)
	}
	if result.Unified.Err() != nil {
		t.Errorf("Unified.Err() = %v", result.Unified.Err())
	}
}

func TestParseAndDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		opts   []Option
		substr []string
	}{
		{
			name:   "syntax error",
			data:   `name: "x`,
			opts:   []Option{WithFilename("pack.cue")},
			substr: []string{"pack.cue"},
		},
		{
			name:   "constraint violation carries the path",
			data:   `name: "x", sources: [{path: "a"}, {path: ""}]`,
			opts:   []Option{WithFilename("pack.cue")},
			substr: []string{"pack.cue", "sources[1].path"},
		},
		{
			name:   "unknown field",
			data:   `name: "x", sources: [], extra: 1`,
			substr: []string{"<input>", "extra"},
		},
		{
			name:   "missing field in concrete mode",
			data:   `sources: []`,
			substr: []string{"name"},
		},
		{
			name:   "too large",
			data:   `name: "a very long name"`,
			opts:   []Option{WithMaxFileSize(8)},
			substr: []string{"exceeds maximum 8 bytes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(tt.data), "#Doc", tt.opts...)
			if err == nil {
				t.Fatal("expected an error")
			}
			for _, s := range tt.substr {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("error %q does not mention %q", err, s)
				}
			}
		})
	}
}

func TestParseAndDecode_Partial(t *testing.T) {
	t.Parallel()

	result, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`enabled: true`), "#Doc", WithConcrete(false))
	if err != nil {
		t.Fatalf("ParseAndDecode: %v", err)
	}
	if !result.Value.Enabled || result.Value.Name != "" {
		t.Errorf("decoded %+v", result.Value)
	}

	_, err = ParseAndDecode[testDoc]([]byte(testSchema), []byte(`sources: [{path: ""}]`), "#Doc", WithConcrete(false))
	if err == nil || !strings.Contains(err.Error(), "sources[0].path") {
		t.Errorf("partial documents are still validated, got %v", err)
	}
}

func TestParseAndDecode_BadSchema(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x"`), "#Missing")
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("err = %v, want an internal error", err)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("nil error should stay nil")
	}

	plain := errors.New("boom")
	err := FormatError(plain, "x.cue")
	if !errors.Is(err, plain) || !strings.HasPrefix(err.Error(), "x.cue: ") {
		t.Errorf("FormatError(plain) = %v", err)
	}

	_, err = ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: 1`), "#Doc", WithFilename("doc.cue"))
	var validation *ValidationError
	if !errors.As(err, &validation) || validation.Filename != "doc.cue" || validation.Err == nil {
		t.Errorf("err = %v, want a *ValidationError keeping the CUE error", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"output"}, "output"},
		{[]string{"sources", "0", "path"}, "sources[0].path"},
		{[]string{"overlays", "2"}, "overlays[2]"},
		{[]string{"0"}, "0"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
