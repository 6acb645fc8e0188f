// SPDX-License-Identifier: MPL-2.0

package category

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/packforge/packforge/pkg/key"
	"github.com/packforge/packforge/pkg/resource"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/tidwall/jsonc"
)

var (
	// ErrKindMismatch is the sentinel error wrapped by KindMismatchError.
	ErrKindMismatch = errors.New("resource kind mismatch")

	// ErrMalformed is wrapped by every decode error caused by content that
	// parses but does not have the expected shape.
	ErrMalformed = errors.New("malformed resource")
)

type (
	// KindMismatchError is returned when a resource is handed to the codec
	// of another category.
	KindMismatchError struct {
		Want resource.Kind
		Got  resource.Kind
	}

	fontFile struct {
		Providers []resource.Document `json:"providers"`
	}

	atlasFile struct {
		Sources []resource.Document `json:"sources"`
	}

	overrideEntry struct {
		Model     string             `json:"model"`
		Predicate map[string]float64 `json:"predicate"`
	}
)

// Error implements the error interface.
func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("resource kind mismatch: expected %s, got %s", e.Want, e.Got)
}

// Unwrap returns ErrKindMismatch for errors.Is() compatibility.
func (e *KindMismatchError) Unwrap() error { return ErrKindMismatch }

// MarshalCanonical encodes v as RFC 8785 canonical JSON: object members
// sorted, no insignificant whitespace, numbers in their shortest form.
// Equal values therefore always produce equal bytes.
func MarshalCanonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsoncanonicalizer.Transform(raw)
}

// Unmarshal decodes JSON into v, accepting comments and trailing commas when
// lenient is set.
func Unmarshal(data []byte, v any, opts DecodeOptions) error {
	if opts.Lenient {
		data = jsonc.ToJSON(data)
	}
	return json.Unmarshal(data, v)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func decodeObject(data []byte, opts DecodeOptions) (resource.Document, error) {
	var doc resource.Document
	if err := Unmarshal(data, &doc, opts); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, malformed("expected a JSON object")
	}
	return doc, nil
}

type bodied interface {
	resource.Resource
	Body() resource.Document
}

func encodeDocument(r resource.Resource, _ int) ([]byte, error) {
	d, ok := r.(bodied)
	if !ok {
		return nil, fmt.Errorf("%s %s has no document body", r.Kind(), r.Key())
	}
	return MarshalCanonical(d.Body())
}

func documentDecoder(kind resource.Kind) Decoder {
	return func(data []byte, k key.Key, opts DecodeOptions) (resource.Resource, error) {
		doc, err := decodeObject(data, opts)
		if err != nil {
			return nil, err
		}
		r, _ := resource.NewDocument(kind, k, doc)
		return r, nil
	}
}

type blobber interface {
	resource.Resource
	Data() []byte
}

func encodeBlob(r resource.Resource, _ int) ([]byte, error) {
	b, ok := r.(blobber)
	if !ok {
		return nil, fmt.Errorf("%s %s has no binary payload", r.Kind(), r.Key())
	}
	return b.Data(), nil
}

func decodeSound(data []byte, k key.Key, _ DecodeOptions) (resource.Resource, error) {
	return resource.NewSound(k, data), nil
}

func decodeText(data []byte, k key.Key, _ DecodeOptions) (resource.Resource, error) {
	return resource.NewText(k, data), nil
}

func decodeTexture(data []byte, k key.Key, _ DecodeOptions) (resource.Resource, error) {
	return resource.NewTexture(k, data), nil
}

func encodeModel(r resource.Resource, _ int) ([]byte, error) {
	m := r.(resource.Model)
	body := m.Body()
	if overrides := m.Overrides(); len(overrides) > 0 {
		entries := make([]overrideEntry, len(overrides))
		for i, o := range overrides {
			predicate := make(map[string]float64)
			for _, p := range o.Predicates() {
				predicate[p.Name] = p.Value
			}
			entries[i] = overrideEntry{Model: o.Model().String(), Predicate: predicate}
		}
		body["overrides"] = entries
	}
	return MarshalCanonical(body)
}

func decodeModel(data []byte, k key.Key, opts DecodeOptions) (resource.Resource, error) {
	doc, err := decodeObject(data, opts)
	if err != nil {
		return nil, err
	}
	raw, ok := doc["overrides"]
	if !ok {
		return resource.NewModel(k, doc), nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, malformed("overrides must be an array")
	}
	overrides := make([]resource.ItemOverride, 0, len(list))
	for i, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, malformed("overrides[%d] must be an object", i)
		}
		name, ok := entry["model"].(string)
		if !ok {
			return nil, malformed("overrides[%d].model must be a string", i)
		}
		model, err := key.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("overrides[%d].model: %w", i, err)
		}
		predicates, err := decodePredicates(entry["predicate"], i)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, resource.NewItemOverride(model, predicates...))
	}
	return resource.NewModel(k, doc, overrides...), nil
}

func decodePredicates(raw any, index int) ([]resource.Predicate, error) {
	if raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, malformed("overrides[%d].predicate must be an object", index)
	}
	predicates := make([]resource.Predicate, 0, len(obj))
	for name, v := range obj {
		value, ok := v.(float64)
		if !ok {
			return nil, malformed("overrides[%d].predicate.%s must be a number", index, name)
		}
		predicates = append(predicates, resource.Predicate{Name: name, Value: value})
	}
	return predicates, nil
}

func encodeFont(r resource.Resource, _ int) ([]byte, error) {
	return MarshalCanonical(fontFile{Providers: r.(resource.Font).Providers()})
}

func decodeFont(data []byte, k key.Key, opts DecodeOptions) (resource.Resource, error) {
	var f fontFile
	if err := Unmarshal(data, &f, opts); err != nil {
		return nil, err
	}
	return resource.NewFont(k, f.Providers...), nil
}

func encodeAtlas(r resource.Resource, _ int) ([]byte, error) {
	return MarshalCanonical(atlasFile{Sources: r.(resource.Atlas).Sources()})
}

func decodeAtlas(data []byte, k key.Key, opts DecodeOptions) (resource.Resource, error) {
	var a atlasFile
	if err := Unmarshal(data, &a, opts); err != nil {
		return nil, err
	}
	return resource.NewAtlas(k, a.Sources...), nil
}

func encodeLanguage(r resource.Resource, _ int) ([]byte, error) {
	return MarshalCanonical(r.(resource.Language).Translations())
}

func decodeLanguage(data []byte, k key.Key, opts DecodeOptions) (resource.Resource, error) {
	var translations map[string]string
	if err := Unmarshal(data, &translations, opts); err != nil {
		return nil, err
	}
	return resource.NewLanguage(k, translations), nil
}

func encodeSoundRegistry(r resource.Resource, _ int) ([]byte, error) {
	return MarshalCanonical(r.(resource.SoundRegistry).Events())
}

func decodeSoundRegistry(data []byte, k key.Key, opts DecodeOptions) (resource.Resource, error) {
	var events map[string]resource.Document
	if err := Unmarshal(data, &events, opts); err != nil {
		return nil, err
	}
	return resource.NewSoundRegistry(k.Namespace(), events)
}

// EncodeMeta returns the sidecar bytes of r. ok is false when the category
// has no sidecar or r carries no metadata.
func (c *Category) EncodeMeta(r resource.Resource) (data []byte, ok bool, err error) {
	if !c.hasMeta {
		return nil, false, nil
	}
	t, isTexture := r.(resource.Texture)
	if !isTexture {
		return nil, false, &KindMismatchError{Want: c.kind, Got: r.Kind()}
	}
	meta, present := t.Meta()
	if !present {
		return nil, false, nil
	}
	data, err = MarshalCanonical(meta)
	return data, err == nil, err
}

// AttachMeta decodes sidecar bytes and returns r carrying them.
func (c *Category) AttachMeta(r resource.Resource, data []byte, opts DecodeOptions) (resource.Resource, error) {
	t, ok := r.(resource.Texture)
	if !c.hasMeta || !ok {
		return nil, &KindMismatchError{Want: resource.KindTexture, Got: r.Kind()}
	}
	meta, err := decodeObject(data, opts)
	if err != nil {
		return nil, err
	}
	return t.WithMeta(meta), nil
}
