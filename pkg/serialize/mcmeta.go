// SPDX-License-Identifier: MPL-2.0

package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/packforge/packforge/pkg/category"
	"github.com/packforge/packforge/pkg/pack"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

const (
	// DescriptorFile is the pack descriptor at the pack root.
	DescriptorFile = "pack.mcmeta"
	// IconFile is the optional pack icon at the pack root.
	IconFile = "pack.png"

	descriptorCategory = "descriptor"
)

type (
	// overlayEntry is one element of overlays.entries in pack.mcmeta.
	overlayEntry struct {
		Directory string
		Formats   pack.FormatRange
	}

	mcmetaPack struct {
		PackFormat       int             `json:"pack_format"`
		Description      json.RawMessage `json:"description"`
		SupportedFormats []int           `json:"supported_formats,omitempty"`
	}

	mcmetaOverlay struct {
		Directory string `json:"directory"`
		Formats   []int  `json:"formats"`
	}

	mcmetaOverlays struct {
		Entries []mcmetaOverlay `json:"entries"`
	}
)

// encodeDescriptor renders pack.mcmeta. Every overlay is declared with its
// range so that a reader can restore it.
func encodeDescriptor(d *pack.Descriptor, overlays []*pack.Overlay) ([]byte, error) {
	doc := make(map[string]any, len(d.Sections)+2)
	for name, raw := range d.Sections {
		doc[name] = raw
	}

	description := d.DescriptionJSON
	if len(description) == 0 {
		quoted, err := json.Marshal(d.Description)
		if err != nil {
			return nil, err
		}
		description = quoted
	}
	section := mcmetaPack{PackFormat: d.Format, Description: description}
	if d.Supported != nil {
		section.SupportedFormats = []int{d.Supported.Min, d.Supported.Max}
	}
	doc["pack"] = section

	if len(overlays) > 0 {
		entries := make([]mcmetaOverlay, len(overlays))
		for i, o := range overlays {
			entries[i] = mcmetaOverlay{
				Directory: o.Directory(),
				Formats:   []int{o.Formats().Min, o.Formats().Max},
			}
		}
		doc["overlays"] = mcmetaOverlays{Entries: entries}
	}

	return category.MarshalCanonical(doc)
}

// decodeDescriptor parses pack.mcmeta. Format ranges may be written as a
// single number, a [min, max] pair, or a {min_inclusive, max_inclusive}
// object; newer packs may declare min_format and max_format instead.
func decodeDescriptor(data []byte, lenient bool) (*pack.Descriptor, []overlayEntry, error) {
	if lenient {
		data = jsonc.ToJSON(data)
	}
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("%w: not valid JSON", category.ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, nil, fmt.Errorf("%w: expected a JSON object", category.ErrMalformed)
	}
	section := root.Get("pack")
	if !section.IsObject() {
		return nil, nil, fmt.Errorf("%w: missing pack section", category.ErrMalformed)
	}

	d := &pack.Descriptor{}
	supported, hasSupported, err := decodeFormats(section, "supported_formats")
	if err != nil {
		return nil, nil, err
	}
	if hasSupported {
		d.Supported = &supported
	}

	switch format := section.Get("pack_format"); {
	case format.Type == gjson.Number:
		d.Format = int(format.Int())
	case hasSupported:
		d.Format = supported.Min
	default:
		return nil, nil, fmt.Errorf("%w: pack section declares no format", category.ErrMalformed)
	}

	switch desc := section.Get("description"); {
	case desc.Type == gjson.String:
		d.Description = desc.String()
	case desc.Exists():
		d.DescriptionJSON = json.RawMessage(desc.Raw)
	}

	root.ForEach(func(name, value gjson.Result) bool {
		if n := name.String(); n != "pack" && n != "overlays" {
			if d.Sections == nil {
				d.Sections = make(map[string]json.RawMessage)
			}
			d.Sections[n] = json.RawMessage(value.Raw)
		}
		return true
	})

	var entries []overlayEntry
	for i, e := range root.Get("overlays.entries").Array() {
		formats, ok, err := decodeFormats(e, "formats")
		if err != nil {
			return nil, nil, fmt.Errorf("overlays.entries[%d]: %w", i, err)
		}
		if !ok {
			return nil, nil, fmt.Errorf("%w: overlays.entries[%d] declares no formats", category.ErrMalformed, i)
		}
		entries = append(entries, overlayEntry{Directory: e.Get("directory").String(), Formats: formats})
	}
	return d, entries, nil
}

// decodeFormats reads the range stored under name in obj, falling back to
// the min_format/max_format pair.
func decodeFormats(obj gjson.Result, name string) (pack.FormatRange, bool, error) {
	if v := obj.Get(name); v.Exists() {
		r, err := decodeRange(v)
		return r, err == nil, err
	}
	minFormat, maxFormat := obj.Get("min_format"), obj.Get("max_format")
	if !minFormat.Exists() || !maxFormat.Exists() {
		return pack.FormatRange{}, false, nil
	}
	r, err := pack.NewFormatRange(majorVersion(minFormat), majorVersion(maxFormat))
	return r, err == nil, err
}

func decodeRange(v gjson.Result) (pack.FormatRange, error) {
	switch {
	case v.Type == gjson.Number:
		return pack.Single(int(v.Int())), nil
	case v.IsArray():
		values := v.Array()
		switch len(values) {
		case 1:
			return pack.Single(int(values[0].Int())), nil
		case 2:
			return pack.NewFormatRange(int(values[0].Int()), int(values[1].Int()))
		}
	case v.IsObject():
		minFormat, maxFormat := v.Get("min_inclusive"), v.Get("max_inclusive")
		if minFormat.Exists() && maxFormat.Exists() {
			return pack.NewFormatRange(int(minFormat.Int()), int(maxFormat.Int()))
		}
	}
	return pack.FormatRange{}, fmt.Errorf("%w: unsupported format range %s", category.ErrMalformed, v.Raw)
}

// majorVersion reads a format written either as a number or as a
// [major, minor] pair.
func majorVersion(v gjson.Result) int {
	if v.IsArray() {
		if values := v.Array(); len(values) > 0 {
			return int(values[0].Int())
		}
		return 0
	}
	return int(v.Int())
}
