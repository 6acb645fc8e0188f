// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"maps"

	"github.com/packforge/packforge/pkg/key"
)

// SoundRegistryPath is the key path of every sound registry.
const SoundRegistryPath = "sounds"

type (
	// Font is an ordered list of glyph providers. Earlier providers win when
	// several cover the same code point.
	Font struct {
		key       key.Key
		providers []Document
	}

	// Atlas lists the sprite sources stitched into a texture atlas.
	Atlas struct {
		key     key.Key
		sources []Document
	}

	// Language is a flat table of translation keys for one locale.
	Language struct {
		key          key.Key
		translations map[string]string
	}

	// SoundRegistry is the per-namespace sounds.json table mapping sound
	// event names to their definitions.
	SoundRegistry struct {
		key    key.Key
		events map[string]Document
	}
)

// NewFont creates a font from its providers, in priority order.
func NewFont(k key.Key, providers ...Document) Font {
	return Font{key: k, providers: cloneDocuments(providers)}
}

// Key returns the resource key.
func (f Font) Key() key.Key { return f.key }

// Kind implements Resource.
func (Font) Kind() Kind { return KindFont }

// Providers returns a copy of the providers in priority order.
func (f Font) Providers() []Document { return cloneDocuments(f.providers) }

// WithProviders returns a copy of the font with providers appended.
func (f Font) WithProviders(providers ...Document) Font {
	f.providers = append(cloneDocuments(f.providers), cloneDocuments(providers)...)
	return f
}

// NewAtlas creates an atlas from its sprite sources.
func NewAtlas(k key.Key, sources ...Document) Atlas {
	return Atlas{key: k, sources: cloneDocuments(sources)}
}

// Key returns the resource key.
func (a Atlas) Key() key.Key { return a.key }

// Kind implements Resource.
func (Atlas) Kind() Kind { return KindAtlas }

// Sources returns a copy of the sprite sources.
func (a Atlas) Sources() []Document { return cloneDocuments(a.sources) }

// WithSources returns a copy of the atlas with sources appended.
func (a Atlas) WithSources(sources ...Document) Atlas {
	a.sources = append(cloneDocuments(a.sources), cloneDocuments(sources)...)
	return a
}

// NewLanguage creates a language table. The key path is the locale code,
// for example "en_us".
func NewLanguage(k key.Key, translations map[string]string) Language {
	return Language{key: k, translations: maps.Clone(translations)}
}

// Key returns the resource key.
func (l Language) Key() key.Key { return l.key }

// Kind implements Resource.
func (Language) Kind() Kind { return KindLanguage }

// Translations returns a copy of the translation table.
func (l Language) Translations() map[string]string { return maps.Clone(l.translations) }

// Translation looks up a single translation key.
func (l Language) Translation(name string) (string, bool) {
	v, ok := l.translations[name]
	return v, ok
}

// Len returns the number of translation keys.
func (l Language) Len() int { return len(l.translations) }

// SortedNames returns the translation keys in lexical order.
func (l Language) SortedNames() []string { return sortedKeys(l.translations) }

// With returns a copy of the language with one translation set.
func (l Language) With(name, value string) Language {
	t := maps.Clone(l.translations)
	if t == nil {
		t = make(map[string]string, 1)
	}
	t[name] = value
	l.translations = t
	return l
}

// NewSoundRegistry creates the sound registry of a namespace.
func NewSoundRegistry(namespace string, events map[string]Document) (SoundRegistry, error) {
	k, err := key.New(namespace, SoundRegistryPath)
	if err != nil {
		return SoundRegistry{}, err
	}
	out := make(map[string]Document, len(events))
	for name, ev := range events {
		out[name] = ev.Clone()
	}
	return SoundRegistry{key: k, events: out}, nil
}

// Key returns the resource key, always "<namespace>:sounds".
func (s SoundRegistry) Key() key.Key { return s.key }

// Kind implements Resource.
func (SoundRegistry) Kind() Kind { return KindSoundRegistry }

// Event returns a copy of one event definition.
func (s SoundRegistry) Event(name string) (Document, bool) {
	ev, ok := s.events[name]
	return ev.Clone(), ok
}

// Events returns a copy of every event definition.
func (s SoundRegistry) Events() map[string]Document {
	out := make(map[string]Document, len(s.events))
	for name, ev := range s.events {
		out[name] = ev.Clone()
	}
	return out
}

// EventNames returns the event names in lexical order.
func (s SoundRegistry) EventNames() []string { return sortedKeys(s.events) }

// WithEvent returns a copy of the registry with one event set.
func (s SoundRegistry) WithEvent(name string, event Document) SoundRegistry {
	out := make(map[string]Document, len(s.events)+1)
	for n, ev := range s.events {
		out[n] = ev
	}
	out[name] = event.Clone()
	s.events = out
	return s
}
