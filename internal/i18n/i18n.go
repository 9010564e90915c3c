// Package i18n resolves display strings for the supported languages.
//
// Tables live in locales/<code>.yaml and are embedded in the binary. A lookup
// never fails: a key missing from the selected language falls back to the
// English table, and a key missing there too is returned unchanged.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"gopkg.in/yaml.v3"
)

// Language display names. These are the values stored in the application
// state and the persisted snapshot.
const (
	English = "English"
	Kannada = "ಕನ್ನಡ (Kannada)"
	Hindi   = "हिंदी (Hindi)"
)

// DefaultCode is the table every lookup falls back to.
const DefaultCode = "en"

var languageCodes = map[string]string{
	English: "en",
	Kannada: "kn",
	Hindi:   "hi",
}

//go:embed locales/*.yaml
var localeFS embed.FS

// Code returns the table code for a language display name. Unknown names
// map to English.
func Code(language string) string {
	if code, ok := languageCodes[language]; ok {
		return code
	}
	return DefaultCode
}

// Languages returns the selectable languages in display order.
func Languages() []string {
	return []string{English, Kannada, Hindi}
}

// IsSupported reports whether language is one of the selectable languages.
func IsSupported(language string) bool {
	_, ok := languageCodes[language]
	return ok
}

// Resolver looks up translated strings.
type Resolver struct {
	tables map[string]map[string]string
}

// NewResolver builds a resolver from explicit tables keyed by language code.
func NewResolver(tables map[string]map[string]string) *Resolver {
	return &Resolver{tables: tables}
}

// LoadEmbedded parses the embedded locale tables.
func LoadEmbedded() (*Resolver, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locale directory: %w", err)
	}

	tables := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if path.Ext(name) != ".yaml" {
			continue
		}

		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", name, err)
		}

		table := make(map[string]string)
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", name, err)
		}
		tables[name[:len(name)-len(".yaml")]] = table
	}

	if _, ok := tables[DefaultCode]; !ok {
		return nil, fmt.Errorf("locale table %q is missing", DefaultCode)
	}

	return NewResolver(tables), nil
}

// Resolve returns the string for key in language, falling back to English
// and then to the key itself.
func (r *Resolver) Resolve(language, key string) string {
	if value, ok := r.tables[Code(language)][key]; ok && value != "" {
		return value
	}
	if value, ok := r.tables[DefaultCode][key]; ok && value != "" {
		return value
	}
	return key
}

// Has reports whether the table for code defines key.
func (r *Resolver) Has(code, key string) bool {
	_, ok := r.tables[code][key]
	return ok
}

// Keys returns every key defined in the table for code.
func (r *Resolver) Keys(code string) []string {
	keys := make([]string, 0, len(r.tables[code]))
	for k := range r.tables[code] {
		keys = append(keys, k)
	}
	return keys
}

var (
	defaultResolver     *Resolver
	defaultResolverOnce sync.Once
)

// Default returns the resolver backed by the embedded tables.
// The tables are compiled in, so a parse failure is a build defect.
func Default() *Resolver {
	defaultResolverOnce.Do(func() {
		r, err := LoadEmbedded()
		if err != nil {
			panic(fmt.Sprintf("i18n: %v", err))
		}
		defaultResolver = r
	})
	return defaultResolver
}

// T resolves key for language using the embedded tables.
func T(language, key string) string {
	return Default().Resolve(language, key)
}
