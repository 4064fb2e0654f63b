// Package i18n ships the localized default message catalogs.
//
// Catalogs are YAML documents embedded from locales/<tag>.yaml. Nested
// mappings are flattened into dotted keys ("types.string", "string.len").
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

var (
	// ErrInvalidCatalog reports a catalog document that is not a mapping
	// of strings.
	ErrInvalidCatalog = errors.New("i18n: invalid catalog")
	// ErrUnknownLocale reports a locale without an embedded catalog.
	ErrUnknownLocale = errors.New("i18n: unknown locale")
)

// Catalog is a flat key -> template mapping for one language.
type Catalog struct {
	Tag      language.Tag
	Messages map[string]string
}

// Template returns the template registered for key.
func (c Catalog) Template(key string) (string, bool) {
	s, ok := c.Messages[key]
	return s, ok
}

type registry struct {
	tags     []language.Tag
	catalogs map[language.Tag]Catalog
	matcher  language.Matcher
	err      error
}

var (
	loadOnce sync.Once
	loaded   registry
)

func load() registry {
	loadOnce.Do(func() {
		loaded = registry{catalogs: map[language.Tag]Catalog{}}
		entries, err := localesFS.ReadDir("locales")
		if err != nil {
			loaded.err = err
			return
		}
		sort.Slice(entries, func(i, j int) bool {
			// English first so the matcher falls back to it.
			return rank(entries[i].Name()) < rank(entries[j].Name())
		})
		for _, e := range entries {
			name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
			tag, err := language.Parse(name)
			if err != nil {
				loaded.err = fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, e.Name(), err)
				return
			}
			raw, err := localesFS.ReadFile("locales/" + e.Name())
			if err != nil {
				loaded.err = err
				return
			}
			msgs, err := Parse(raw)
			if err != nil {
				loaded.err = fmt.Errorf("%s: %w", e.Name(), err)
				return
			}
			loaded.tags = append(loaded.tags, tag)
			loaded.catalogs[tag] = Catalog{Tag: tag, Messages: msgs}
		}
		loaded.matcher = language.NewMatcher(loaded.tags)
	})
	return loaded
}

func rank(name string) string {
	if strings.HasPrefix(name, "en.") {
		return ""
	}
	return name
}

// Parse flattens a YAML catalog document into dotted keys.
func Parse(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidCatalog)
	}
	out := map[string]string{}
	if err := flatten("", doc, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch x := v.(type) {
		case string:
			out[key] = x
		case map[string]any:
			if err := flatten(key, x, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: key %q: expected string or mapping, got %T", ErrInvalidCatalog, key, v)
		}
	}
	return nil
}

// Default returns the English catalog.
func Default() Catalog {
	c, err := Lookup(language.English)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the catalog for exactly tag.
func Lookup(tag language.Tag) (Catalog, error) {
	r := load()
	if r.err != nil {
		return Catalog{}, r.err
	}
	c, ok := r.catalogs[tag]
	if !ok {
		return Catalog{}, fmt.Errorf("%w: %s", ErrUnknownLocale, tag)
	}
	return c, nil
}

// Match returns the catalog closest to the preferred tags, falling back to
// English.
func Match(preferred ...language.Tag) Catalog {
	r := load()
	if r.err != nil || len(r.tags) == 0 {
		return Default()
	}
	_, idx, _ := r.matcher.Match(preferred...)
	return r.catalogs[r.tags[idx]]
}

// Supported lists the embedded locales, English first.
func Supported() []language.Tag {
	r := load()
	return append([]language.Tag(nil), r.tags...)
}
