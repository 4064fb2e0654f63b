package asyncschema

import (
	"sort"
	"sync/atomic"

	"golang.org/x/text/language"

	"github.com/reoring/asyncschema/i18n"
	"github.com/reoring/asyncschema/internal/format"
)

// Message keys of the template store.
const (
	MsgDefault         = "default"
	MsgRequired        = "required"
	MsgEnum            = "enum"
	MsgWhitespace      = "whitespace"
	MsgDateFormat      = "date.format"
	MsgDateParse       = "date.parse"
	MsgDateInvalid     = "date.invalid"
	MsgPatternMismatch = "pattern.mismatch"
)

// TypeMessageKey is the key of the "not a <type>" template for t.
func TypeMessageKey(t Type) string { return "types." + string(t) }

// Template renders a message from positional arguments; the field path is
// always the first argument.
type Template interface {
	Render(args ...any) string
}

// Format is a template string with %s, %d, %j and %% placeholders.
type Format string

func (f Format) Render(args ...any) string { return format.Sprintf(string(f), args...) }

// TemplateFunc computes the message from the positional arguments.
type TemplateFunc func(args ...any) string

func (fn TemplateFunc) Render(args ...any) string { return fn(args...) }

// Messages is an immutable view of the template store. Merge returns a new
// view and never modifies the receiver or the overrides.
type Messages struct {
	locale  language.Tag
	entries map[string]Template
}

// NewMessages builds a view from entries. The map is copied.
func NewMessages(locale language.Tag, entries map[string]Template) *Messages {
	m := &Messages{locale: locale, entries: make(map[string]Template, len(entries))}
	for k, v := range entries {
		if v != nil {
			m.entries[k] = v
		}
	}
	return m
}

// MessagesFromCatalog builds a view from a localized catalog.
func MessagesFromCatalog(c i18n.Catalog) *Messages {
	m := &Messages{locale: c.Tag, entries: make(map[string]Template, len(c.Messages))}
	for k, v := range c.Messages {
		m.entries[k] = Format(v)
	}
	return m
}

// Locale is the language of the view's base catalog.
func (m *Messages) Locale() language.Tag { return m.locale }

// Get returns the template registered for key.
func (m *Messages) Get(key string) (Template, bool) {
	t, ok := m.entries[key]
	return t, ok
}

// Render renders key, falling back to the "default" template.
func (m *Messages) Render(key string, args ...any) string {
	if t, ok := m.entries[key]; ok {
		return t.Render(args...)
	}
	if t, ok := m.entries[MsgDefault]; ok {
		return t.Render(args...)
	}
	return ""
}

// Keys lists the registered keys in sorted order.
func (m *Messages) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a copy of m with overrides applied. Nil templates in
// overrides are ignored; keys absent from overrides are kept.
func (m *Messages) Merge(overrides map[string]Template) *Messages {
	out := &Messages{locale: m.locale, entries: make(map[string]Template, len(m.entries)+len(overrides))}
	for k, v := range m.entries {
		out.entries[k] = v
	}
	for k, v := range overrides {
		if v != nil {
			out.entries[k] = v
		}
	}
	return out
}

var defaultMessages atomic.Pointer[Messages]

func init() {
	defaultMessages.Store(MessagesFromCatalog(i18n.Default()))
}

// DefaultMessages returns the process-wide default view.
func DefaultMessages() *Messages { return defaultMessages.Load() }

// SetDefaultMessages replaces the process-wide default view. Nil restores
// the English catalog. Schemas without instance overrides pick the new view
// up on their next Validate call.
func SetDefaultMessages(m *Messages) {
	if m == nil {
		m = MessagesFromCatalog(i18n.Default())
	}
	defaultMessages.Store(m)
}

// SetLocale switches the process-wide default to the embedded catalog
// closest to the preferred tags and returns the chosen locale.
func SetLocale(preferred ...language.Tag) language.Tag {
	c := i18n.Match(preferred...)
	defaultMessages.Store(MessagesFromCatalog(c))
	return c.Tag
}

// ResetDefaultMessages restores the English catalog.
func ResetDefaultMessages() { SetDefaultMessages(nil) }
