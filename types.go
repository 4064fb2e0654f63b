package asyncschema

import (
	"context"
	"regexp"

	"github.com/reoring/asyncschema/async"
)

// Object is the map-shaped value validated by a Schema.
type Object = map[string]any

// Type names the built-in check a Rule dispatches to.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeMethod  Type = "method" // Go func values.
	TypeRegexp  Type = "regexp"
	TypeInteger Type = "integer"
	TypeFloat   Type = "float"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeEnum    Type = "enum"
	TypeDate    Type = "date"
	TypeURL     Type = "url"
	TypeHex     Type = "hex"
	TypeEmail   Type = "email"
	TypeAny     Type = "any"

	// Dispatch-only types, inferred by the normalizer.
	TypePattern  Type = "pattern"  // Rule.Pattern without an explicit type.
	TypeRequired Type = "required" // Untyped rule: only Required is checked.
)

// ValidatorFunc is a custom synchronous validator.
//
// Return nil to pass, ErrFailed to fail with the rule message (or
// "<field> fails"), a *ValidationError to target a specific field, or any
// other error whose text becomes the message. Errors joined with errors.Join
// or MultiError expand to one ValidationError each.
type ValidatorFunc func(ctx context.Context, rule *Rule, value any, source Object) error

// AsyncValidatorFunc is a custom asynchronous validator. The returned future
// is always awaited or drained, even when its result is discarded by a
// short-circuit policy. Rejections follow the ValidatorFunc conventions.
type AsyncValidatorFunc func(ctx context.Context, rule *Rule, value any, source Object) *async.Future[struct{}]

// Message is a rule-level failure message that replaces the default
// template. A nil Message means "use the template store".
type Message interface {
	Render(field string) string
}

// Text is a fixed message. Text("") is a valid, empty message.
type Text string

func (t Text) Render(string) string { return string(t) }

// MessageFunc builds the message from the full field path.
type MessageFunc func(field string) string

func (fn MessageFunc) Render(field string) string { return fn(field) }

// Rule is one declarative constraint on a field.
type Rule struct {
	Type     Type
	Required bool

	// Pattern is checked against string values. A rule with Pattern and no
	// Type dispatches to TypePattern. PatternSource is compiled once by New.
	Pattern       *regexp.Regexp
	PatternSource string

	// Bounds; strings and arrays use length in code points/elements,
	// numbers their value, dates their unix milliseconds. Len wins over
	// Min/Max.
	Min *float64
	Max *float64
	Len *float64

	Enum       []any
	Whitespace bool

	// Transform maps the raw value before any check. The result is written
	// to a shallow copy of the source, never to the caller's object.
	Transform func(value any) any

	Validator      ValidatorFunc
	AsyncValidator AsyncValidatorFunc

	Message Message

	// Fields is a nested schema applied to object (or array) values.
	Fields Descriptor
	// DefaultField applies to every element of an array (or every key of a
	// map) without a dedicated entry in Fields.
	DefaultField Rules
	// Options overrides the run options for the nested Fields run.
	Options []Option

	field     string
	fullField string
	typ       Type
	compiled  *regexp.Regexp
	check     TypeValidator
	messages  *Messages
}

// ResolvedType is the type the rule dispatches to after inference.
func (r *Rule) ResolvedType() Type { return r.typ }

// pattern returns the compiled Pattern or PatternSource, with the value used
// to render it in messages.
func (r *Rule) pattern() (*regexp.Regexp, any) {
	if r.Pattern != nil {
		return r.Pattern, r.Pattern
	}
	if r.compiled != nil {
		return r.compiled, r.PatternSource
	}
	return nil, nil
}

// Field returns the key of the field inside its direct parent object.
func (r *Rule) Field() string { return r.field }

// FullField returns the dotted path of the field from the validated root.
func (r *Rule) FullField() string {
	if r.fullField == "" {
		return r.field
	}
	return r.fullField
}

// Messages returns the message view of the running validation, so custom
// validators can render the same templates as the built-in ones.
func (r *Rule) Messages() *Messages {
	if r.messages == nil {
		return DefaultMessages()
	}
	return r.messages
}

// deep reports a container rule with a nested schema.
func (r *Rule) deep() bool {
	return (r.typ == TypeObject || r.typ == TypeArray) && (len(r.Fields) > 0 || len(r.DefaultField) > 0)
}

// Rules is an ordered list of rules for one field. Order is execution order.
type Rules []Rule

// Field binds a field name to its rules.
type Field struct {
	Name  string
	Rules Rules
}

// Descriptor is an ordered schema description; declaration order defines
// the order of the reported errors.
type Descriptor []Field

// F builds a Field.
func F(name string, rules ...Rule) Field { return Field{Name: name, Rules: rules} }

// Fields builds a Descriptor.
func Fields(fields ...Field) Descriptor { return Descriptor(fields) }

// Lookup returns the rules declared for name.
func (d Descriptor) Lookup(name string) (Rules, bool) {
	for _, f := range d {
		if f.Name == name {
			return f.Rules, true
		}
	}
	return nil, false
}

// Names returns the field names in declaration order.
func (d Descriptor) Names() []string {
	out := make([]string, 0, len(d))
	for _, f := range d {
		out = append(out, f.Name)
	}
	return out
}

// N returns a pointer to a bound value for Rule.Min/Max/Len.
func N[T ~int | ~int32 | ~int64 | ~float32 | ~float64](v T) *float64 {
	f := float64(v)
	return &f
}
