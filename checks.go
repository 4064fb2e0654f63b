package asyncschema

import (
	"strings"

	"github.com/reoring/asyncschema/internal/format"
	"github.com/reoring/asyncschema/internal/patterns"
)

// Check is the input of a TypeValidator. Failures accumulate in call order.
type Check struct {
	Rule     *Rule
	Type     Type
	Value    any
	Source   Object
	Messages *Messages

	failures []string
}

// Fail records a failure message.
func (c *Check) Fail(message string) { c.failures = append(c.failures, message) }

// Failf records the rendered template key.
func (c *Check) Failf(key string, args ...any) { c.Fail(c.Messages.Render(key, args...)) }

// Failures returns the recorded messages.
func (c *Check) Failures() []string { return c.failures }

// Empty applies the empty-value policy for t (the rule type when t is "").
func (c *Check) Empty(t Type) bool {
	if t == "" {
		t = c.Type
	}
	return isEmptyValue(c.Value, t)
}

// Skip reports an empty value on a non-required rule: nothing to check.
func (c *Check) Skip(t Type) bool { return !c.Rule.Required && c.Empty(t) }

// Require fails with the "required" template when the rule is required and
// the value is empty for t (the rule type when t is "").
func (c *Check) Require(t Type) {
	if c.Rule.Required && c.Empty(t) {
		c.Failf(MsgRequired, c.Rule.FullField())
	}
}

var typeGuards = map[Type]func(any) bool{
	TypeString:  func(v any) bool { _, ok := v.(string); return ok },
	TypeBoolean: func(v any) bool { _, ok := v.(bool); return ok },
	TypeNumber:  func(v any) bool { _, ok := toNumber(v); return ok },
	TypeInteger: isInteger,
	TypeFloat:   isFloat,
	TypeArray:   isArray,
	TypeObject:  isObject,
	TypeMethod:  isMethod,
	TypeRegexp:  isRegexp,
	TypeDate:    isDate,
	TypeEmail: func(v any) bool {
		s, ok := v.(string)
		return ok && patterns.Email(s)
	},
	TypeURL: func(v any) bool {
		s, ok := v.(string)
		return ok && patterns.URL(s)
	},
	TypeHex: func(v any) bool {
		s, ok := v.(string)
		return ok && patterns.Hex(s)
	},
}

// TypeOf fails with the "types.<type>" template when the value does not
// have the rule type. Types without a guard always pass.
func (c *Check) TypeOf() {
	if c.Rule.Required && c.Value == nil {
		c.Require("")
		return
	}
	guard, ok := typeGuards[c.Type]
	if !ok {
		return
	}
	if !guard(c.Value) {
		c.Failf(TypeMessageKey(c.Type), c.Rule.FullField(), string(c.Type))
	}
}

// Range checks Len, Min and Max against v: code points for strings, length
// for arrays, the value for numbers.
func (c *Check) Range(v any) {
	r := c.Rule
	if r.Len == nil && r.Min == nil && r.Max == nil {
		return
	}
	var (
		key string
		val float64
	)
	if f, ok := toNumber(v); ok {
		key, val = "number", f
	} else if s, ok := v.(string); ok {
		key, val = "string", float64(codePoints(s))
	} else if n, ok := arrayLen(v); ok {
		key, val = "array", float64(n)
	} else {
		return
	}
	field := r.FullField()
	switch {
	case r.Len != nil:
		if val != *r.Len {
			c.Failf(key+".len", field, *r.Len)
		}
	case r.Min != nil && r.Max == nil:
		if val < *r.Min {
			c.Failf(key+".min", field, *r.Min)
		}
	case r.Max != nil && r.Min == nil:
		if val > *r.Max {
			c.Failf(key+".max", field, *r.Max)
		}
	default:
		if val < *r.Min || val > *r.Max {
			c.Failf(key+".range", field, *r.Min, *r.Max)
		}
	}
}

// EnumOf fails unless the value is a member of Rule.Enum.
func (c *Check) EnumOf() {
	for _, allowed := range c.Rule.Enum {
		if strictEqual(c.Value, allowed) {
			return
		}
	}
	parts := make([]string, len(c.Rule.Enum))
	for i, v := range c.Rule.Enum {
		parts[i] = format.String(v)
	}
	c.Failf(MsgEnum, c.Rule.FullField(), strings.Join(parts, ", "))
}

// Match fails when the rule pattern does not match the value.
func (c *Check) Match() {
	re, label := c.Rule.pattern()
	if re == nil {
		return
	}
	s, ok := c.Value.(string)
	if !ok {
		s = format.String(c.Value)
	}
	if !re.MatchString(s) {
		c.Failf(MsgPatternMismatch, c.Rule.FullField(), c.Value, label)
	}
}

// Whitespace fails for strings made only of whitespace.
func (c *Check) Whitespace() {
	if s, ok := c.Value.(string); ok && strings.TrimSpace(s) == "" {
		c.Failf(MsgWhitespace, c.Rule.FullField())
	}
}
