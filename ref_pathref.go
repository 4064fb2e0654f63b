package asyncschema

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/asyncschema/internal/format"
)

// PathRef builds dotted field paths in a chain-safe way and creates errors
// that target them. Custom validators use it to report on sibling or child
// fields.
type PathRef struct {
	parts []string
}

// Root is the empty path.
func Root() PathRef { return PathRef{} }

// At parses a dotted path such as "address.lines.0".
func At(path string) PathRef {
	var parts []string
	for _, p := range strings.Split(path, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return PathRef{parts: parts}
}

// RefOf is the path of the field the rule is running on.
func RefOf(rule *Rule) PathRef { return At(rule.FullField()) }

func (p PathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return PathRef{parts: append(append([]string{}, p.parts...), name)}
}

func (p PathRef) Index(i int) PathRef {
	return PathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

// Parts returns the path segments.
func (p PathRef) Parts() []string { return append([]string(nil), p.parts...) }

func (p PathRef) String() string { return strings.Join(p.parts, ".") }

// Error builds a ValidationError for the path. The message is a template
// with %s/%d/%j placeholders.
func (p PathRef) Error(msg string, args ...any) *ValidationError {
	return &ValidationError{Field: p.String(), Message: format.Sprintf(msg, args...)}
}

// Lookup walks maps, slices and struct fields along the path, starting at
// v. Struct fields match by their json tag name, then by Go name.
func (p PathRef) Lookup(v any) (any, bool) {
	cur := reflect.ValueOf(v)
	for _, seg := range p.parts {
		for cur.IsValid() && (cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface) {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		case reflect.Struct:
			f, ok := structField(cur, seg)
			if !ok {
				return nil, false
			}
			cur = f
		default:
			return nil, false
		}
	}
	if !cur.IsValid() {
		return nil, false
	}
	return cur.Interface(), true
}

func structField(v reflect.Value, name string) (reflect.Value, bool) {
	rt := v.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := sf.Name
		if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag != "" && tag != "-" {
			key = tag
		}
		if key == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
