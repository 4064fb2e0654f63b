package asyncschema

import (
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/reoring/asyncschema/internal/format"
)

// isNil reports nil and nil pointers, maps, slices and funcs.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// isNativeStringType lists the types whose empty value is "".
func isNativeStringType(t Type) bool {
	switch t {
	case TypeString, TypeURL, TypeHex, TypeEmail, TypeDate, TypePattern:
		return true
	}
	return false
}

// isEmptyValue is the empty-value policy shared by every required check.
func isEmptyValue(v any, t Type) bool {
	if isNil(v) {
		return true
	}
	if t == TypeArray {
		if n, ok := arrayLen(v); ok && n == 0 {
			return true
		}
	}
	if isNativeStringType(t) {
		if s, ok := v.(string); ok && s == "" {
			return true
		}
	}
	return false
}

// isTruthy follows the loose truthiness used for nested-rule activation:
// nil, false, zero numbers, NaN and "" are falsy; containers are truthy.
func isTruthy(v any) bool {
	if isNil(v) {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := format.ToFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func arrayLen(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

// toNumber accepts Go numeric kinds that are not NaN.
func toNumber(v any) (float64, bool) {
	f, ok := format.ToFloat(v)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func isInteger(v any) bool {
	f, ok := toNumber(v)
	return ok && !math.IsInf(f, 0) && f == math.Trunc(f)
}

func isFloat(v any) bool {
	_, ok := toNumber(v)
	return ok && !isInteger(v)
}

func isArray(v any) bool {
	_, ok := arrayLen(v)
	return ok
}

func isObject(v any) bool {
	if isNil(v) {
		return false
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return true
	}
	return false
}

func isMethod(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func && !isNil(v)
}

func isRegexp(v any) bool {
	switch x := v.(type) {
	case *regexp.Regexp:
		return x != nil
	case nil:
		return false
	}
	_, err := regexp.Compile(format.String(v))
	return err == nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

// toTime coerces time values, unix milliseconds and common date strings.
func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
	if f, ok := toNumber(v); ok && !math.IsInf(f, 0) {
		return time.UnixMilli(int64(f)), true
	}
	return time.Time{}, false
}

func isDate(v any) bool {
	_, ok := toTime(v)
	return ok
}

// codePoints measures strings in Unicode code points.
func codePoints(s string) int { return utf8.RuneCountInString(s) }

// strictEqual compares without coercion across kinds, except that all Go
// numeric kinds compare by value.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := format.ToFloat(a); ok {
		fb, ok := format.ToFloat(b)
		return ok && fa == fb
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
