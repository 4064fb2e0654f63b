// Package format renders message templates with positional %s, %d and %j
// placeholders.
package format

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Sprintf replaces placeholders left to right with args.
//
//   - %s renders the argument with String.
//   - %d renders the argument as a number (NaN when it is not numeric).
//   - %j renders the argument as JSON ("[Circular]" when it cannot be encoded).
//   - %% renders a literal percent sign.
//
// Placeholders without a matching argument are kept verbatim and surplus
// arguments are ignored.
func Sprintf(template string, args ...any) string {
	if !strings.Contains(template, "%") {
		return template
	}
	b := &strings.Builder{}
	b.Grow(len(template))
	i := 0
	for pos := 0; pos < len(template); pos++ {
		c := template[pos]
		if c != '%' || pos+1 >= len(template) {
			b.WriteByte(c)
			continue
		}
		verb := template[pos+1]
		switch verb {
		case '%':
			b.WriteByte('%')
			pos++
			continue
		case 's', 'd', 'j':
		default:
			b.WriteByte(c)
			continue
		}
		pos++
		if i >= len(args) {
			b.WriteByte('%')
			b.WriteByte(verb)
			continue
		}
		arg := args[i]
		i++
		switch verb {
		case 's':
			b.WriteString(String(arg))
		case 'd':
			b.WriteString(Number(arg))
		case 'j':
			out, err := json.Marshal(arg)
			if err != nil {
				b.WriteString("[Circular]")
			} else {
				b.WriteString(string(out))
			}
		}
	}
	return b.String()
}

// String renders v for inclusion in a human readable message.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case *regexp.Regexp:
		if x == nil {
			return "null"
		}
		return "/" + x.String() + "/"
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case error:
		return x.Error()
	case interface{ String() string }:
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return ""
		}
		parts := make([]string, rv.Len())
		for i := range parts {
			el := rv.Index(i).Interface()
			if el == nil {
				continue
			}
			parts[i] = String(el)
		}
		return strings.Join(parts, ",")
	case reflect.Map, reflect.Struct:
		return "[object Object]"
	case reflect.Func:
		return "function"
	case reflect.Pointer:
		if rv.IsNil() {
			return "null"
		}
		return String(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	}
	return "undefined"
}

// Number renders v as a number, or NaN when v is not numeric.
func Number(v any) string {
	if f, ok := ToFloat(v); ok {
		return formatFloat(f)
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return "0"
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return formatFloat(f)
		}
	}
	if b, ok := v.(bool); ok {
		if b {
			return "1"
		}
		return "0"
	}
	return "NaN"
}

// ToFloat converts Go numeric kinds to float64.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
