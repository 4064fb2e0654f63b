package asyncschema

import (
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"sort"
	"strconv"

	"github.com/reoring/asyncschema/internal/format"
)

// compileDescriptor resolves types, validators and patterns of every rule,
// nested ones included. The result shares nothing mutable with d.
func compileDescriptor(d Descriptor, path string) (Descriptor, error) {
	out := make(Descriptor, 0, len(d))
	seen := make(map[string]bool, len(d))
	for _, f := range d {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: at %q", ErrEmptyFieldName, pathOr(path))
		}
		p := joinPath(path, f.Name)
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, p)
		}
		seen[f.Name] = true
		rules, err := compileRules(f.Rules, p)
		if err != nil {
			return nil, err
		}
		out = append(out, Field{Name: f.Name, Rules: rules})
	}
	return out, nil
}

func compileRules(rs Rules, path string) (Rules, error) {
	if rs == nil {
		return nil, nil
	}
	out := make(Rules, len(rs))
	for i, r := range rs {
		c, err := compileRule(r, path)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func compileRule(r Rule, path string) (Rule, error) {
	r.typ = inferType(&r)
	custom := r.Validator != nil || r.AsyncValidator != nil
	if fn, ok := lookupValidator(r.typ); ok {
		r.check = fn
	} else if !custom {
		return r, fmt.Errorf("%w: %q for field %q", ErrUnknownType, r.Type, path)
	}
	if r.Pattern == nil && r.PatternSource != "" {
		re, err := regexp.Compile(r.PatternSource)
		if err != nil {
			return r, fmt.Errorf("%w: field %q: %v", ErrInvalidPattern, path, err)
		}
		r.compiled = re
	}
	var err error
	if r.Fields, err = compileDescriptor(r.Fields, path); err != nil {
		return r, err
	}
	if len(r.Fields) == 0 {
		r.Fields = nil
	}
	if r.DefaultField, err = compileRules(r.DefaultField, joinPath(path, "*")); err != nil {
		return r, err
	}
	return r, nil
}

// inferType picks the dispatch type of a rule declared without one.
func inferType(r *Rule) Type {
	switch {
	case r.Type != "":
		return r.Type
	case r.Pattern != nil:
		return TypePattern
	case r.PatternSource != "" || r.Len != nil || r.Min != nil || r.Max != nil || r.Whitespace:
		return TypeString
	case len(r.Enum) > 0:
		return TypeEnum
	}
	return TypeRequired
}

// unit is one rule execution: a rule bound to a field path and the value it
// checks.
type unit struct {
	rule   Rule
	value  any
	source Object
	// fault is a transform panic, reported instead of running the rule.
	fault error
}

// fieldSeries holds the units of one field in rule order.
type fieldSeries struct {
	name  string
	units []unit
}

// series expands the descriptor into units. Transforms run here, in rule
// order, each one seeing the previous result; the first transform switches
// to a shallow copy of data so the caller's object is never written.
func (r *run) series(desc Descriptor, data Object, prefix string) ([]fieldSeries, Object) {
	source := data
	copied := false
	out := make([]fieldSeries, 0, len(desc))
	for _, f := range r.selected(desc) {
		if len(f.Rules) == 0 {
			continue
		}
		value := source[f.Name]
		fs := fieldSeries{name: f.Name, units: make([]unit, 0, len(f.Rules))}
		for _, rule := range f.Rules {
			u := unit{rule: rule}
			u.rule.field = f.Name
			u.rule.fullField = joinPath(prefix, f.Name)
			u.rule.messages = r.messages
			if rule.Transform != nil {
				if !copied {
					source = maps.Clone(data)
					if source == nil {
						source = Object{}
					}
					copied = true
				}
				next, err := r.transform(&u.rule, value)
				if err != nil {
					u.fault = err
				} else {
					value = next
					source[f.Name] = value
				}
			}
			u.value = value
			fs.units = append(fs.units, u)
		}
		out = append(out, fs)
	}
	for i := range out {
		for j := range out[i].units {
			out[i].units[j].source = source
		}
	}
	return out, source
}

func (r *run) transform(rule *Rule, value any) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = r.fault(rule, "transform", p)
		}
	}()
	return rule.Transform(value), nil
}

// selected applies the keys option.
func (r *run) selected(desc Descriptor) Descriptor {
	if r.cfg.keys == nil {
		return desc
	}
	want := make(map[string]bool, len(r.cfg.keys))
	for _, k := range r.cfg.keys {
		want[k] = true
	}
	out := make(Descriptor, 0, len(r.cfg.keys))
	for _, f := range desc {
		if want[f.Name] {
			out = append(out, f)
		}
	}
	return out
}

// nestedDescriptor builds the schema applied inside a deep rule's value:
// DefaultField for every key of the value, then Fields merged over it.
func nestedDescriptor(rule *Rule, source Object) Descriptor {
	var names []string
	byName := map[string]Rules{}
	if len(rule.DefaultField) > 0 {
		for k := range source {
			names = append(names, k)
			byName[k] = rule.DefaultField
		}
		sort.Strings(names)
	}
	for _, f := range rule.Fields {
		if _, ok := byName[f.Name]; !ok {
			names = append(names, f.Name)
		}
		byName[f.Name] = f.Rules
	}
	orderKeys(names)
	out := make(Descriptor, len(names))
	for i, n := range names {
		out[i] = Field{Name: n, Rules: byName[n]}
	}
	return out
}

// orderKeys puts array-index keys first in ascending order and keeps the
// relative order of the others.
func orderKeys(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		a, aok := indexKey(names[i])
		b, bok := indexKey(names[j])
		switch {
		case aok && bok:
			return a < b
		case aok:
			return true
		}
		return false
	})
}

func indexKey(s string) (uint64, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	return n, err == nil
}

// asNestedSource views a container value as an object: maps by their keys,
// slices and arrays by index. Other values have no keys.
func asNestedSource(v any) Object {
	if m, ok := v.(Object); ok {
		return m
	}
	out := Object{}
	if isNil(v) {
		return out
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			out[format.String(iter.Key().Interface())] = iter.Value().Interface()
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			out[strconv.Itoa(i)] = rv.Index(i).Interface()
		}
	}
	return out
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func pathOr(p string) string {
	if p == "" {
		return "<root>"
	}
	return p
}
