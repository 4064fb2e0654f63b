// Package rules composes custom validators for asyncschema rules.
package rules

import (
	"context"
	"fmt"
	"reflect"

	"github.com/reoring/asyncschema"
	"github.com/reoring/asyncschema/async"
	"github.com/reoring/asyncschema/internal/format"
)

// Validator is the custom validator signature of asyncschema.Rule.
type Validator = asyncschema.ValidatorFunc

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of validators.
type Conditional struct {
	path asyncschema.PathRef
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that compares the value at path, a dotted path
// into the source object, with want.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: asyncschema.At(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then runs validators, as All does, only when the condition holds.
func (c Conditional) Then(validators ...Validator) Validator {
	all := All(validators...)
	return func(ctx context.Context, rule *asyncschema.Rule, value any, source asyncschema.Object) error {
		if !c.eval(source) {
			return nil
		}
		return all(ctx, rule, value, source)
	}
}

func (c Conditional) eval(source asyncschema.Object) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.eval(source) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.eval(source) {
				return true
			}
		}
		return false
	}
	cur, ok := c.path.Lookup(source)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// All runs every validator and joins their failures into a MultiError. Under
// a first-error policy it stops at the first failure.
func All(validators ...Validator) Validator {
	return func(ctx context.Context, rule *asyncschema.Rule, value any, source asyncschema.Object) error {
		var out asyncschema.MultiError
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(ctx, rule, value, source); err != nil {
				out = append(out, err)
				if asyncschema.IsFailFast(ctx) {
					break
				}
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
}

// Any succeeds if any validator passes. When all fail it returns the
// failure with the fewest errors.
func Any(validators ...Validator) Validator {
	return func(ctx context.Context, rule *asyncschema.Rule, value any, source asyncschema.Object) error {
		var best error
		bestN := 0
		for _, v := range validators {
			if v == nil {
				continue
			}
			err := v(ctx, rule, value, source)
			if err == nil {
				return nil
			}
			if n := count(err); best == nil || n < bestN {
				best, bestN = err, n
			}
		}
		return best
	}
}

// Async lifts a synchronous validator into an asynchronous one running in
// its own goroutine.
func Async(v Validator) asyncschema.AsyncValidatorFunc {
	return func(ctx context.Context, rule *asyncschema.Rule, value any, source asyncschema.Object) *async.Future[struct{}] {
		return async.Run(ctx, func(ctx context.Context) error {
			return v(ctx, rule, value, source)
		})
	}
}

// AtLeastOne fails unless the collection at path (relative to the source)
// has an element. A missing or non-collection value passes.
func AtLeastOne(path string) Validator {
	ref := asyncschema.At(path)
	return func(_ context.Context, rule *asyncschema.Rule, _ any, source asyncschema.Object) error {
		val, ok := ref.Lookup(source)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if rv.Len() == 0 {
				return absolute(rule, ref).Error("%s must have at least 1 item", absolute(rule, ref).String())
			}
		}
		return nil
	}
}

// UniqueBy fails for every element of the collection at path whose key
// (a dotted path inside the element) repeats an earlier one.
// Keys compare by their string form, so mixed key types may collide.
func UniqueBy(path, key string) Validator {
	ref := asyncschema.At(path)
	keyRef := asyncschema.At(key)
	return func(_ context.Context, rule *asyncschema.Rule, _ any, source asyncschema.Object) error {
		val, ok := ref.Lookup(source)
		if !ok {
			return nil
		}
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil
		}
		seen := map[string]int{}
		var out asyncschema.MultiError
		for i := 0; i < rv.Len(); i++ {
			kv, ok := keyRef.Lookup(rv.Index(i).Interface())
			if !ok {
				continue
			}
			k := format.String(kv)
			if j, dup := seen[k]; dup {
				at := absolute(rule, ref).Index(i)
				for _, seg := range keyRef.Parts() {
					at = at.Field(seg)
				}
				out = append(out, at.Error("%s duplicates item %d", at.String(), j))
				continue
			}
			seen[k] = i
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
}

// absolute resolves a source-relative path against the parent of the
// running rule, so nested schemas report full paths.
func absolute(rule *asyncschema.Rule, ref asyncschema.PathRef) asyncschema.PathRef {
	parts := asyncschema.RefOf(rule).Parts()
	out := asyncschema.Root()
	for _, p := range parts[:max(len(parts)-1, 0)] {
		out = out.Field(p)
	}
	for _, p := range ref.Parts() {
		out = out.Field(p)
	}
	return out
}

func count(err error) int {
	if m, ok := err.(interface{ Unwrap() []error }); ok {
		return len(m.Unwrap())
	}
	return 1
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return equal(cur, want)
	case Ne:
		return !equal(cur, want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

// equal compares numbers by value across Go kinds, anything else deeply.
func equal(a, b any) bool {
	fa, aok := format.ToFloat(a)
	fb, bok := format.ToFloat(b)
	if aok && bok {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func compareOrdered(cur any, op Op, want any) bool {
	a, aok := format.ToFloat(cur)
	b, bok := format.ToFloat(want)
	if !aok || !bok {
		as, aok := cur.(string)
		bs, bok := want.(string)
		if !aok || !bok {
			return false
		}
		return ordered(as, bs, op)
	}
	return ordered(a, b, op)
}

func ordered[T float64 | string](a, b T, op Op) bool {
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	panic(fmt.Sprintf("rules: not an ordering operator: %d", op))
}
