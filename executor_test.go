package asyncschema_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	as "github.com/reoring/asyncschema"
	"github.com/reoring/asyncschema/async"
)

func custom(err error) as.ValidatorFunc {
	return func(context.Context, *as.Rule, any, as.Object) error { return err }
}

func TestCustomValidatorOutcomes(t *testing.T) {
	cases := []struct {
		name string
		rule as.Rule
		want []string
	}{
		{"pass", as.Rule{Validator: custom(nil)}, nil},
		{"failed", as.Rule{Validator: custom(as.ErrFailed)}, []string{"v fails"}},
		{"failed wrapped", as.Rule{Validator: custom(fmt.Errorf("check: %w", as.ErrFailed))}, []string{"v fails"}},
		{"failed with message", as.Rule{Validator: custom(as.ErrFailed), Message: as.Text("nope")}, []string{"nope"}},
		{"plain error", as.Rule{Validator: custom(errors.New("too short"))}, []string{"too short"}},
		{"multi", as.Rule{Validator: custom(as.MultiError{errors.New("a"), errors.New("b")})}, []string{"a", "b"}},
		{"joined", as.Rule{Validator: custom(errors.Join(errors.New("a"), errors.New("b")))}, []string{"a", "b"}},
		{"empty multi", as.Rule{Validator: custom(as.MultiError{})}, []string{"v is required"}},
		{"rule message replaces all", as.Rule{Validator: custom(as.MultiError{errors.New("a"), errors.New("b")}), Message: as.Text("one")}, []string{"one"}},
		{"empty rule message", as.Rule{Validator: custom(errors.New("a")), Message: as.Text("")}, []string{""}},
		{"message func", as.Rule{Validator: custom(as.ErrFailed), Message: as.MessageFunc(func(f string) string { return f + "!" })}, []string{"v!"}},
		{"async pass", as.Rule{AsyncValidator: func(context.Context, *as.Rule, any, as.Object) *async.Future[struct{}] { return async.Resolve() }}, nil},
		{"async nil future", as.Rule{AsyncValidator: func(context.Context, *as.Rule, any, as.Object) *async.Future[struct{}] { return nil }}, nil},
		{"async reject", as.Rule{AsyncValidator: func(context.Context, *as.Rule, any, as.Object) *async.Future[struct{}] {
			return async.Reject(as.MultiError{errors.New("x"), errors.New("y")})
		}}, []string{"x", "y"}},
		{"async panic", as.Rule{AsyncValidator: func(ctx context.Context, _ *as.Rule, _ any, _ as.Object) *async.Future[struct{}] {
			return async.Run(ctx, func(context.Context) error { panic("async boom") })
		}}, []string{"async boom"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate(t, as.Fields(as.F("v", tc.rule)), as.Object{"v": 1}, as.WithSuppressValidatorError())
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.want, messages(t, err))
		})
	}
}

func TestCustomValidatorReplacesBuiltin(t *testing.T) {
	var got any
	err := validate(t, as.Fields(as.F("v", as.Rule{
		Type:     as.TypeNumber,
		Required: true,
		Validator: func(_ context.Context, rule *as.Rule, value any, source as.Object) error {
			got = value
			assert.Equal(t, "v", rule.Field())
			assert.Equal(t, as.TypeNumber, rule.ResolvedType())
			assert.Equal(t, "v is not a number", rule.Messages().Render(as.TypeMessageKey(as.TypeNumber), rule.FullField(), "number"))
			return nil
		},
	})), as.Object{"v": "not a number"})
	assert.NoError(t, err)
	assert.Equal(t, "not a number", got)
}

func TestValidatorTargetsAnotherField(t *testing.T) {
	err := validate(t, as.Fields(
		as.F("password", as.Rule{Type: as.TypeString}),
		as.F("confirm", as.Rule{Validator: func(_ context.Context, _ *as.Rule, v any, src as.Object) error {
			if v != src["password"] {
				return &as.ValidationError{Field: "password", Message: "passwords differ"}
			}
			return nil
		}}),
	), as.Object{"password": "a", "confirm": "b"})
	verr, ok := as.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []as.ValidationError{{Message: "passwords differ", Field: "password", FieldValue: "a"}}, verr.Errors)
	assert.Contains(t, verr.Fields, "password")
}

func TestValidatorPanicIsRecoveredAndLogged(t *testing.T) {
	var buf bytes.Buffer
	s := as.MustNew(as.Fields(as.F("v", as.Rule{Validator: func(context.Context, *as.Rule, any, as.Object) error {
		panic(errors.New("boom"))
	}})), as.WithLogger(zerolog.New(&buf)))

	_, err := s.Validate(context.Background(), as.Object{}, as.WithSuppressWarning())
	assert.Equal(t, []string{"boom"}, messages(t, err))
	assert.Contains(t, buf.String(), "validator panicked")
	assert.Contains(t, buf.String(), `"field":"v"`)

	buf.Reset()
	_, err = s.Validate(context.Background(), as.Object{}, as.WithSuppressWarning(), as.WithSuppressValidatorError())
	assert.Error(t, err)
	assert.NotContains(t, buf.String(), "panicked")
}

func TestWarningLog(t *testing.T) {
	var buf bytes.Buffer
	s := as.MustNew(as.Fields(as.F("v", as.Rule{Required: true})), as.WithLogger(zerolog.New(&buf)))

	_, _ = s.Validate(context.Background(), as.Object{})
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "v is required")

	buf.Reset()
	_, _ = s.Validate(context.Background(), as.Object{}, as.WithSuppressWarning())
	assert.NotContains(t, buf.String(), `"level":"warn"`)
}

func TestErrorFunc(t *testing.T) {
	err := validate(t, as.Fields(
		as.F("a", as.Rule{Required: true}),
		as.F("b", as.Rule{Validator: custom(errors.New("bad"))}),
	), as.Object{"b": 2}, as.WithErrorFunc(func(rule *as.Rule, msg string) as.ValidationError {
		return as.ValidationError{Message: "[" + rule.FullField() + "] " + msg}
	}))
	verr, ok := as.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []as.ValidationError{
		{Message: "[a] a is required", Field: "a"},
		{Message: "[b] bad", Field: "b", FieldValue: 2},
	}, verr.Errors)
}

func TestFailFastContext(t *testing.T) {
	var mu sync.Mutex
	seen := map[bool]int{}
	record := func(ctx context.Context, _ *as.Rule, _ any, _ as.Object) error {
		mu.Lock()
		seen[as.IsFailFast(ctx)]++
		mu.Unlock()
		return nil
	}
	desc := as.Fields(as.F("v", as.Rule{Validator: record}))

	require.NoError(t, validate(t, desc, as.Object{}))
	require.NoError(t, validate(t, desc, as.Object{}, as.WithFirst()))
	require.NoError(t, validate(t, desc, as.Object{}, as.WithFirstFields("v")))
	assert.Equal(t, map[bool]int{false: 1, true: 2}, seen)
}

func TestNestedFields(t *testing.T) {
	desc := as.Fields(as.F("address", as.Rule{
		Type:     as.TypeObject,
		Required: true,
		Fields: as.Fields(
			as.F("street", as.Rule{Type: as.TypeString, Required: true}),
			as.F("city", as.Rule{Type: as.TypeString, Required: true, Len: as.N(8)}),
			as.F("zip", as.Rule{Type: as.TypeString, Required: true, Message: as.Text("invalid zip")}),
		),
	}))

	t.Run("children", func(t *testing.T) {
		err := validate(t, desc, as.Object{"address": map[string]any{"city": "xx"}})
		verr, ok := as.AsValidationErrors(err)
		require.True(t, ok)
		assert.Equal(t, []string{
			"address.street is required",
			"address.city must be exactly 8 characters",
			"invalid zip",
		}, messages(t, err))
		assert.Equal(t, "address.city", verr.Errors[1].Field)
		assert.Equal(t, "xx", verr.Errors[1].FieldValue)
		assert.Contains(t, verr.Fields, "address.zip")
	})

	t.Run("missing parent reports only required", func(t *testing.T) {
		err := validate(t, desc, as.Object{})
		assert.Equal(t, []string{"address is required"}, messages(t, err))
	})

	t.Run("parent type error and children", func(t *testing.T) {
		err := validate(t, desc, as.Object{"address": "nowhere"})
		assert.Equal(t, []string{
			"address is not an object",
			"address.street is required",
			"address.city is required",
			"invalid zip",
		}, messages(t, err))
	})

	t.Run("first skips nested run", func(t *testing.T) {
		err := validate(t, desc, as.Object{"address": "nowhere"}, as.WithFirst())
		assert.Equal(t, []string{"address is not an object"}, messages(t, err))
	})
}

func TestNestedDefaultField(t *testing.T) {
	desc := as.Fields(as.F("tags", as.Rule{
		Type:         as.TypeArray,
		DefaultField: as.Rules{{Type: as.TypeString, Max: as.N(3)}},
	}))
	err := validate(t, desc, as.Object{"tags": []any{"ok", 1, "toolong", "x", "a", "b", "c", "d", "e", "f", 2}})
	verr, ok := as.AsValidationErrors(err)
	require.True(t, ok)
	var fields []string
	for _, e := range verr.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"tags.1", "tags.2", "tags.10"}, fields)
	assert.Equal(t, "tags.1 is not a string", verr.Errors[0].Message)
	assert.Equal(t, "tags.2 cannot be longer than 3 characters", verr.Errors[1].Message)

	assert.NoError(t, validate(t, desc, as.Object{}), "optional array without value skips elements")
}

func TestNestedFieldsOverrideDefaultField(t *testing.T) {
	desc := as.Fields(as.F("m", as.Rule{
		Type:         as.TypeObject,
		DefaultField: as.Rules{{Type: as.TypeNumber}},
		Fields:       as.Fields(as.F("name", as.Rule{Type: as.TypeString, Required: true})),
	}))
	err := validate(t, desc, as.Object{"m": map[string]any{"b": "x", "a": 1, "name": 3}})
	assert.Equal(t, []string{"m.b is not a number", "m.name is not a string"}, messages(t, err))
}

func TestNestedRuleOptions(t *testing.T) {
	desc := as.Fields(as.F("o", as.Rule{
		Type:    as.TypeObject,
		Options: []as.Option{as.WithAllFirstFields()},
		Fields: as.Fields(as.F("x",
			as.Rule{Type: as.TypeString, Min: as.N(3)},
			as.Rule{PatternSource: `^\d+$`},
		)),
	}))
	err := validate(t, desc, as.Object{"o": map[string]any{"x": "ab"}}, as.WithErrorFunc(func(rule *as.Rule, msg string) as.ValidationError {
		return as.ValidationError{Message: "E: " + msg}
	}))
	assert.Equal(t, []string{"E: o.x must be at least 3 characters"}, messages(t, err))
}

func TestNestedAsyncInsideDeep(t *testing.T) {
	slowFail := func(ctx context.Context, rule *as.Rule, _ any, _ as.Object) *async.Future[struct{}] {
		return async.Run(ctx, func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return fmt.Errorf("%s rejected", rule.FullField())
		})
	}
	desc := as.Fields(
		as.F("list", as.Rule{Type: as.TypeArray, DefaultField: as.Rules{{AsyncValidator: slowFail}}}),
		as.F("after", as.Rule{Required: true}),
	)
	err := validate(t, desc, as.Object{"list": []any{1, 2}})
	assert.Equal(t, []string{"list.0 rejected", "list.1 rejected", "after is required"}, messages(t, err))
}
