package format_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reoring/asyncschema/internal/format"
)

func TestSprintf(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []any
		want     string
	}{
		{"no placeholders", "plain text", []any{"x"}, "plain text"},
		{"positional", "%s must be between %s and %s", []any{"age", 1.0, 10}, "age must be between 1 and 10"},
		{"missing args keep verb", "%s is %s", []any{"a"}, "a is %s"},
		{"escaped percent", "100%% of %s", []any{"f"}, "100% of f"},
		{"number verb", "%d items", []any{"3"}, "3 items"},
		{"not a number", "%d", []any{"x"}, "NaN"},
		{"json verb", "got %j", []any{map[string]int{"a": 1}}, `got {"a":1}`},
		{"unknown verb kept", "%x and %s", []any{"y"}, "%x and y"},
		{"trailing percent", "50%", []any{"y"}, "50%"},
		{"regexp", "%s", []any{regexp.MustCompile(`^\d+$`)}, `/^\d+$/`},
		{"slice", "%s", []any{[]any{"a", 1, true}}, "a,1,true"},
		{"nil", "%s", []any{nil}, "undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format.Sprintf(tt.template, tt.args...))
		})
	}
}

func TestToFloat(t *testing.T) {
	f, ok := format.ToFloat(uint8(7))
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)

	_, ok = format.ToFloat("7")
	assert.False(t, ok)
}
