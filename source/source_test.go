package source_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/asyncschema/source"
)

func TestDetect(t *testing.T) {
	for path, want := range map[string]source.Format{
		"a.json": source.FormatJSON,
		"A.JSON": source.FormatJSON,
		"b.yaml": source.FormatYAML,
		"c.yml":  source.FormatYAML,
	} {
		got, err := source.Detect(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := source.Detect("d.toml")
	assert.ErrorIs(t, err, source.ErrUnknownFormat)
	assert.Equal(t, "yaml", source.FormatYAML.String())
	assert.Equal(t, "Format(7)", source.Format(7).String())
}

func TestJSON(t *testing.T) {
	obj, err := source.Bytes([]byte(`{"n": 3, "big": 9007199254740993, "f": 1.5, "e": 1e3, "list": [1, {"x": 2}], "s": "hi", "nil": null}`), source.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, int64(3), obj["n"])
	assert.Equal(t, int64(9007199254740993), obj["big"], "integers stay exact")
	assert.Equal(t, 1.5, obj["f"])
	assert.Equal(t, 1000.0, obj["e"])
	assert.Equal(t, []any{int64(1), map[string]any{"x": int64(2)}}, obj["list"])
	assert.Equal(t, "hi", obj["s"])
	assert.Contains(t, obj, "nil")
	assert.Nil(t, obj["nil"])
}

func TestJSONErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		is   error
	}{
		{"trailing data", `{"a":1} {"b":2}`, source.ErrTrailingData},
		{"array root", `[1,2]`, source.ErrNotObject},
		{"scalar root", `"x"`, source.ErrNotObject},
		{"null root", `null`, source.ErrNotObject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := source.Read(strings.NewReader(tc.in), source.FormatJSON)
			assert.ErrorIs(t, err, tc.is)
		})
	}

	_, err := source.Bytes([]byte(`{"a":`), source.FormatJSON)
	assert.Error(t, err)
	_, err = source.Bytes([]byte(`{"a": 1e999}`), source.FormatJSON)
	assert.ErrorContains(t, err, "out of range")
}

func TestYAML(t *testing.T) {
	doc := `
name: Ada
age: 36
ratio: 0.5
hex: 0x1F
active: true
born: 2024-05-01
missing: ~
base: &b
  city: Paris
copy: *b
tags: [a, "b"]
`
	obj, err := source.Bytes([]byte(doc), source.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "Ada", obj["name"])
	assert.Equal(t, int64(36), obj["age"])
	assert.Equal(t, 0.5, obj["ratio"])
	assert.Equal(t, int64(31), obj["hex"])
	assert.Equal(t, true, obj["active"])
	assert.Equal(t, "2024-05-01", obj["born"], "timestamps stay strings")
	assert.Nil(t, obj["missing"])
	assert.Equal(t, map[string]any{"city": "Paris"}, obj["copy"])
	assert.Equal(t, []any{"a", "b"}, obj["tags"])
}

func TestYAMLEmptyDocument(t *testing.T) {
	obj, err := source.Bytes(nil, source.FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, obj)
}

func TestYAMLDuplicateKey(t *testing.T) {
	_, err := source.Bytes([]byte("a: 1\nb: 2\na: 3\n"), source.FormatYAML)
	var dup *source.DuplicateKeyError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, "a", dup.Key)
	assert.Equal(t, 1, dup.FirstLine)
	assert.Equal(t, 3, dup.Line)
	assert.Contains(t, err.Error(), `duplicate YAML key "a" at 3:1 (first at 1:1)`)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yml")
	require.NoError(t, os.WriteFile(path, []byte("x: 1\n"), 0o600))

	obj, err := source.File(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), obj["x"])

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[]"), 0o600))
	_, err = source.File(bad)
	assert.ErrorIs(t, err, source.ErrNotObject)
	assert.Contains(t, err.Error(), bad)

	_, err = source.File(filepath.Join(dir, "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
