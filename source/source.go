// Package source loads the data documents validated by asyncschema from
// JSON or YAML.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/asyncschema"
)

var (
	// ErrNotObject reports a document whose root is not a mapping.
	ErrNotObject = errors.New("source: document root is not an object")
	// ErrUnknownFormat reports a file extension with no decoder.
	ErrUnknownFormat = errors.New("source: unknown document format")
)

// Format selects the decoder.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Detect picks the format from a file extension.
func Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Read decodes one object from r.
func Read(r io.Reader, f Format) (asyncschema.Object, error) {
	var (
		v   any
		err error
	)
	switch f {
	case FormatJSON:
		v, err = decodeJSON(r)
	case FormatYAML:
		v, err = decodeYAML(r)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
	}
	return obj, nil
}

// Bytes decodes one object from b.
func Bytes(b []byte, f Format) (asyncschema.Object, error) { return Read(bytes.NewReader(b), f) }

// File decodes the object stored at path, choosing the format by extension.
func File(path string) (asyncschema.Object, error) {
	f, err := Detect(path)
	if err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	obj, err := Read(fh, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obj, nil
}
