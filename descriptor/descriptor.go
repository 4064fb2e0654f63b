// Package descriptor reads asyncschema descriptors from YAML or JSON files.
//
// A document maps field names to one rule or a list of rules:
//
//	name:
//	  - type: string
//	    required: true
//	    min: 2
//	    message: "name is too short"
//	tags:
//	  type: array
//	  defaultField: { type: string, pattern: "^[a-z]+$" }
//	address:
//	  type: object
//	  fields:
//	    city: { type: string, required: true }
//
// Field order in the document is the declaration order of the descriptor.
// Function-valued rule parts (transform, validators) cannot be expressed and
// are attached in Go after loading.
package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reoring/asyncschema"
)

// ErrInvalid is wrapped by every *Error.
var ErrInvalid = errors.New("descriptor: invalid document")

// Error locates a problem in the document.
type Error struct {
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("descriptor: %d:%d: %s", e.Line, e.Col, e.Msg) }

func (e *Error) Unwrap() error { return ErrInvalid }

func errorf(n *yaml.Node, format string, args ...any) error {
	return &Error{Line: n.Line, Col: n.Column, Msg: fmt.Sprintf(format, args...)}
}

// Parse reads a descriptor document. An empty document is an empty
// descriptor.
func Parse(data []byte) (asyncschema.Descriptor, error) { return Read(bytes.NewReader(data)) }

// Read is Parse over a reader.
func Read(r io.Reader) (asyncschema.Descriptor, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return asyncschema.Descriptor{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(root.Content) == 0 {
		return asyncschema.Descriptor{}, nil
	}
	return fields(root.Content[0])
}

// File reads the descriptor stored at path.
func File(path string) (asyncschema.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Load reads the descriptor at path and compiles it.
func Load(path string, opts ...asyncschema.SchemaOption) (*asyncschema.Schema, error) {
	d, err := File(path)
	if err != nil {
		return nil, err
	}
	return asyncschema.New(d, opts...)
}

func fields(n *yaml.Node) (asyncschema.Descriptor, error) {
	n = resolve(n)
	if isNull(n) {
		return asyncschema.Descriptor{}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, errorf(n, "expected a mapping of field names")
	}
	out := make(asyncschema.Descriptor, 0, len(n.Content)/2)
	seen := map[string]bool{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if seen[k.Value] {
			return nil, errorf(k, "duplicate field %q", k.Value)
		}
		seen[k.Value] = true
		rs, err := rules(v)
		if err != nil {
			return nil, err
		}
		out = append(out, asyncschema.F(k.Value, rs...))
	}
	return out, nil
}

func rules(n *yaml.Node) (asyncschema.Rules, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		r, err := rule(n)
		if err != nil {
			return nil, err
		}
		return asyncschema.Rules{r}, nil
	case yaml.SequenceNode:
		out := make(asyncschema.Rules, 0, len(n.Content))
		for _, c := range n.Content {
			r, err := rule(resolve(c))
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	}
	return nil, errorf(n, "expected a rule or a list of rules")
}

func rule(n *yaml.Node) (asyncschema.Rule, error) {
	var r asyncschema.Rule
	if n.Kind != yaml.MappingNode {
		return r, errorf(n, "expected a rule mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolve(n.Content[i+1])
		var err error
		switch k.Value {
		case "type":
			var s string
			err = decodeScalar(v, &s)
			r.Type = asyncschema.Type(s)
		case "required":
			err = decodeScalar(v, &r.Required)
		case "whitespace":
			err = decodeScalar(v, &r.Whitespace)
		case "pattern":
			err = decodeScalar(v, &r.PatternSource)
		case "min":
			r.Min, err = bound(v)
		case "max":
			r.Max, err = bound(v)
		case "len":
			r.Len, err = bound(v)
		case "message":
			var s string
			err = decodeScalar(v, &s)
			r.Message = asyncschema.Text(s)
		case "enum":
			r.Enum, err = enum(v)
		case "fields":
			r.Fields, err = fields(v)
		case "defaultField":
			r.DefaultField, err = rules(v)
		default:
			return r, errorf(k, "unknown rule key %q", k.Value)
		}
		if err != nil {
			return r, err
		}
	}
	return r, nil
}

func decodeScalar(n *yaml.Node, out any) error {
	if n.Kind != yaml.ScalarNode {
		return errorf(n, "expected a scalar")
	}
	if err := n.Decode(out); err != nil {
		return errorf(n, "%v", err)
	}
	return nil
}

func bound(n *yaml.Node) (*float64, error) {
	var f float64
	if err := decodeScalar(n, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// enum keeps integers as int64 so they compare with decoded data by value.
func enum(n *yaml.Node) ([]any, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, errorf(n, "expected a list of values")
	}
	out := make([]any, 0, len(n.Content))
	for _, c := range n.Content {
		c = resolve(c)
		if c.Kind != yaml.ScalarNode {
			return nil, errorf(c, "enum values must be scalars")
		}
		var v any
		if err := c.Decode(&v); err != nil {
			return nil, errorf(c, "%v", err)
		}
		if i, ok := v.(int); ok {
			v = int64(i)
		}
		out = append(out, v)
	}
	return out, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool { return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" }
