package source

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
)

// ErrTrailingData reports bytes after the first JSON value.
var ErrTrailingData = errors.New("source: trailing data after JSON value")

// decodeJSON keeps integers exact: numbers decode as int64 when integral and
// in range, float64 otherwise.
func decodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return numbers(v)
}

func numbers(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("source: number %q: %w", x, err)
		}
		if math.IsInf(f, 0) {
			return nil, fmt.Errorf("source: number %q out of range", x)
		}
		return f, nil
	case map[string]any:
		for k, e := range x {
			n, err := numbers(e)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
	case []any:
		for i, e := range x {
			n, err := numbers(e)
			if err != nil {
				return nil, err
			}
			x[i] = n
		}
	}
	return v, nil
}
