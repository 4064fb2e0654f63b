package asyncschema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFailed is returned by a custom validator to fail with the rule
	// message, or "<field> fails" when the rule has none.
	ErrFailed = errors.New("asyncschema: validation failed")

	// ErrUnknownType reports a rule whose Type has no registered validator.
	ErrUnknownType = errors.New("asyncschema: unknown rule type")
	// ErrInvalidPattern reports a PatternSource that does not compile.
	ErrInvalidPattern = errors.New("asyncschema: invalid pattern")
	// ErrEmptyFieldName reports a descriptor entry without a name.
	ErrEmptyFieldName = errors.New("asyncschema: empty field name")
	// ErrDuplicateField reports a field declared twice in one descriptor.
	ErrDuplicateField = errors.New("asyncschema: duplicate field")
	// ErrNilValidator is returned by Register for a nil TypeValidator.
	ErrNilValidator = errors.New("asyncschema: nil type validator")
)

// ValidationError is one failed constraint. It is plain data; it implements
// error only so custom validators can return it to target a field.
type ValidationError struct {
	Message    string `json:"message"`
	Field      string `json:"field"`
	FieldValue any    `json:"fieldValue,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// FieldErrors groups errors by field path, each list in execution order.
type FieldErrors map[string][]ValidationError

// ValidationErrors is the failure envelope returned by Validate.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
	Fields FieldErrors       `json:"fields"`
}

// Error summarizes the first few errors.
func (e *ValidationErrors) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(e.Errors)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := e.Errors[i]
		// e.g. name: name is required
		fmt.Fprintf(b, "%s: %s", it.Field, it.Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsValidationErrors extracts the envelope from err using errors.As.
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// MultiError lets a validator report several failures at once. An empty
// MultiError is treated as a failed required check.
type MultiError []error

func (m MultiError) Error() string {
	parts := make([]string, 0, len(m))
	for _, err := range m {
		if err != nil {
			parts = append(parts, err.Error())
		}
	}
	return strings.Join(parts, "; ")
}

func (m MultiError) Unwrap() []error { return m }

// groupByField builds the per-field map, keeping execution order per field.
func groupByField(errs []ValidationError) FieldErrors {
	fields := FieldErrors{}
	for _, e := range errs {
		fields[e.Field] = append(fields[e.Field], e)
	}
	return fields
}
