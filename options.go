package asyncschema

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Option configures one Validate call.
type Option func(*runConfig)

// Callback receives the outcome of a Validate call before it returns. On
// success errs is nil and fields is empty.
type Callback func(errs []ValidationError, fields FieldErrors, data Object)

// ErrorFunc rebuilds every produced error from the rule and its message.
type ErrorFunc func(rule *Rule, message string) ValidationError

type runConfig struct {
	first          bool
	firstFields    map[string]bool
	allFirstFields bool
	messages       map[string]Template
	keys           []string
	callback       Callback

	suppressWarning        bool
	suppressValidatorError bool
	errorFunc              ErrorFunc
}

func newRunConfig(opts []Option) runConfig {
	var cfg runConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// serial reports whether the field stops at its first failing rule.
func (c *runConfig) serial(field string) bool {
	return c.first || c.allFirstFields || c.firstFields[field]
}

// WithFirst stops the whole run at the first error, in field declaration
// order. The returned envelope holds exactly one error.
func WithFirst() Option { return func(c *runConfig) { c.first = true } }

// WithFirstFields makes the named fields stop at their first error. Other
// fields still run all their rules.
func WithFirstFields(names ...string) Option {
	return func(c *runConfig) {
		if c.firstFields == nil {
			c.firstFields = make(map[string]bool, len(names))
		}
		for _, n := range names {
			c.firstFields[n] = true
		}
	}
}

// WithAllFirstFields is WithFirstFields for every field.
func WithAllFirstFields() Option { return func(c *runConfig) { c.allFirstFields = true } }

// WithMessages overrides templates for this call only, on top of the
// schema's messages.
func WithMessages(overrides map[string]Template) Option {
	return func(c *runConfig) { c.messages = overrides }
}

// WithKeys restricts the run to the named fields. Declaration order is kept.
func WithKeys(names ...string) Option {
	return func(c *runConfig) { c.keys = append([]string(nil), names...) }
}

// WithCallback registers fn to receive the outcome.
func WithCallback(fn Callback) Option { return func(c *runConfig) { c.callback = fn } }

// WithSuppressWarning disables the warning logged for each failing rule.
func WithSuppressWarning() Option { return func(c *runConfig) { c.suppressWarning = true } }

// WithSuppressValidatorError disables logging of panics raised by custom
// validators and transforms. The panic still becomes a ValidationError.
func WithSuppressValidatorError() Option {
	return func(c *runConfig) { c.suppressValidatorError = true }
}

// WithErrorFunc installs a hook that builds every ValidationError.
func WithErrorFunc(fn ErrorFunc) Option { return func(c *runConfig) { c.errorFunc = fn } }

// SchemaOption configures a Schema at construction.
type SchemaOption func(*Schema)

// WithLogger sets the logger used for warnings and validator faults.
func WithLogger(l zerolog.Logger) SchemaOption { return func(s *Schema) { s.log = l } }

// WithObserver reports every top-level run to o.
func WithObserver(o Observer) SchemaOption { return func(s *Schema) { s.observer = o } }

// WithTracer sets the tracer that opens a span per Validate call.
func WithTracer(t trace.Tracer) SchemaOption {
	return func(s *Schema) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Observer receives run statistics. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveRun(ctx context.Context, stats RunStats)
}

// RunStats summarizes one top-level Validate call.
type RunStats struct {
	RunID    string
	Fields   int
	Errors   int
	Failed   []string // failing field paths, in error order
	First    bool
	Canceled bool
	Duration time.Duration
}
