package asyncschema

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reoring/asyncschema/async"
)

const tracerName = "github.com/reoring/asyncschema"

// Schema validates objects against a fixed descriptor. It is immutable after
// New, apart from its message overrides, and safe for concurrent use.
type Schema struct {
	fields   Descriptor
	messages atomic.Pointer[Messages]

	log      zerolog.Logger
	observer Observer
	tracer   trace.Tracer
}

// New compiles desc. It fails with ErrUnknownType, ErrInvalidPattern,
// ErrEmptyFieldName or ErrDuplicateField on a malformed descriptor.
func New(desc Descriptor, opts ...SchemaOption) (*Schema, error) {
	fields, err := compileDescriptor(desc, "")
	if err != nil {
		return nil, err
	}
	s := &Schema{
		fields: fields,
		log:    zerolog.Nop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// MustNew is New that panics on error.
func MustNew(desc Descriptor, opts ...SchemaOption) *Schema {
	s, err := New(desc, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the compiled descriptor.
func (s *Schema) Fields() Descriptor { return s.fields }

// Messages sets the schema's templates to the process default merged with
// overrides, and returns the view in effect. Nil overrides only read it.
// overrides is not retained or modified.
func (s *Schema) Messages(overrides map[string]Template) *Messages {
	if overrides != nil {
		m := DefaultMessages().Merge(overrides)
		s.messages.Store(m)
		return m
	}
	if m := s.messages.Load(); m != nil {
		return m
	}
	return DefaultMessages()
}

// Validate checks data and blocks until the outcome is known. It returns the
// validated object, which is a shallow copy of data when a transform ran.
// Failures come back as *ValidationErrors; the only other error is ctx's.
func (s *Schema) Validate(ctx context.Context, data Object, opts ...Option) (Object, error) {
	cfg := newRunConfig(opts)
	messages := s.Messages(nil)
	if cfg.messages != nil {
		messages = messages.Merge(cfg.messages)
	}
	runID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "asyncschema.Validate", trace.WithAttributes(
		attribute.String("asyncschema.run_id", runID),
		attribute.Int("asyncschema.fields", len(s.fields)),
		attribute.Bool("asyncschema.first", cfg.first),
	))
	defer span.End()

	log := s.log.With().Str("run_id", runID).Logger()
	log.Debug().Int("fields", len(s.fields)).Msg("validate")
	start := time.Now()

	r := &run{cfg: cfg, messages: messages, log: log}
	out, errs, err := r.validate(ctx, s.fields, data, "")

	stats := RunStats{
		RunID:    runID,
		Fields:   len(s.fields),
		Errors:   len(errs),
		First:    cfg.first,
		Canceled: err != nil,
		Duration: time.Since(start),
	}
	for _, e := range errs {
		stats.Failed = append(stats.Failed, e.Field)
	}
	if s.observer != nil {
		s.observer.ObserveRun(ctx, stats)
	}
	span.SetAttributes(attribute.Int("asyncschema.errors", len(errs)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug().Err(err).Msg("validate canceled")
		return out, err
	}
	if len(errs) == 0 {
		if cfg.callback != nil {
			cfg.callback(nil, FieldErrors{}, out)
		}
		return out, nil
	}

	verr := &ValidationErrors{Errors: errs, Fields: groupByField(errs)}
	span.SetStatus(codes.Error, "validation failed")
	log.Debug().Int("errors", len(errs)).Dur("elapsed", stats.Duration).Msg("validate failed")
	if cfg.callback != nil {
		cfg.callback(verr.Errors, verr.Fields, out)
	}
	return out, verr
}

// ValidateAsync runs Validate in its own goroutine.
func (s *Schema) ValidateAsync(ctx context.Context, data Object, opts ...Option) *async.Future[Object] {
	return async.Go(ctx, func(ctx context.Context) (Object, error) {
		return s.Validate(ctx, data, opts...)
	})
}

type contextKey int

const _ctxKeyFailFast contextKey = iota

// WithFailFast marks ctx for validators running under a first-error policy.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current rule stops at its first error, so
// composite validators can stop early too.
func IsFailFast(ctx context.Context) bool {
	b, _ := ctx.Value(_ctxKeyFailFast).(bool)
	return b
}
