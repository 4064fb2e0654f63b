package asyncschema

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/reoring/asyncschema/async"
)

// run is the state of one Validate call, shared by its nested runs.
type run struct {
	cfg      runConfig
	messages *Messages
	log      zerolog.Logger
}

// child derives the run of a deep rule's nested schema. The rule's Options,
// when present, replace the run options; messages, the error hook and
// logging settings are inherited either way.
func (r *run) child(rule *Rule) *run {
	cfg := r.cfg
	messages := r.messages
	if len(rule.Options) > 0 {
		cfg = newRunConfig(rule.Options)
		if cfg.messages != nil {
			messages = messages.Merge(cfg.messages)
		}
		if cfg.errorFunc == nil {
			cfg.errorFunc = r.cfg.errorFunc
		}
		cfg.suppressWarning = cfg.suppressWarning || r.cfg.suppressWarning
		cfg.suppressValidatorError = cfg.suppressValidatorError || r.cfg.suppressValidatorError
	}
	cfg.keys = nil
	cfg.callback = nil
	return &run{cfg: cfg, messages: messages, log: r.log}
}

// runField executes the units of one field. In serial mode it stops at the
// first failing unit and keeps only that unit's first error. Otherwise
// async and deep units run concurrently; results keep rule order.
func (r *run) runField(ctx context.Context, fs fieldSeries, serial bool) []ValidationError {
	if serial {
		ctx = WithFailFast(ctx, true)
		for i := range fs.units {
			if errs := r.runUnit(ctx, &fs.units[i]); len(errs) > 0 {
				return errs[:1]
			}
			if ctx.Err() != nil {
				return nil
			}
		}
		return nil
	}

	pending := make([]*async.Future[[]ValidationError], len(fs.units))
	for i := range fs.units {
		u := &fs.units[i]
		if u.rule.AsyncValidator != nil || u.rule.deep() {
			pending[i] = async.Go(ctx, func(ctx context.Context) ([]ValidationError, error) {
				return r.runUnit(ctx, u), nil
			})
			continue
		}
		pending[i] = async.Resolved(r.runUnit(ctx, u))
	}
	var errs []ValidationError
	for _, f := range pending {
		fe, err := f.Wait(ctx)
		if err != nil {
			return errs
		}
		errs = append(errs, fe...)
	}
	return errs
}

// runUnit runs one rule and returns its completed errors, followed by the
// errors of its nested schema.
func (r *run) runUnit(ctx context.Context, u *unit) []ValidationError {
	rule := &u.rule
	var produced []ValidationError
	switch {
	case u.fault != nil:
		produced = r.expand(rule, u.fault)
	case rule.AsyncValidator != nil:
		produced = r.expand(rule, r.callAsync(ctx, u))
	case rule.Validator != nil:
		produced = r.expand(rule, r.call(ctx, u))
	case rule.check != nil:
		produced = r.builtin(u)
	}

	if len(produced) > 0 && !r.cfg.suppressWarning {
		r.log.Warn().Str("field", rule.FullField()).Strs("errors", messagesOf(produced)).Msg("validation failed")
	}
	if len(produced) > 0 && rule.Message != nil {
		produced = []ValidationError{{Message: rule.Message.Render(rule.FullField())}}
	}
	errs := r.complete(u, produced)

	if r.cfg.first && len(errs) > 0 {
		return errs
	}
	if !rule.deep() || !(rule.Required || isTruthy(u.value)) {
		return errs
	}
	if rule.Required && !isTruthy(u.value) {
		return r.requiredOnly(u, errs)
	}

	source := asNestedSource(u.value)
	_, nested, err := r.child(rule).validate(ctx, nestedDescriptor(rule, source), source, rule.FullField())
	if err != nil {
		return errs
	}
	return append(errs, nested...)
}

// requiredOnly is the outcome of a required deep rule without a value: the
// nested schema is skipped.
func (r *run) requiredOnly(u *unit, errs []ValidationError) []ValidationError {
	rule := &u.rule
	switch {
	case rule.Message != nil:
		return r.complete(u, []ValidationError{{Message: rule.Message.Render(rule.FullField())}})
	case len(errs) > 0:
		return errs
	}
	return r.complete(u, []ValidationError{{Message: r.messages.Render(MsgRequired, rule.FullField())}})
}

func (r *run) builtin(u *unit) (out []ValidationError) {
	rule := &u.rule
	defer func() {
		if p := recover(); p != nil {
			out = r.expand(rule, r.fault(rule, "type validator", p))
		}
	}()
	c := &Check{Rule: rule, Type: rule.typ, Value: u.value, Source: u.source, Messages: r.messages}
	rule.check(c)
	for _, msg := range c.Failures() {
		out = append(out, ValidationError{Message: msg})
	}
	return out
}

func (r *run) call(ctx context.Context, u *unit) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = r.fault(&u.rule, "validator", p)
		}
	}()
	return u.rule.Validator(ctx, &u.rule, u.value, u.source)
}

// callAsync starts the async validator and waits for its future. A future
// abandoned by ctx still settles in its own goroutine.
func (r *run) callAsync(ctx context.Context, u *unit) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = r.fault(&u.rule, "async validator", p)
		}
	}()
	f := u.rule.AsyncValidator(ctx, &u.rule, u.value, u.source)
	if f == nil {
		return nil
	}
	_, err = f.Wait(ctx)
	var pe *async.PanicError
	if errors.As(err, &pe) {
		err = r.fault(&u.rule, "async validator", pe.Value)
	}
	return err
}

// fault turns a recovered panic into an error and logs it.
func (r *run) fault(rule *Rule, what string, p any) error {
	err, ok := p.(error)
	if !ok {
		err = fmt.Errorf("%v", p)
	}
	if !r.cfg.suppressValidatorError {
		r.log.Error().Err(err).Str("field", rule.FullField()).Msgf("%s panicked", what)
	}
	return err
}

// expand converts a validator outcome into raw errors.
func (r *run) expand(rule *Rule, err error) []ValidationError {
	if err == nil {
		return nil
	}
	var multi []error
	switch e := err.(type) {
	case MultiError:
		multi = e
	case interface{ Unwrap() []error }:
		multi = e.Unwrap()
	default:
		var ve *ValidationError
		if errors.As(err, &ve) {
			return []ValidationError{*ve}
		}
		if errors.Is(err, ErrFailed) {
			return []ValidationError{{Message: rule.FullField() + " fails"}}
		}
		return []ValidationError{{Message: err.Error()}}
	}
	var out []ValidationError
	for _, e := range multi {
		out = append(out, r.expand(rule, e)...)
	}
	if len(out) == 0 {
		out = []ValidationError{{Message: r.messages.Render(MsgRequired, rule.FullField())}}
	}
	return out
}

// complete fills field paths and values, then applies the error hook.
func (r *run) complete(u *unit, errs []ValidationError) []ValidationError {
	rule := &u.rule
	for i := range errs {
		e := &errs[i]
		if r.cfg.errorFunc != nil {
			field, value := e.Field, e.FieldValue
			*e = r.cfg.errorFunc(rule, e.Message)
			if e.Field == "" {
				e.Field = field
			}
			if e.FieldValue == nil {
				e.FieldValue = value
			}
		}
		switch {
		case e.Field == "":
			e.Field = rule.FullField()
			if e.FieldValue == nil {
				e.FieldValue = u.value
			}
		case e.FieldValue == nil && e.Field != rule.FullField():
			e.FieldValue = u.source[e.Field]
		case e.FieldValue == nil:
			e.FieldValue = u.value
		}
	}
	return errs
}

func messagesOf(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}
