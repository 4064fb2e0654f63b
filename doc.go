// Package asyncschema provides:
//
// - Declarative, per-field validation of map-shaped objects (Schema/Rule/Descriptor)
// - Built-in rule types (string, number, array, date, url, enum, pattern, ...)
// - Custom synchronous validators and asynchronous validators backed by futures
// - Short-circuit policies (first error overall, first error per field)
// - Overridable, localisable message templates
//
// Design policy:
//   - Keep only public APIs in the root package; put helpers under internal/.
//   - Errors are ordered by field declaration, then rule order, regardless of
//     which validator finished first.
//   - A Schema is immutable after New and safe for concurrent Validate calls.
//
// Typical usage:
//
//	s, err := asyncschema.New(asyncschema.Fields(
//		asyncschema.F("name", asyncschema.Rule{Type: asyncschema.TypeString, Required: true, Min: asyncschema.N(2)}),
//		asyncschema.F("tags", asyncschema.Rule{Type: asyncschema.TypeArray, DefaultField: asyncschema.Rules{{Type: asyncschema.TypeString}}}),
//	))
//	data, err := s.Validate(ctx, asyncschema.Object{"name": "x"}, asyncschema.WithAllFirstFields())
//	if verr, ok := asyncschema.AsValidationErrors(err); ok {
//		// verr.Errors is ordered; verr.Fields groups them per field path.
//	}
package asyncschema
