package asyncschema

import (
	"fmt"
	"sort"
	"sync"
)

// TypeValidator implements a rule type. It records failures on c.
type TypeValidator func(c *Check)

var registry = struct {
	sync.RWMutex
	m map[Type]TypeValidator
}{m: map[Type]TypeValidator{}}

func init() {
	for t, fn := range map[Type]TypeValidator{
		TypeString:   validateString,
		TypeMethod:   validateTyped,
		TypeNumber:   validateNumber,
		TypeBoolean:  validateTyped,
		TypeRegexp:   validateRegexp,
		TypeInteger:  validateBounded,
		TypeFloat:    validateBounded,
		TypeArray:    validateArray,
		TypeObject:   validateTyped,
		TypeEnum:     validateEnum,
		TypePattern:  validatePattern,
		TypeDate:     validateDate,
		TypeURL:      validateFormat,
		TypeHex:      validateFormat,
		TypeEmail:    validateFormat,
		TypeAny:      validateAny,
		TypeRequired: validateRequired,
	} {
		registry.m[t] = fn
	}
}

// Register adds or replaces the validator of a rule type. Schemas resolve
// validators in New, so registration affects schemas built afterwards.
func Register(t Type, fn TypeValidator) error {
	if fn == nil {
		return fmt.Errorf("%w: %q", ErrNilValidator, t)
	}
	if t == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownType)
	}
	registry.Lock()
	defer registry.Unlock()
	registry.m[t] = fn
	return nil
}

// RegisteredTypes lists the known rule types in sorted order.
func RegisteredTypes() []Type {
	registry.RLock()
	defer registry.RUnlock()
	out := make([]Type, 0, len(registry.m))
	for t := range registry.m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func lookupValidator(t Type) (TypeValidator, bool) {
	registry.RLock()
	defer registry.RUnlock()
	fn, ok := registry.m[t]
	return fn, ok
}
