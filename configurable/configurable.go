// Package configurable builds values whose configuration is a parameter
// instance.
//
// A Factory pairs a parameter class with a constructor. Keyword arguments
// handed to the factory are split: the keys the class declares become the
// value's parameters, the rest are forwarded to the constructor together with
// the positional arguments. Values that embed Embed get the resolved
// parameters bound after construction.
package configurable

import (
	"errors"
	"fmt"
	"sync"

	params "github.com/kpe/go-params"
)

// ErrNoFactory is returned by Create when the parameters are nil or no
// factory is registered for their class.
var ErrNoFactory = errors.New("configurable: no factory registered")

// Embed exposes the parameters a value was built with. Embed it by value in
// the configured type.
type Embed struct {
	params *params.Params
}

// Params returns the parameters bound at construction time.
func (e *Embed) Params() *params.Params { return e.params }

func (e *Embed) bind(p *params.Params) { e.params = p }

type binder interface {
	bind(p *params.Params)
}

// ConstructFunc builds a value from its resolved parameters, the positional
// arguments and the keyword arguments the parameter class did not consume.
type ConstructFunc[T any] func(p *params.Params, args []any, rest params.Pairs) (T, error)

// Factory constructs values of type T configured by instances of one class.
type Factory[T any] struct {
	class     *params.Class
	construct ConstructFunc[T]
}

// factories maps a parameter class to the factory registered for it.
var factories sync.Map // *params.Class -> any (*Factory[T])

// NewFactory returns a factory for class c and registers it, so Create can
// find it from an instance of c. A later registration for the same class
// replaces the earlier one.
func NewFactory[T any](c *params.Class, construct ConstructFunc[T]) *Factory[T] {
	f := &Factory[T]{class: c, construct: construct}
	factories.Store(c, f)
	return f
}

// Class returns the parameter class of the factory.
func (f *Factory[T]) Class() *params.Class { return f.class }

// New splits kwargs into parameters and the rest, then constructs the value.
func (f *Factory[T]) New(args []any, kwargs params.Mapping) (T, error) {
	p, rest := f.class.FromDict(kwargs)
	v, err := f.construct(p, args, rest)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("configurable: construct %s: %w", f.class.Name(), err)
	}
	if b, ok := any(v).(binder); ok {
		b.bind(p)
	}
	return v, nil
}

// FromParams constructs a value from existing parameters. Declared keys in
// kwargs override the matching entries of p; p may belong to a related class,
// in which case only the keys this factory's class declares are taken from it.
func (f *Factory[T]) FromParams(p *params.Params, args []any, kwargs params.Mapping) (T, error) {
	var zero T
	overrides := f.class.Split(kwargs, params.SplitSubset)
	base := f.class.Split(p, params.SplitInstance).Instance
	merged, err := base.Clone(overrides.Used...)
	if err != nil {
		return zero, err
	}
	all := append(params.Pairs(merged.Pairs()), overrides.Unused...)
	return f.New(args, all)
}

// Create constructs a value from p with the factory registered for p's class.
func Create[T any](p *params.Params, args []any, kwargs params.Mapping) (T, error) {
	var zero T
	if p == nil {
		return zero, fmt.Errorf("%w: nil params", ErrNoFactory)
	}
	v, ok := factories.Load(p.Class())
	if !ok {
		return zero, fmt.Errorf("%w for %s", ErrNoFactory, p.Class().Name())
	}
	f, ok := v.(*Factory[T])
	if !ok {
		return zero, fmt.Errorf("configurable: factory for %s does not build %T", p.Class().Name(), zero)
	}
	return f.FromParams(p, args, kwargs)
}
