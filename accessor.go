package params

import "fmt"

// Key is a typed handle for one field, resolved against the class once when
// it is created. It is the attribute-style counterpart of Params.Get/Set:
// both go through the same schema check.
type Key[T any] struct {
	class *Class
	name  string
}

// KeyOf returns the typed handle of name. It panics with an
// *UnknownFieldError when c has no such field, which keeps a misspelt handle
// from surviving package initialization.
func KeyOf[T any](c *Class, name string) Key[T] {
	if !c.Has(name) {
		panic(unknownField(c, name))
	}
	return Key[T]{class: c, name: name}
}

// Name returns the field name.
func (k Key[T]) Name() string { return k.name }

// Class returns the class the handle was resolved against.
func (k Key[T]) Class() *Class { return k.class }

// Get returns the typed value of the field in p. It panics when p lacks the
// field or holds a value of another type; use Lookup to get an error instead.
func (k Key[T]) Get(p *Params) T {
	v, err := Get[T](p, k.name)
	if err != nil {
		panic(err)
	}
	return v
}

// Lookup is like Get but returns an error instead of panicking.
func (k Key[T]) Lookup(p *Params) (T, error) { return Get[T](p, k.name) }

// Set assigns the field in p.
func (k Key[T]) Set(p *Params, v T) error { return p.Set(k.name, v) }

// Get returns the value of name in p as T. A nil value yields the zero T.
func Get[T any](p *Params, name string) (T, error) {
	var zero T
	v, err := p.Get(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("params: %s.%s holds %T, not %T", p.Class().Name(), name, v, zero)
	}
	return t, nil
}
