package params

// DeriveFunc computes a derived field from the instance it belongs to.
type DeriveFunc func(p *Params) any

// Spec describes one declared field. Passing a Spec as the value of
// Builder.Field declares the field with exactly this metadata.
type Spec struct {
	// Name is assigned at declaration time.
	Name string
	// Default is the value of a stored field when nothing overrides it.
	Default any
	// Derive makes the field derived; Default is then ignored.
	Derive DeriveFunc
	// Type is inferred from Default when left as Any.
	Type Type
	// Doc exposes the field on the command line when non-empty.
	Doc        string
	Required   bool
	Positional bool
	// Owner is the class that declared the field.
	Owner *Class
}

// Param builds an explicit Spec for a stored field with the given default.
func Param(value any) Spec { return Spec{Default: value} }

// Kind reports whether the field is stored or derived.
func (s *Spec) Kind() Kind {
	if s.Derive != nil {
		return Derived
	}
	return Stored
}

// IsDerived is shorthand for Kind() == Derived.
func (s *Spec) IsDerived() bool { return s.Derive != nil }

func (s *Spec) clone() *Spec {
	c := *s
	return &c
}
