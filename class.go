package params

// Class is a declared parameter class: its direct parents and its own field
// declarations. The aggregated schema is built on first use.
type Class struct {
	name    string
	parents []*Class
	decls   []*Spec
}

// Name returns the declared class name.
func (c *Class) Name() string { return c.name }

func (c *Class) String() string { return c.name }

// Parents returns the direct parents in declaration order.
func (c *Class) Parents() []*Class { return append([]*Class(nil), c.parents...) }

// Declared returns the fields declared directly on c, in declaration order.
func (c *Class) Declared() []*Spec { return append([]*Spec(nil), c.decls...) }

// Schema returns the aggregated schema of c, building and memoizing it on
// first use.
func (c *Class) Schema() *Schema { return schemaOf(c) }

// Fields returns the aggregated field specs in schema order.
func (c *Class) Fields() []*Spec { return c.Schema().Fields() }

// Field looks up the aggregated spec of name.
func (c *Class) Field(name string) (*Spec, bool) { return c.Schema().Field(name) }

// Names returns the field names in schema order.
func (c *Class) Names() []string { return c.Schema().Names() }

// Has reports whether name is a field of c.
func (c *Class) Has(name string) bool { return c.Schema().Has(name) }

// Len returns the number of fields.
func (c *Class) Len() int { return c.Schema().Len() }

// Default returns the class-level default of name without an instance at
// hand. Derived fields report the value computed against a default instance,
// or nil if the computation fails.
func (c *Class) Default(name string) (any, bool) { return c.Schema().Default(name) }

// Defaults returns the name -> default mapping in schema order.
func (c *Class) Defaults() Pairs { return c.Schema().Defaults() }

// IsSubclassOf reports whether other is c or one of its ancestors.
func (c *Class) IsSubclassOf(other *Class) bool {
	if c == other {
		return true
	}
	for _, p := range c.parents {
		if p.IsSubclassOf(other) {
			return true
		}
	}
	return false
}
