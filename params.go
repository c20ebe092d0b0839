package params

import (
	"fmt"
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Params is an instance of a parameter class: an ordered mapping whose key set
// always equals the field names of the class schema. Every read and write is
// checked against that schema.
//
// Instances are not safe for concurrent mutation; concurrent reads of an
// instance nobody mutates are safe.
type Params struct {
	class  *Class
	schema *Schema
	values *orderedmap.OrderedMap[string, any]
	// pass caches derived values for the duration of one evaluation pass.
	pass map[string]any
}

// evaluating marks a derived field whose computation is in progress.
type evaluating struct{}

// New builds an instance from the class defaults and the given overrides.
func (c *Class) New(overrides ...Pair) (*Params, error) {
	return c.From(nil, overrides...)
}

// MustNew is like New but panics on error.
func (c *Class) MustNew(overrides ...Pair) *Params {
	p, err := c.New(overrides...)
	if err != nil {
		panic(err)
	}
	return p
}

// From builds an instance from the class defaults, then src, then overrides,
// and finally evaluates the derived fields in schema order.
func (c *Class) From(src Mapping, overrides ...Pair) (*Params, error) {
	p := newInstance(c.Schema())
	if err := p.Update(src, overrides...); err != nil {
		return nil, err
	}
	return p, nil
}

// newInstance seeds an instance with the stored defaults; derived fields hold
// nil until the first evaluation pass.
func newInstance(s *Schema) *Params {
	p := &Params{class: s.class, schema: s, values: orderedmap.New[string, any]()}
	for _, f := range s.order {
		if f.IsDerived() {
			p.values.Set(f.Name, nil)
			continue
		}
		p.values.Set(f.Name, f.Default)
	}
	return p
}

// Class returns the concrete class of the instance.
func (p *Params) Class() *Class { return p.class }

// Schema returns the schema of the concrete class.
func (p *Params) Schema() *Schema { return p.schema }

// Has reports whether name is a field of the instance.
func (p *Params) Has(name string) bool { return p.schema.Has(name) }

// Len returns the number of fields.
func (p *Params) Len() int { return p.schema.Len() }

// Keys returns the field names in schema order.
func (p *Params) Keys() []string { return p.schema.Names() }

// Get returns the value of name. Derived fields are recomputed from the
// current state on every call.
func (p *Params) Get(name string) (any, error) {
	f, ok := p.schema.Field(name)
	if !ok {
		return nil, unknownField(p.class, name)
	}
	if f.IsDerived() {
		return p.derive(f), nil
	}
	v, _ := p.values.Get(name)
	return v, nil
}

// Value is like Get but panics with an *UnknownFieldError for undeclared names.
func (p *Params) Value(name string) any {
	v, err := p.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Set assigns a single field. Assigning a derived field is accepted but has
// no visible effect: reads always recompute it.
func (p *Params) Set(name string, value any) error {
	if !p.schema.Has(name) {
		return unknownField(p.class, name)
	}
	p.values.Set(name, value)
	return nil
}

// Update applies src and then overrides, so overrides win on conflicts. All
// keys are checked before anything is written; derived fields are evaluated
// again afterwards.
func (p *Params) Update(src Mapping, overrides ...Pair) error {
	pairs := pairsOf(src)
	for _, set := range [][]Pair{pairs, overrides} {
		for _, kv := range set {
			if !p.schema.Has(kv.Key) {
				return unknownField(p.class, kv.Key)
			}
		}
	}
	for _, set := range [][]Pair{pairs, overrides} {
		for _, kv := range set {
			p.values.Set(kv.Key, kv.Value)
		}
	}
	p.evaluate()
	return nil
}

// Clone returns a new instance of the same class seeded with a snapshot of p
// and updated with overrides.
func (p *Params) Clone(overrides ...Pair) (*Params, error) {
	c := &Params{class: p.class, schema: p.schema, values: orderedmap.New[string, any]()}
	for _, kv := range p.Pairs() {
		c.values.Set(kv.Key, kv.Value)
	}
	if err := c.Update(nil, overrides...); err != nil {
		return nil, err
	}
	return c, nil
}

// Pairs returns a snapshot of all fields in schema order. It makes *Params a
// Mapping, so instances can seed other instances.
func (p *Params) Pairs() []Pair {
	if p == nil {
		return nil
	}
	view := p.passView()
	out := make([]Pair, 0, len(p.schema.order))
	for _, f := range p.schema.order {
		if f.IsDerived() {
			out = append(out, Pair{Key: f.Name, Value: view.derive(f)})
			continue
		}
		v, _ := p.values.Get(f.Name)
		out = append(out, Pair{Key: f.Name, Value: v})
	}
	return out
}

// Map returns a snapshot of all fields as a plain map.
func (p *Params) Map() map[string]any { return Pairs(p.Pairs()).Map() }

// Equal reports whether o is an instance of the same class holding equal
// values.
func (p *Params) Equal(o *Params) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.class == o.class && reflect.DeepEqual(p.Map(), o.Map())
}

func (p *Params) String() string {
	b := &strings.Builder{}
	b.WriteString(p.class.Name())
	b.WriteByte('{')
	for i, kv := range p.Pairs() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: %v", kv.Key, kv.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// evaluate recomputes every derived field in schema order and stores the
// results, so snapshots of the backing map stay current.
func (p *Params) evaluate() {
	if !p.schema.hasDerived {
		return
	}
	view := p.passView()
	for _, f := range p.schema.order {
		if f.IsDerived() {
			p.values.Set(f.Name, view.derive(f))
		}
	}
}

// passView returns an instance sharing p's values with a fresh pass cache.
// Derived computations receive the view, so a single read or evaluation pass
// computes each derived field at most once without writing to p.
func (p *Params) passView() *Params {
	return &Params{class: p.class, schema: p.schema, values: p.values, pass: map[string]any{}}
}

func (p *Params) derive(f *Spec) any {
	if p.pass == nil {
		return p.passView().derive(f)
	}
	if v, ok := p.pass[f.Name]; ok {
		if _, busy := v.(evaluating); busy {
			panic(fmt.Sprintf("params: derived field %s.%s depends on itself", p.class.Name(), f.Name))
		}
		return v
	}
	p.pass[f.Name] = evaluating{}
	v := f.Derive(p)
	p.pass[f.Name] = v
	return v
}

// tryDerive is derive for class-level defaults: a computation that panics
// yields nil, and the fields it left half-evaluated are dropped from the pass.
func (p *Params) tryDerive(f *Spec) (v any) {
	defer func() {
		if recover() != nil {
			for name, pv := range p.pass {
				if _, busy := pv.(evaluating); busy {
					delete(p.pass, name)
				}
			}
			v = nil
		}
	}()
	return p.derive(f)
}
