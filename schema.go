package params

import (
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	js "github.com/kpe/go-params/jsonschema"
)

// Schema is the aggregated, immutable field table of one class.
type Schema struct {
	class      *Class
	fields     *orderedmap.OrderedMap[string, *Spec]
	order      []*Spec
	hasDerived bool
}

// buildSchema merges the parents' schemas left-to-right and then the class's
// own declarations. A name keeps the position where it was first introduced;
// the latest declaration of it replaces the spec.
func buildSchema(c *Class) *Schema {
	table := orderedmap.New[string, *Spec]()
	for _, p := range c.parents {
		ps := p.Schema()
		for pair := ps.fields.Oldest(); pair != nil; pair = pair.Next() {
			table.Set(pair.Key, pair.Value)
		}
	}
	for _, d := range c.decls {
		table.Set(d.Name, d)
	}
	s := &Schema{class: c, fields: table, order: make([]*Spec, 0, table.Len())}
	for pair := table.Oldest(); pair != nil; pair = pair.Next() {
		s.order = append(s.order, pair.Value)
		if pair.Value.IsDerived() {
			s.hasDerived = true
		}
	}
	return s
}

// Class returns the class the schema was built for.
func (s *Schema) Class() *Class { return s.class }

// Fields returns the specs in schema order.
func (s *Schema) Fields() []*Spec { return append([]*Spec(nil), s.order...) }

// Field looks up the spec of name.
func (s *Schema) Field(name string) (*Spec, bool) { return s.fields.Get(name) }

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields.Get(name)
	return ok
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.order) }

// Names returns the field names in schema order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.order))
	for i, f := range s.order {
		out[i] = f.Name
	}
	return out
}

// Defaults returns the default of every field in schema order. Stored fields
// report their declared value. Derived fields are computed against a fresh
// default instance on every call and report nil when that computation fails.
func (s *Schema) Defaults() Pairs {
	var view *Params
	if s.hasDerived {
		view = newInstance(s).passView()
	}
	out := make(Pairs, len(s.order))
	for i, f := range s.order {
		v := f.Default
		if f.IsDerived() {
			v = view.tryDerive(f)
		}
		out[i] = Pair{Key: f.Name, Value: v}
	}
	return out
}

// Default returns the default of name; see Defaults.
func (s *Schema) Default(name string) (any, bool) {
	f, ok := s.fields.Get(name)
	if !ok {
		return nil, false
	}
	if !f.IsDerived() {
		return f.Default, true
	}
	return newInstance(s).passView().tryDerive(f), true
}

// JSONSchema projects the class into a JSON Schema document for docs export.
// Fields whose default is nil also admit null.
func (s *Schema) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(s.order))
	var req []string
	for _, f := range s.order {
		ps := jsonSchemaType(f.Type)
		ps.Description = f.Doc
		if f.IsDerived() {
			ps.ReadOnly = true
		} else {
			ps.Default = jsonValue(f.Default)
			if t, ok := ps.Type.(string); ok && f.Default == nil {
				ps.Type = []string{t, "null"}
			}
		}
		props[f.Name] = ps
		if f.Required {
			req = append(req, f.Name)
		}
	}
	return &js.Schema{
		Title:                s.class.Name(),
		Type:                 "object",
		Properties:           props,
		PropertyOrder:        s.Names(),
		Required:             req,
		AdditionalProperties: false,
	}, nil
}

func jsonSchemaType(t Type) *js.Schema {
	switch t {
	case Bool:
		return &js.Schema{Type: "boolean"}
	case Int:
		return &js.Schema{Type: "integer"}
	case Float:
		return &js.Schema{Type: "number"}
	case String:
		return &js.Schema{Type: "string"}
	case Duration:
		return &js.Schema{Type: "string", Format: "duration"}
	case Strings:
		return &js.Schema{Type: "array", Items: &js.Schema{Type: "string"}}
	}
	return &js.Schema{}
}

// jsonValue renders durations the way the text codecs write them.
func jsonValue(v any) any {
	if d, ok := v.(time.Duration); ok {
		return d.String()
	}
	return v
}

// JSONSchema is shorthand for c.Schema().JSONSchema().
func (c *Class) JSONSchema() (*js.Schema, error) { return c.Schema().JSONSchema() }
