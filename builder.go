package params

import (
	"reflect"

	"github.com/kpe/go-params/i18n"
)

// Builder collects the direct declarations of one class.
type Builder struct {
	name    string
	parents []*Class
	decls   []*Spec
	index   map[string]int
	issues  Issues
}

// FieldStep is returned by Field/Derived to adjust the field just declared.
type FieldStep struct {
	b    *Builder
	spec *Spec
}

// Declare starts the declaration of a class. Parents are merged left-to-right:
// a later parent overrides a same-named field of an earlier one.
func Declare(name string, parents ...*Class) *Builder {
	b := &Builder{name: name, index: map[string]int{}}
	for _, p := range parents {
		if p == nil {
			b.issues = AppendIssues(b.issues, Issue{Path: "/", Code: CodeInvalidValue, Message: i18n.T(CodeInvalidValue, nil), Hint: "nil parent class"})
			continue
		}
		b.parents = append(b.parents, p)
	}
	return b
}

// Field declares a field. value may be a concrete default (stored field), a
// DeriveFunc or func(*Params) any (derived field), or a Spec used as given.
func (b *Builder) Field(name string, value any) *FieldStep {
	var s *Spec
	switch v := value.(type) {
	case Spec:
		s = v.clone()
	case *Spec:
		if v == nil {
			s = &Spec{}
			break
		}
		s = v.clone()
	case DeriveFunc:
		s = &Spec{Derive: v}
		if v == nil {
			b.issues = AppendIssues(b.issues, Issue{Path: "/" + name, Code: CodeInvalidValue, Message: i18n.T(CodeInvalidValue, nil), Hint: "nil derive function"})
		}
	case func(*Params) any:
		s = &Spec{Derive: v}
		if v == nil {
			b.issues = AppendIssues(b.issues, Issue{Path: "/" + name, Code: CodeInvalidValue, Message: i18n.T(CodeInvalidValue, nil), Hint: "nil derive function"})
		}
	default:
		s = &Spec{Default: value}
	}
	s.Name = name
	return b.put(s)
}

// Derived declares a derived field computed by fn.
func (b *Builder) Derived(name string, fn DeriveFunc) *FieldStep {
	return b.Field(name, fn)
}

// Struct declares one stored field per exported field of the struct v, using
// the field values as defaults. Keys resolve as params tag name > json tag
// name > Go field name; options in the params tag are "required" and
// "positional", and a doc tag supplies the documentation.
func (b *Builder) Struct(v any) *Builder {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			break
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		b.issues = AppendIssues(b.issues, Issue{Path: "/", Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, nil), Hint: "Struct requires a struct value"})
		return b
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		key := ResolveStructKey(sf)
		opts := structKeyOptions(sf)
		if key == "-" {
			continue
		}
		step := b.Field(key, rv.Field(i).Interface())
		if doc := sf.Tag.Get("doc"); doc != "" {
			step.Doc(doc)
		}
		if opts.required {
			step.Required()
		}
		if opts.positional {
			step.Positional()
		}
	}
	return b
}

func (b *Builder) put(s *Spec) *FieldStep {
	if s.Name == "" || s.Name[0] == '_' {
		b.issues = AppendIssues(b.issues, Issue{Path: "/" + s.Name, Code: CodeReservedName, Message: i18n.T(CodeReservedName, nil), Hint: "field names must be non-empty and must not start with '_'"})
		// keep the step usable; the spec is never registered
		return &FieldStep{b: b, spec: s}
	}
	if i, ok := b.index[s.Name]; ok {
		b.decls[i] = s
	} else {
		b.index[s.Name] = len(b.decls)
		b.decls = append(b.decls, s)
	}
	return &FieldStep{b: b, spec: s}
}

// Doc sets the documentation of the current field.
func (f *FieldStep) Doc(doc string) *FieldStep {
	f.spec.Doc = doc
	return f
}

// Type sets the declared type tag of the current field. A concrete default
// must be accepted by it or Build fails.
func (f *FieldStep) Type(t Type) *FieldStep {
	f.spec.Type = t
	return f
}

// Required marks the current field as mandatory on the command line.
func (f *FieldStep) Required() *FieldStep {
	f.spec.Required = true
	return f
}

// Positional exposes the current field as a positional command-line argument.
func (f *FieldStep) Positional() *FieldStep {
	f.spec.Positional = true
	return f
}

// Field ends the current field and declares the next stored one.
func (f *FieldStep) Field(name string, value any) *FieldStep { return f.b.Field(name, value) }

// Derived ends the current field and declares a derived one.
func (f *FieldStep) Derived(name string, fn DeriveFunc) *FieldStep { return f.b.Derived(name, fn) }

// Struct ends the current field and declares the fields of v; see Builder.Struct.
func (f *FieldStep) Struct(v any) *Builder { return f.b.Struct(v) }

// Build ends the declaration; see Builder.Build.
func (f *FieldStep) Build() (*Class, error) { return f.b.Build() }

// MustBuild is like Build but panics on error.
func (f *FieldStep) MustBuild() *Class { return f.b.MustBuild() }

// Build validates the declarations and returns the class. Type tags of stored
// fields are inferred from their defaults unless given explicitly.
func (b *Builder) Build() (*Class, error) {
	iss := append(Issues(nil), b.issues...)
	c := &Class{name: b.name, parents: append([]*Class(nil), b.parents...)}
	decls := make([]*Spec, 0, len(b.decls))
	for _, d := range b.decls {
		s := d.clone()
		s.Owner = c
		if s.Derive == nil {
			if s.Type == Any {
				s.Type = TypeOf(s.Default)
			} else if !s.Type.Accepts(s.Default) {
				iss = AppendIssues(iss, Issue{
					Path:    "/" + s.Name,
					Code:    CodeInvalidType,
					Message: i18n.T(CodeInvalidType, nil),
					Hint:    "default of type " + TypeOf(s.Default).String() + " declared as " + s.Type.String(),
				})
				continue
			}
		}
		decls = append(decls, s)
	}
	if len(iss) > 0 {
		return nil, &DeclarationError{Class: b.name, Issues: iss}
	}
	c.decls = decls
	return c, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Class {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
