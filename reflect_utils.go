package params

import (
	"fmt"
	"reflect"
	"strings"
)

type structKeyOpts struct {
	required   bool
	positional bool
}

// ResolveStructKey applies the repository-wide rule to resolve a struct
// field's parameter name.
// Priority: params tag name > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if pt := sf.Tag.Get("params"); pt != "" {
		name, _, _ := strings.Cut(pt, ",")
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i]
			}
		} else {
			return jt
		}
	}
	return sf.Name
}

// structKeyOptions reads the flags that follow the name in a params tag.
func structKeyOptions(sf reflect.StructField) structKeyOpts {
	var opts structKeyOpts
	parts := strings.Split(sf.Tag.Get("params"), ",")
	for _, p := range parts[1:] {
		switch strings.TrimSpace(p) {
		case "required":
			opts.required = true
		case "positional":
			opts.positional = true
		}
	}
	return opts
}

// Decode copies the values of p into the struct pointed to by out. Struct
// fields are matched with ResolveStructKey; fields without a matching
// parameter are left untouched.
func Decode(p *Params, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params: Decode requires a non-nil struct pointer, got %T", out)
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" || !p.Has(key) {
			continue
		}
		fv := rv.Field(i)
		if !fv.CanSet() {
			continue
		}
		val := p.Value(key)
		// Gracefully handle nulls for nillable fields
		if val == nil {
			switch fv.Kind() {
			case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
				fv.Set(reflect.Zero(fv.Type()))
			}
			continue
		}
		vv := reflect.ValueOf(val)
		switch {
		case vv.Type().AssignableTo(fv.Type()):
			fv.Set(vv)
		case vv.Type().ConvertibleTo(fv.Type()) && convertible(vv.Kind(), fv.Kind()):
			fv.Set(vv.Convert(fv.Type()))
		default:
			return fmt.Errorf("params: cannot decode %s (%T) into field %s of type %s", key, val, sf.Name, fv.Type())
		}
	}
	return nil
}

// convertible rejects the number-to-string conversions reflect would allow.
func convertible(from, to reflect.Kind) bool {
	if to == reflect.String {
		return from == reflect.String
	}
	return true
}
