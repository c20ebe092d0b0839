package cli

import (
	"fmt"
	"strings"

	params "github.com/kpe/go-params"
)

// value is a pflag.Value that parses its argument with the field's type tag.
// Boolean flags take an explicit argument ("--verbose yes").
type value struct {
	spec *params.Spec
	v    any
}

func newValue(s *params.Spec) *value { return &value{spec: s, v: s.Default} }

func (v *value) String() string {
	switch x := v.v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(x, ",")
	}
	return fmt.Sprint(v.v)
}

func (v *value) Set(s string) error {
	x, err := v.spec.Type.Parse(s)
	if err != nil {
		return err
	}
	v.v = x
	return nil
}

// Type names follow pflag's built-in flag types.
func (v *value) Type() string {
	switch v.spec.Type {
	case params.Bool:
		return "bool"
	case params.Int:
		return "int"
	case params.Float:
		return "float64"
	case params.Duration:
		return "duration"
	case params.Strings:
		return "strings"
	}
	return "string"
}
