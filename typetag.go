package params

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Type is the declared type tag of a field. It documents the field and drives
// coercion of textual or decoded input; it is not enforced on every Set.
type Type int

const (
	Any Type = iota
	Bool
	Int
	Float
	String
	Duration
	Strings
)

var typeNames = [...]string{
	Any:      "any",
	Bool:     "bool",
	Int:      "int",
	Float:    "float",
	String:   "string",
	Duration: "duration",
	Strings:  "strings",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

var durationType = reflect.TypeOf(time.Duration(0))

// TypeOf infers a type tag from the runtime type of v. nil and unsupported
// types yield Any.
func TypeOf(v any) Type {
	if v == nil {
		return Any
	}
	rt := reflect.TypeOf(v)
	if rt == durationType {
		return Duration
	}
	switch rt.Kind() {
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.String:
		return String
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.String {
			return Strings
		}
	}
	return Any
}

// Accepts reports whether v is a valid concrete value for the tag. nil is
// accepted by every tag.
func (t Type) Accepts(v any) bool {
	if v == nil || t == Any {
		return true
	}
	return TypeOf(v) == t
}

// jsonNumber matches json.Number from both encoding/json and goccy/go-json.
type jsonNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// Coerce normalizes a decoded value (JSON, YAML, viper) into the Go type of
// the tag. Values the tag already accepts are returned unchanged.
func (t Type) Coerce(v any) (any, error) {
	if n, ok := v.(jsonNumber); ok {
		return t.coerceNumber(n)
	}
	if t.Accepts(v) {
		return v, nil
	}
	switch t {
	case Int:
		switch x := v.(type) {
		case float64:
			return floatToInt(x)
		case float32:
			return floatToInt(float64(x))
		case string:
			return t.Parse(x)
		}
	case Float:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		case reflect.String:
			return t.Parse(rv.String())
		}
	case Bool, Duration:
		if s, ok := v.(string); ok {
			return t.Parse(s)
		}
		if t == Duration {
			rv := reflect.ValueOf(v)
			switch rv.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				return time.Duration(rv.Int()), nil
			case reflect.Float64:
				return time.Duration(rv.Float()), nil
			}
		}
	case String:
		switch x := v.(type) {
		case fmt.Stringer:
			return x.String(), nil
		case bool, int, int64, float64:
			return fmt.Sprint(x), nil
		}
	case Strings:
		switch x := v.(type) {
		case []any:
			out := make([]string, 0, len(x))
			for _, it := range x {
				s, ok := it.(string)
				if !ok {
					return nil, fmt.Errorf("params: cannot use %T element as %s", it, t)
				}
				out = append(out, s)
			}
			return out, nil
		case string:
			return t.Parse(x)
		}
	}
	return nil, fmt.Errorf("params: cannot use %T value as %s", v, t)
}

// floatToInt accepts whole numbers that fit in an int.
func floatToInt(f float64) (any, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("params: %v is not an int", f)
	}
	if f < math.MinInt || f >= -math.MinInt {
		return nil, fmt.Errorf("params: %v overflows int", f)
	}
	return int(f), nil
}

func (t Type) coerceNumber(n jsonNumber) (any, error) {
	switch t {
	case Int:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return nil, fmt.Errorf("params: %s is not an int", n.String())
			}
			return floatToInt(f)
		}
		return int(i), nil
	case Float:
		return n.Float64()
	case Duration:
		i, err := n.Int64()
		if err != nil {
			return nil, err
		}
		return time.Duration(i), nil
	case String:
		return n.String(), nil
	case Any:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		return n.Float64()
	}
	return nil, fmt.Errorf("params: cannot use number %s as %s", n.String(), t)
}

var (
	truthy = map[string]bool{"yes": true, "true": true, "t": true, "y": true, "1": true}
	falsy  = map[string]bool{"no": true, "false": true, "f": true, "n": true, "0": true}
)

// ParseBool accepts, case-insensitively, yes/true/t/y/1 and no/false/f/n/0.
func ParseBool(s string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case truthy[v]:
		return true, nil
	case falsy[v]:
		return false, nil
	}
	return false, fmt.Errorf("boolean value expected, got %q", s)
}

// Parse converts command-line text into a value of the tag. Any keeps the
// text as is.
func (t Type) Parse(text string) (any, error) {
	switch t {
	case Bool:
		return ParseBool(text)
	case Int:
		i, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("int value expected, got %q", text)
		}
		return i, nil
	case Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("float value expected, got %q", text)
		}
		return f, nil
	case Duration:
		d, err := time.ParseDuration(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("duration value expected, got %q", text)
		}
		return d, nil
	case Strings:
		if text == "" {
			return []string{}, nil
		}
		parts := strings.Split(text, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
	return text, nil
}
