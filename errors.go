package params

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kpe/go-params/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnknownKey   = "unknown_key"
	CodeInvalidType  = "invalid_type"
	CodeReservedName = "reserved_name"
	CodeDuplicateKey = "duplicate_key"
	CodeRequired     = "required"
	CodeParseError   = "parse_error"
	CodeInvalidValue = "invalid_value"
)

var (
	// ErrUnknownField matches every *UnknownFieldError via errors.Is.
	ErrUnknownField = errors.New("params: unexpected parameter")
	// ErrDeclaration matches every *DeclarationError via errors.Is.
	ErrDeclaration = errors.New("params: invalid class declaration")
)

// Issue represents a single declaration or decoding problem.
type Issue struct {
	Path    string // JSON Pointer of the field (for example: /param_a).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected type names, etc.
	Cause   error  // Optional: underlying error.
}

// Issues is a collection of problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /param_a
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Hint != "" {
			fmt.Fprintf(b, " (%s)", it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var de *DeclarationError
	if errors.As(err, &de) {
		return de.Issues, true
	}
	return nil, false
}

// UnknownFieldError reports a read or write of a key that is not part of the
// schema of the concrete class.
type UnknownFieldError struct {
	Class string
	Key   string
}

func (e *UnknownFieldError) Error() string {
	return i18n.T(CodeUnknownKey, map[string]string{"key": e.Key, "class": e.Class})
}

// Is makes errors.Is(err, ErrUnknownField) hold.
func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// Code returns CodeUnknownKey.
func (e *UnknownFieldError) Code() string { return CodeUnknownKey }

// DeclarationError is returned by Builder.Build when a class declaration is
// invalid. It aborts the definition of that class.
type DeclarationError struct {
	Class  string
	Issues Issues
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("params: invalid declaration of %s: %s", e.Class, e.Issues.Error())
}

// Is makes errors.Is(err, ErrDeclaration) hold.
func (e *DeclarationError) Is(target error) bool { return target == ErrDeclaration }

// Unwrap exposes the issues so errors.As(err, &Issues{}) works.
func (e *DeclarationError) Unwrap() error { return e.Issues }

func unknownField(c *Class, key string) error {
	return &UnknownFieldError{Class: c.Name(), Key: key}
}
