// Package codec reads and writes parameter instances as JSON or YAML text.
//
// Decoded values are coerced to the declared type tag of each field, so a
// document written by Marshal reads back into an equal instance.
package codec

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	params "github.com/kpe/go-params"
	"github.com/kpe/go-params/i18n"
)

// Format is a textual representation of a parameter instance.
type Format interface {
	Name() string
	Marshal(p *params.Params) ([]byte, error)
	// Unmarshal returns the top-level entries of the document in document
	// order. Values are not yet coerced.
	Unmarshal(data []byte) (params.Pairs, error)
}

var (
	JSON Format = jsonFormat{}
	YAML Format = yamlFormat{}
)

// ForPath picks the format from the file extension.
func ForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return nil, fmt.Errorf("codec: no format for %q", path)
}

// Marshal encodes p with f.
func Marshal(p *params.Params, f Format) ([]byte, error) { return f.Marshal(p) }

// Unmarshal decodes data with f into a new instance of c.
func Unmarshal(c *params.Class, data []byte, f Format, policy params.UnknownPolicy) (*params.Params, error) {
	pairs, err := f.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return Build(c, pairs, policy)
}

// Build coerces decoded entries to the field types of c and constructs an
// instance from them. With UnknownStrict an undeclared key fails with an
// *params.UnknownFieldError; with UnknownStrip it is dropped.
func Build(c *params.Class, pairs params.Pairs, policy params.UnknownPolicy) (*params.Params, error) {
	switch policy {
	case params.UnknownStrip:
		pairs = c.Split(pairs, params.SplitSubset).Used
	default:
		for _, kv := range pairs {
			if !c.Has(kv.Key) {
				return nil, &params.UnknownFieldError{Class: c.Name(), Key: kv.Key}
			}
		}
	}
	coerced, err := coerce(c, pairs)
	if err != nil {
		return nil, err
	}
	return c.From(coerced)
}

func coerce(c *params.Class, pairs params.Pairs) (params.Pairs, error) {
	var iss params.Issues
	out := make(params.Pairs, 0, len(pairs))
	for _, kv := range pairs {
		f, ok := c.Field(kv.Key)
		if !ok || f.IsDerived() {
			out = append(out, kv)
			continue
		}
		v, err := f.Type.Coerce(kv.Value)
		if err != nil {
			iss = params.AppendIssues(iss, params.Issue{
				Path:    "/" + kv.Key,
				Code:    params.CodeInvalidType,
				Message: i18n.T(params.CodeInvalidType, nil),
				Hint:    "expected " + f.Type.String(),
				Cause:   err,
			})
			continue
		}
		out = append(out, params.KV(kv.Key, v))
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

// Option configures ReadFile and WriteFile.
type Option func(*options)

type options struct {
	logger *slog.Logger
	format Format
}

// WithLogger sets the logger used for I/O diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithFormat overrides the format inferred from the file extension.
func WithFormat(f Format) Option { return func(o *options) { o.format = f } }

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// ReadFile loads an instance of c from the file at path. When the file cannot
// be read the failure is logged and ReadFile returns (nil, nil); decoding and
// schema errors are returned.
func ReadFile(c *params.Class, path string, policy params.UnknownPolicy, opts ...Option) (*params.Params, error) {
	o := newOptions(opts)
	f := o.format
	if f == nil {
		var err error
		if f, err = ForPath(path); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		o.logger.Warn("Failed to read parameters", "class", c.Name(), "path", path, "error", err)
		return nil, nil
	}
	p, err := Unmarshal(c, data, f, policy)
	if err != nil {
		return nil, fmt.Errorf("codec: %s: %w", path, err)
	}
	o.logger.Debug("Loaded parameters", "class", c.Name(), "path", path, "format", f.Name())
	return p, nil
}

// WriteFile stores p at path and reports whether it succeeded. Failures are
// logged.
func WriteFile(p *params.Params, path string, opts ...Option) bool {
	o := newOptions(opts)
	f := o.format
	if f == nil {
		var err error
		if f, err = ForPath(path); err != nil {
			o.logger.Error("Failed to write parameters", "class", p.Class().Name(), "path", path, "error", err)
			return false
		}
	}
	data, err := f.Marshal(p)
	if err != nil {
		o.logger.Error("Failed to encode parameters", "class", p.Class().Name(), "format", f.Name(), "error", err)
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		o.logger.Error("Failed to write parameters", "class", p.Class().Name(), "path", path, "error", err)
		return false
	}
	o.logger.Debug("Stored parameters", "class", p.Class().Name(), "path", path, "format", f.Name())
	return true
}
