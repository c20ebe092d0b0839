package codec

import (
	"bytes"
	"fmt"
	"io"
	"time"

	j "github.com/goccy/go-json"

	params "github.com/kpe/go-params"
	"github.com/kpe/go-params/i18n"
)

type jsonFormat struct{}

func (jsonFormat) Name() string { return "json" }

// Marshal writes a key-sorted object indented by two spaces, followed by a
// newline. Durations are written in time.Duration's text form.
func (jsonFormat) Marshal(p *params.Params) ([]byte, error) {
	m := p.Map()
	for k, v := range m {
		if d, ok := v.(time.Duration); ok {
			m[k] = d.String()
		}
	}
	b, err := j.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Unmarshal reads the top-level object token by token so document order is
// kept and repeated keys are reported.
func (jsonFormat) Unmarshal(data []byte) (params.Pairs, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, parseIssue("/", err)
	}
	if d, ok := tok.(j.Delim); !ok || d != '{' {
		return nil, params.Issues{{
			Path:    "/",
			Code:    params.CodeInvalidType,
			Message: i18n.T(params.CodeInvalidType, nil),
			Hint:    "expected a JSON object",
		}}
	}

	var (
		out  params.Pairs
		iss  params.Issues
		seen = map[string]struct{}{}
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, parseIssue("/", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, parseIssue("/", fmt.Errorf("unexpected token %v", tok))
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, parseIssue("/"+key, err)
		}
		if _, dup := seen[key]; dup {
			iss = params.AppendIssues(iss, params.Issue{
				Path:    "/" + key,
				Code:    params.CodeDuplicateKey,
				Message: i18n.T(params.CodeDuplicateKey, nil),
				Hint:    "key '" + key + "' duplicated",
			})
			continue
		}
		seen[key] = struct{}{}
		out = append(out, params.KV(key, normalize(v, false)))
	}
	if _, err := dec.Token(); err != nil {
		return nil, parseIssue("/", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, parseIssue("/", fmt.Errorf("trailing data after object"))
	}
	if len(iss) > 0 {
		return nil, iss
	}
	if out == nil {
		out = params.Pairs{}
	}
	return out, nil
}

// normalize converts numbers nested in arrays and objects to int or float64.
// Top-level numbers stay as j.Number; the field type tag decides their Go type.
func normalize(v any, nested bool) any {
	switch x := v.(type) {
	case j.Number:
		if !nested {
			return x
		}
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = normalize(x[i], true)
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k], true)
		}
		return x
	}
	return v
}

func parseIssue(path string, err error) error {
	return params.Issues{{
		Path:    path,
		Code:    params.CodeParseError,
		Message: i18n.T(params.CodeParseError, nil),
		Hint:    err.Error(),
		Cause:   err,
	}}
}
