package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	params "github.com/kpe/go-params"
	"github.com/kpe/go-params/i18n"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

type yamlFormat struct{}

func (yamlFormat) Name() string { return "yaml" }

// Marshal writes a mapping whose keys follow schema order.
func (yamlFormat) Marshal(p *params.Params) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range p.Pairs() {
		var v yaml.Node
		if err := v.Encode(kv.Value); err != nil {
			return nil, fmt.Errorf("encode %s: %w", kv.Key, err)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: kv.Key},
			&v,
		)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal reads the first document, which must be a mapping. Duplicate keys
// at any depth are reported with their positions.
func (yamlFormat) Unmarshal(data []byte) (params.Pairs, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return params.Pairs{}, nil
		}
		return nil, parseIssue("/", err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return params.Pairs{}, nil
		}
		doc = doc.Content[0]
	}
	if doc.Kind == yaml.ScalarNode && doc.Tag == "!!null" {
		return params.Pairs{}, nil
	}
	if doc.Kind != yaml.MappingNode {
		return nil, params.Issues{{
			Path:    "/",
			Code:    params.CodeInvalidType,
			Message: i18n.T(params.CodeInvalidType, nil),
			Hint:    "expected a YAML mapping",
		}}
	}

	out := make(params.Pairs, 0, len(doc.Content)/2)
	first := make(map[string][2]int, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		k, v := doc.Content[i], doc.Content[i+1]
		if pos, dup := first[k.Value]; dup {
			return nil, duplicateIssue(&DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column})
		}
		first[k.Value] = [2]int{k.Line, k.Column}
		val, err := nodeValue(v)
		if err != nil {
			var dke *DuplicateKeyError
			if errors.As(err, &dke) {
				return nil, duplicateIssue(dke)
			}
			return nil, parseIssue("/"+k.Value, err)
		}
		out = append(out, params.KV(k.Value, val))
	}
	return out, nil
}

func duplicateIssue(e *DuplicateKeyError) error {
	return params.Issues{{
		Path:    "/" + e.Key,
		Code:    params.CodeDuplicateKey,
		Message: i18n.T(params.CodeDuplicateKey, nil),
		Hint:    e.Error(),
		Cause:   e,
	}}
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if pos, dup := first[k.Value]; dup {
				return nil, &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
			val, err := nodeValue(v)
			if err != nil {
				return nil, err
			}
			m[k.Value] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return n.Value, nil
			}
			return b, nil
		case "!!int":
			if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
				return int(i), nil
			}
			return n.Value, nil
		case "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return n.Value, nil
			}
			return f, nil
		default:
			return n.Value, nil
		}
	}
	return nil, nil
}
