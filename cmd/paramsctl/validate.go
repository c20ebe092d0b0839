package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	j "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/cobra"

	params "github.com/kpe/go-params"
	"github.com/kpe/go-params/codec"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a parameter file against the JSON Schema of the training parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFile(trainParams, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return err
		},
	}
}

// validateFile checks the document at path against c's exported schema.
// Unlike codec.ReadFile it reports every violation at once.
func validateFile(c *params.Class, path string) error {
	f, err := codec.ForPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	pairs, err := f.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	schema, err := compileSchema(c)
	if err != nil {
		return err
	}

	doc, err := j.Marshal(pairs.Map())
	if err != nil {
		return err
	}
	dec := j.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return formatValidationError(path, ve)
		}
		return fmt.Errorf("%s: validation failed: %w", path, err)
	}
	return nil
}

func compileSchema(c *params.Class) (*jsonschema.Schema, error) {
	s, err := c.JSONSchema()
	if err != nil {
		return nil, err
	}
	b, err := j.Marshal(s)
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("adding schema for %s: %w", c.Name(), err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema for %s: %w", c.Name(), err)
	}
	return schema, nil
}

// formatValidationError flattens the cause tree into one line per leaf.
func formatValidationError(path string, err *jsonschema.ValidationError) error {
	var messages []string
	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 && e.Message != "" {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", loc, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		return fmt.Errorf("%s: validation failed", path)
	}
	return fmt.Errorf("%s: validation failed:\n  %s", path, strings.Join(messages, "\n  "))
}
