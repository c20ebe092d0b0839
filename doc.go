// Package params provides:
//
// - Parameter classes: a fixed, ordered set of declared fields (defaults, docs,
//   type tags, required/positional flags, derived fields) built with Declare
// - Hierarchical composition: a class merges the fields of its parents
//   left-to-right and then applies its own declarations
// - Params instances: restricted mappings that reject any key outside the
//   class schema on every access path
// - Split: peel off the keys a class understands from an arbitrary mapping
//
// Design policy:
// - Keep only the container model in the root package; serialization lives
//   under codec/, command-line generation under cli/, and the WithParams style
//   composition helper under configurable/, and the demo CLI under cmd/paramsctl.
// - Schemas are built once per class and never mutated afterwards.
// - Type tags are metadata for documentation and coercion; they are checked at
//   declaration time only.
//
// Typical usage:
//
//	var BaseParams = params.Declare("BaseParams").
//	    Field("param_a", true).
//	    Field("param_b", 1).Doc("number of things").
//	    MustBuild()
//
//	var SubParams = params.Declare("SubParams", BaseParams).
//	    Field("param_c", "a").
//	    Field("param_a", false).
//	    Derived("param_d", func(p *params.Params) any { return p.Value("param_b").(int) + 1 }).
//	    MustBuild()
//
//	p, err := SubParams.New(params.KV("param_b", 2))
//	err = p.Set("param_x", 1) // *params.UnknownFieldError
//
package params
