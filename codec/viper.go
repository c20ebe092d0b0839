package codec

import (
	"strings"

	"github.com/spf13/viper"

	params "github.com/kpe/go-params"
)

// FromViper builds an instance of c from the keys v reports as set, so
// viper's layering (flags, environment, config file, defaults) decides each
// value. Viper keys are case-insensitive; field names are matched the same way.
//
// With UnknownStrict every key known to v must belong to c. Nested keys
// ("a.b") are attributed to their top-level segment.
func FromViper(c *params.Class, v *viper.Viper, policy params.UnknownPolicy) (*params.Params, error) {
	byLower := make(map[string]string, c.Len())
	for _, name := range c.Names() {
		byLower[strings.ToLower(name)] = name
	}
	if policy == params.UnknownStrict {
		for _, k := range v.AllKeys() {
			top, _, _ := strings.Cut(k, ".")
			if _, ok := byLower[top]; !ok {
				return nil, &params.UnknownFieldError{Class: c.Name(), Key: k}
			}
		}
	}
	var pairs params.Pairs
	for _, name := range c.Names() {
		if v.IsSet(name) {
			pairs = append(pairs, params.KV(name, v.Get(name)))
		}
	}
	return Build(c, pairs, params.UnknownStrip)
}
