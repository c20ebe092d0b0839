package params

import "sort"

// Pair is a single key/value entry.
type Pair struct {
	Key   string
	Value any
}

// KV builds a Pair; it reads like a keyword argument at call sites.
func KV(key string, value any) Pair { return Pair{Key: key, Value: value} }

// Mapping is any source of key/value pairs that instances can be built or
// updated from. Implementations must return pairs in a deterministic order.
type Mapping interface {
	Pairs() []Pair
}

// Pairs is an ordered list of key/value pairs (the "iterable of pairs" form).
type Pairs []Pair

// Pairs implements Mapping.
func (ps Pairs) Pairs() []Pair { return ps }

// Keys returns the keys in order.
func (ps Pairs) Keys() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Key
	}
	return out
}

// Map converts the pairs into a map; a later pair wins on duplicate keys.
func (ps Pairs) Map() map[string]any {
	out := make(map[string]any, len(ps))
	for _, p := range ps {
		out[p.Key] = p.Value
	}
	return out
}

// Get returns the value of the last pair with the given key.
func (ps Pairs) Get(key string) (any, bool) {
	for i := len(ps) - 1; i >= 0; i-- {
		if ps[i].Key == key {
			return ps[i].Value, true
		}
	}
	return nil, false
}

// Map is the mapping form of a source. Pairs are produced in ascending key
// order for deterministic behavior.
type Map map[string]any

// Pairs implements Mapping.
func (m Map) Pairs() []Pair {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Pair, len(keys))
	for i, k := range keys {
		out[i] = Pair{Key: k, Value: m[k]}
	}
	return out
}

func pairsOf(src Mapping) []Pair {
	if src == nil {
		return nil
	}
	return src.Pairs()
}
