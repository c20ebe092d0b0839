package params

// SplitResult is the outcome of Class.Split.
type SplitResult struct {
	// Instance is set in SplitInstance mode: the declared keys of the input
	// applied over the class defaults.
	Instance *Params
	// Used holds the declared keys present in the input, in input order.
	Used Pairs
	// Unused holds every other entry of the input, in input order.
	Unused Pairs
}

// Split partitions src into the entries whose keys are fields of c and the
// rest. mode decides whether an instance is materialized from the used side.
func (c *Class) Split(src Mapping, mode SplitMode) SplitResult {
	s := c.Schema()
	var res SplitResult
	for _, kv := range pairsOf(src) {
		if s.Has(kv.Key) {
			res.Used = append(res.Used, kv)
		} else {
			res.Unused = append(res.Unused, kv)
		}
	}
	if mode == SplitInstance {
		p := newInstance(s)
		// only declared keys remain, so Update cannot fail
		_ = p.Update(res.Used)
		res.Instance = p
	}
	if res.Unused == nil {
		res.Unused = Pairs{}
	}
	return res
}

// FromDict builds an instance from the declared keys of src and returns the
// remaining entries.
func (c *Class) FromDict(src Mapping) (*Params, Pairs) {
	res := c.Split(src, SplitInstance)
	return res.Instance, res.Unused
}
