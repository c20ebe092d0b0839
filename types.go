package params

// UnknownPolicy controls how keys outside a class schema are handled when an
// instance is built from external input (files, viper, decoded text).
type UnknownPolicy int

const (
	UnknownStrict UnknownPolicy = iota // Reject unknown keys with an *UnknownFieldError.
	UnknownStrip                       // Drop unknown keys.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrict:
		return "strict"
	case UnknownStrip:
		return "strip"
	default:
		return "unknown"
	}
}

// SplitMode selects what Class.Split materializes on the "used" side.
type SplitMode int

const (
	SplitInstance SplitMode = iota // A full instance; absent keys keep their defaults.
	SplitSubset                    // Only the declared keys present in the input, no defaults.
)

// Kind tells stored fields from derived ones.
type Kind int

const (
	Stored  Kind = iota // Plain value set at construction or update time.
	Derived             // Value computed from the instance on every read.
)

func (k Kind) String() string {
	if k == Derived {
		return "derived"
	}
	return "stored"
}
