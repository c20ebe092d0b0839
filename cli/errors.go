package cli

import "fmt"

// ArgumentError reports a command line that does not match the parameter
// class: a malformed value, a missing required argument or a wrong number of
// positional arguments.
type ArgumentError struct {
	// Arg names the offending flag or positional argument, when known.
	Arg string
	Err error
}

func (e *ArgumentError) Error() string {
	if e.Arg == "" {
		return fmt.Sprintf("cli: %v", e.Err)
	}
	return fmt.Sprintf("cli: argument %s: %v", e.Arg, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }
