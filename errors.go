package sketches

import "fmt"

// ConfigError reports a construction parameter outside its documented
// range.  Constructors never clamp: a bad parameter is surfaced, not
// silently adjusted.
type ConfigError struct {
	// Param is the name of the offending parameter, e.g. "precision".
	Param string

	// Value is the rejected value, already formatted.
	Value string

	// Constraint describes the accepted range, e.g. "must be in [4,18]".
	Constraint string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sketches: invalid %s %s: %s", e.Param, e.Value, e.Constraint)
}

// IncompatibleError reports an operation between two sketches whose
// configurations differ, most commonly a merge across precisions.  The
// receiving sketch is guaranteed unmodified.
type IncompatibleError struct {
	Reason string
}

func (e *IncompatibleError) Error() string {
	return "sketches: incompatible sketches: " + e.Reason
}

// FormatError reports serialized bytes that cannot be decoded: truncated
// or oversized buffers, unknown format versions, out-of-range parameters,
// or corrupt payloads.  Serialized sketches cross trust boundaries, so
// decoders validate everything up front and fail with this error instead
// of panicking or reading out of bounds.
type FormatError struct {
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sketches: malformed encoding: %s: %v", e.Reason, e.Err)
	}
	return "sketches: malformed encoding: " + e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
