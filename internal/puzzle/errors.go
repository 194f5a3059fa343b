package puzzle

import "fmt"

// GenerationError is returned by Generate for any failure, whether the
// provider call was rejected or its reply could not be parsed.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generation failed: " + e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

// MalformedResponseError reports a reply that does not follow the
// four-line format. Line is zero-based, or -1 when the reply is too short.
type MalformedResponseError struct {
	Line   int
	Reason string
}

func (e *MalformedResponseError) Error() string {
	if e.Line < 0 {
		return "malformed response: " + e.Reason
	}
	return fmt.Sprintf("malformed response: line %d: %s", e.Line+1, e.Reason)
}
