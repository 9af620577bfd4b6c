package duration

import "errors"

var (
	// ErrInvalidISO8601 is wrapped by every ISO 8601 parse failure.
	ErrInvalidISO8601 = errors.New("invalid ISO 8601 duration")
	// ErrAnchorType reports an anchor that is neither instant- nor date-like.
	ErrAnchorType = errors.New("unsupported anchor type")
)

// ParseError describes text that could not be read as a duration.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	msg := ErrInvalidISO8601.Error() + ": " + e.Input
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *ParseError) Unwrap() error { return ErrInvalidISO8601 }

func parseError(input, reason string) error {
	return &ParseError{Input: input, Reason: reason}
}
