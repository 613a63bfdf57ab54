package llm

import (
	"errors"
	"fmt"
)

// Sentinel kinds for proxy errors.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUnknownRoute        = errors.New("unknown llm route")
	ErrUnknownUpstream     = errors.New("unknown upstream")
	ErrInvalidBody         = errors.New("invalid json body")
)

// UpstreamError describes a failed upstream call. It matches ErrUpstreamUnavailable.
type UpstreamError struct {
	Upstream   string
	Route      string
	Outcome    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: upstream returned status %d", e.Upstream, e.Route, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Upstream, e.Route, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is reports ErrUpstreamUnavailable as a match.
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamUnavailable }
