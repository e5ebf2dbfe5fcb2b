package authgraph

import (
	"errors"
	"strings"

	"github.com/MrEthical07/authgraph/graph"
)

var (
	// ErrAuthenticationFailed is wrapped by every *AttemptError.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrGraphNotFound        = graph.ErrGraphNotFound
	ErrProviderNotFound     = graph.ErrProviderNotFound
	ErrBackendRequired      = errors.New("backend required")
	ErrEngineClosed         = errors.New("engine closed")
	// ErrExchangeRateLimited is carried by the backend error returned when a
	// credential has failed too many exchanges in the current window.
	ErrExchangeRateLimited = errors.New("credential exchange rate limited")
	ErrInvalidConfig       = errors.New("invalid config")
)

// AttemptError reports an attempt that completed with Error. It wraps
// ErrAuthenticationFailed.
type AttemptError struct {
	AttemptID string
	Graph     string
	// Diagnostics lists the recorded failure explanations in order.
	Diagnostics []string
}

func (e *AttemptError) Error() string {
	var b strings.Builder
	b.WriteString("authentication failed")
	if e.Graph != "" {
		b.WriteString(" in graph ")
		b.WriteString(e.Graph)
	}
	if len(e.Diagnostics) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Diagnostics, "; "))
	}
	return b.String()
}

func (e *AttemptError) Unwrap() error { return ErrAuthenticationFailed }
