package devbackend

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authgraph/graph"
)

var (
	ErrVerifierRequired = errors.New("devbackend: identity verifier required")
	ErrHasherRequired   = errors.New("devbackend: secret hasher required")
	ErrUnknownStatus    = errors.New("devbackend: unexpected script status")

	errExpiredToken    = errors.New("continuance token expired or unknown")
	errEmptyCredential = errors.New("empty credential")
)

// storeError classifies a Redis failure. Missing keys are reported by
// callers; everything else is transient.
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return graph.NewBackendError(op, graph.CodeUnavailable, err)
	}
	return graph.NewBackendError(op, graph.CodeUnexpected, err)
}

func notFound(op string, err error) error {
	return graph.NewBackendError(op, graph.CodeNotFound, err)
}

func rejected(op string, err error) error {
	return graph.NewBackendError(op, graph.CodeInvalidCredentials, err)
}

func duplicate(op string) error {
	return graph.NewBackendError(op, graph.CodeDuplicateNotAllowed, nil)
}

func isNil(err error) bool { return errors.Is(err, redis.Nil) }
