package rate

import "errors"

var (
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps every Redis failure.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
