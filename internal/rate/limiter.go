package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config tunes a Limiter.
type Config struct {
	// Prefix namespaces every key. Empty selects "ag:x".
	Prefix string
	// MaxAttempts is the number of failed exchanges allowed per window.
	MaxAttempts int
	// Cooldown is the window length, counted from the first failure.
	Cooldown time.Duration
	// EnableIPThrottle also counts failures per client address.
	EnableIPThrottle bool
}

// Limiter counts failed credential exchanges per credential and, optionally,
// per client address.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

func New(client redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "ag:x"
	}
	return &Limiter{redis: client, config: cfg}
}

// Check returns ErrRateLimited when the credential or the address has
// exhausted its budget. It does not count an attempt.
func (l *Limiter) Check(ctx context.Context, credential, ip string) error {
	for _, key := range l.keys(credential, ip) {
		count, err := l.redis.Get(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if count >= int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// Fail records a failed exchange. It returns ErrRateLimited when this
// failure exhausted a budget.
func (l *Limiter) Fail(ctx context.Context, credential, ip string) error {
	limited := false
	for _, key := range l.keys(credential, ip) {
		count, err := l.incrementWithTTL(ctx, key)
		if err != nil {
			return err
		}
		if count >= int64(l.config.MaxAttempts) {
			limited = true
		}
	}
	if limited {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the credential's counter after a successful exchange. The
// address counter is left alone so one good credential cannot unlock
// guessing of others.
func (l *Limiter) Reset(ctx context.Context, credential string) error {
	if err := l.redis.Del(ctx, l.credentialKey(credential)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the failures recorded for credential in the current
// window.
func (l *Limiter) Attempts(ctx context.Context, credential string) (int, error) {
	count, err := l.redis.Get(ctx, l.credentialKey(credential)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(max(count, 0)), nil
}

func (l *Limiter) keys(credential, ip string) []string {
	keys := []string{l.credentialKey(credential)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, l.config.Prefix+":ip:"+ip)
	}
	return keys
}

func (l *Limiter) credentialKey(credential string) string {
	return l.config.Prefix + ":c:" + credential
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}
