package authgraph

import (
	"context"
	"errors"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/internal"
	"github.com/MrEthical07/authgraph/internal/rate"
)

// limitedBackend throttles credential exchanges that keep failing. Only
// Login is limited; account creation and sign-out pass straight through.
type limitedBackend struct {
	next    graph.Backend
	limiter *rate.Limiter
	metrics *Metrics
}

// limitBackend wraps b, preserving the optional DeviceIDBackend and
// LinkBackend capabilities of b.
func limitBackend(b graph.Backend, limiter *rate.Limiter, metrics *Metrics) graph.Backend {
	base := &limitedBackend{next: b, limiter: limiter, metrics: metrics}

	devices, isDevice := b.(graph.DeviceIDBackend)
	links, isLink := b.(graph.LinkBackend)
	switch {
	case isDevice && isLink:
		return struct {
			*limitedBackend
			graph.DeviceIDBackend
			graph.LinkBackend
		}{base, devices, links}
	case isDevice:
		return struct {
			*limitedBackend
			graph.DeviceIDBackend
		}{base, devices}
	case isLink:
		return struct {
			*limitedBackend
			graph.LinkBackend
		}{base, links}
	default:
		return base
	}
}

func (b *limitedBackend) Login(ctx context.Context, req graph.LoginRequest) (graph.LoginResult, error) {
	key := exchangeKey(req)
	ip := ClientIPFromContext(ctx)

	if err := b.limiter.Check(ctx, key, ip); err != nil {
		return graph.LoginResult{}, b.limitError(ctx, err)
	}

	res, err := b.next.Login(ctx, req)
	if err == nil {
		if rerr := b.limiter.Reset(ctx, key); rerr != nil {
			graph.LoggerFrom(ctx).Warn("unable to reset exchange counter", "error", rerr)
		}
		return res, nil
	}
	if !countsAsFailure(err) {
		return res, err
	}
	if ferr := b.limiter.Fail(ctx, key, ip); ferr != nil && !errors.Is(ferr, rate.ErrRateLimited) {
		graph.LoggerFrom(ctx).Warn("unable to record failed exchange", "error", ferr)
	}
	return res, err
}

// exchangeKey identifies the credential a failure is charged to. Requests
// with an account id are counted per id so guessing tokens shares one
// counter; bearer-only requests fall back to the token.
func exchangeKey(req graph.LoginRequest) string {
	if req.ID != "" {
		return internal.CredentialKey(req.Type, req.ID, "")
	}
	return internal.CredentialKey(req.Type, "", req.Token)
}

func (b *limitedBackend) CreateUser(ctx context.Context, token graph.ContinuanceToken) (graph.UserID, error) {
	return b.next.CreateUser(ctx, token)
}

func (b *limitedBackend) SignOut(ctx context.Context, user graph.UserID) error {
	return b.next.SignOut(ctx, user)
}

func (b *limitedBackend) limitError(ctx context.Context, err error) error {
	if errors.Is(err, rate.ErrRateLimited) {
		b.metrics.Inc(MetricExchangeRateLimited)
		graph.LoggerFrom(ctx).Info("credential exchange rate limited")
		return graph.NewBackendError("login", graph.CodeRateLimited, ErrExchangeRateLimited)
	}
	graph.LoggerFrom(ctx).Error("exchange limiter unavailable", "error", err)
	return graph.NewBackendError("login", graph.CodeUnavailable, err)
}

// countsAsFailure reports whether err consumes exchange budget. Only
// rejected credentials count.
func countsAsFailure(err error) bool {
	return graph.CodeOf(err) == graph.CodeInvalidCredentials
}
