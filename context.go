package authgraph

import "context"

type clientIPContextKey struct{}

// WithClientIP attaches the caller's network address to ctx. The engine uses
// it for per-address exchange throttling and records it in audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// ClientIPFromContext returns the address set by WithClientIP.
func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
