// Package middleware adapts authgraph to net/http.
//
// # Handlers
//
//   - [ClientIP] records the caller address on the request context with
//     authgraph.WithClientIP, so attempts started by the handler are
//     throttled and audited per address.
//   - [RequireIdentity] verifies a bearer identity token and stores its
//     claims on the request context.
//
// The package only translates HTTP into engine and token manager calls. It
// never runs graphs or touches Redis itself.
package middleware
