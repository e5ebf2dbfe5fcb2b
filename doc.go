// Package authgraph runs authentication attempts as asynchronous graphs of
// nodes.
//
// An attempt exchanges credentials with a platform identity backend, collects
// the resulting candidate identities, selects one and commits it as the
// signed-in user. Optional cross-platform providers contribute their own
// sub-graphs for federated, first-party and automated testing accounts.
//
// # Usage
//
//	engine, err := authgraph.New().
//		WithBackend(backend).
//		WithAccountService(accounts).
//		Build()
//	outcome, err := engine.Run(ctx, authgraph.Request{Graph: "Anonymous"})
//
// [Engine.Authenticate] is the asynchronous form; its callback runs exactly
// once per attempt.
//
// # Packages
//
//   - graph: nodes, composites, state, registry and the Execute driver
//   - graph/nodes: reusable leaf nodes
//   - graphs: the standard graphs and resolvers
//   - provider/federated, provider/firstparty, provider/autotest: providers
//   - devbackend: a Redis-backed reference backend
//   - jwt: identity token issue and verification
//   - metrics/export: OpenTelemetry and Prometheus exporters
//   - middleware: net/http adapters
//   - cmd/authgraph: CLI and HTTP server over devbackend
package authgraph
