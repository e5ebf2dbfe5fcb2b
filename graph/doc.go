// Package graph is the asynchronous control-flow core of authgraph.
//
// An authentication attempt is a tree of [Node] values executed against one
// mutable [State]. Every node reports completion by invoking its [Done]
// callback exactly once with [Continue] or [Error]. Composite nodes
// ([Until], [Conditional]) sequence and branch over children; leaf nodes
// talk to a [Backend] or a [CrossPlatformProvider] and record candidates,
// diagnostics, cleanup nodes and results on the state.
//
// # Architecture boundaries
//
// A single logical thread of control owns a State for the duration of a run.
// Leaves that perform I/O suspend by handing control to a goroutine and
// resume by invoking their callback from it; composites never run two
// children at once, so State carries no locks. [FanOut] is the only
// primitive that runs work concurrently and its sub-operations never see the
// State.
//
// # What this package must NOT do
//
//   - Hold global registries. [Registry] is constructed and injected.
//   - Cancel runs. Once started, a run ends in Continue or Error.
//   - Implement wire protocols. Backends and providers are collaborators.
package graph
