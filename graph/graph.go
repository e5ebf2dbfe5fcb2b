package graph

import "context"

// Graph builds the root node tree for one attempt.
type Graph interface {
	CreateGraph(st *State) Node
}

// GraphFunc adapts a function to the Graph interface.
type GraphFunc func(st *State) Node

func (f GraphFunc) CreateGraph(st *State) Node { return f(st) }

// Execute builds g's tree for st and runs it. On Error, registered cleanup
// nodes are drained in registration order before done receives the original
// Error; a failing cleanup node is logged and the drain continues. On
// Continue the cleanup journal is discarded.
func Execute(ctx context.Context, g Graph, st *State, done Done) {
	root := g.CreateGraph(st)
	if root == nil {
		st.Log().Error("graph produced no root node")
		drainCleanup(ctx, st, func() { done(Error) })
		return
	}

	root.Execute(ctx, st, once(NodeName(root), func(r Result) {
		if r == Continue {
			st.cleanup = nil
			done(Continue)
			return
		}
		drainCleanup(ctx, st, func() { done(r) })
	}))
}

func drainCleanup(ctx context.Context, st *State, finish func()) {
	if len(st.cleanup) == 0 {
		finish()
		return
	}

	next := st.cleanup[0]
	st.cleanup = st.cleanup[1:]
	name := NodeName(next)

	next.Execute(ctx, st, once(name, func(r Result) {
		if r == Error {
			st.Log().Warn("cleanup encountered an error, continuing cleanup anyway", "node", name)
		}
		if st.Observer != nil {
			st.Observer.CleanupFinished(name, r)
		}
		drainCleanup(ctx, st, finish)
	}))
}
