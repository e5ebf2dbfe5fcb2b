package graph

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Result is the terminal outcome of a node.
type Result int

const (
	// Continue reports that the node completed and the run may proceed.
	Continue Result = iota
	// Error reports that the node failed. Explanations live in the state's
	// diagnostics.
	Error
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Done receives a node's result. It is invoked exactly once per Execute.
type Done func(Result)

// Node is one step of an authentication graph.
//
// Execute may complete synchronously or from another goroutine after
// suspension. It must invoke done exactly once and must only mutate st.
type Node interface {
	Execute(ctx context.Context, st *State, done Done)
}

// Namer is implemented by nodes that want a stable name in logs.
type Namer interface {
	Name() string
}

// NodeFunc adapts a function to the Node interface.
type NodeFunc func(ctx context.Context, st *State, done Done)

func (f NodeFunc) Execute(ctx context.Context, st *State, done Done) {
	f(ctx, st, done)
}

type namedNode struct {
	name string
	fn   NodeFunc
}

// Named wraps fn as a node that reports name in logs.
func Named(name string, fn NodeFunc) Node {
	return &namedNode{name: name, fn: fn}
}

func (n *namedNode) Name() string { return n.name }

func (n *namedNode) Execute(ctx context.Context, st *State, done Done) {
	n.fn(ctx, st, done)
}

// NodeName returns the log name of n.
func NodeName(n Node) string {
	if n == nil {
		return "<nil>"
	}
	if named, ok := n.(Namer); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", n)
}

// once wraps done so that a second invocation panics instead of silently
// re-entering the parent.
func once(owner string, done Done) Done {
	var fired atomic.Bool
	return func(r Result) {
		if !fired.CompareAndSwap(false, true) {
			panic(fmt.Sprintf("graph: node %s completed more than once", owner))
		}
		done(r)
	}
}
