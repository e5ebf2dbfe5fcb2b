package graph

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestState() *State {
	st := NewState("01TEST", nil, Settings{})
	st.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return st
}

// runNode executes n and waits for its single completion.
func runNode(t *testing.T, n Node, st *State) Result {
	t.Helper()
	results := make(chan Result, 4)
	n.Execute(context.Background(), st, func(r Result) { results <- r })
	return awaitOne(t, results)
}

func runGraph(t *testing.T, g Graph, st *State) Result {
	t.Helper()
	results := make(chan Result, 4)
	Execute(context.Background(), g, st, func(r Result) { results <- r })
	return awaitOne(t, results)
}

func awaitOne(t *testing.T, results chan Result) Result {
	t.Helper()
	var r Result
	select {
	case r = <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("node did not complete")
	}
	time.Sleep(10 * time.Millisecond)
	require.Len(t, results, 0, "callback invoked more than once")
	return r
}

func result(r Result) Node {
	return NodeFunc(func(_ context.Context, _ *State, done Done) { done(r) })
}

// asyncResult completes from another goroutine after d.
func asyncResult(r Result, d time.Duration) Node {
	return NodeFunc(func(_ context.Context, _ *State, done Done) {
		go func() {
			time.Sleep(d)
			done(r)
		}()
	})
}

// recorder appends name to log when executed and completes with r.
func recorder(log *[]string, name string, r Result) Node {
	return Named(name, func(_ context.Context, _ *State, done Done) {
		*log = append(*log, name)
		done(r)
	})
}

type fakeAccountID struct {
	provider string
	id       string
}

func (f fakeAccountID) Type() string   { return f.provider }
func (f fakeAccountID) Bytes() []byte  { return []byte(f.id) }
func (f fakeAccountID) IsValid() bool  { return f.id != "" }
func (f fakeAccountID) String() string { return f.id }
func (f fakeAccountID) Equal(other CrossPlatformAccountID) bool {
	o, ok := other.(fakeAccountID)
	return ok && o.provider == f.provider && o.id == f.id
}
