package firstparty

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/stretchr/testify/require"
)

// openIDBackend resolves OpenID logins by token.
type openIDBackend struct {
	mu       sync.Mutex
	results  map[string]graph.LoginResult
	failures []error
	requests []graph.LoginRequest
}

func newOpenIDBackend() *openIDBackend {
	return &openIDBackend{results: map[string]graph.LoginResult{}}
}

func (b *openIDBackend) Login(_ context.Context, req graph.LoginRequest) (graph.LoginResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if len(b.failures) > 0 {
		err := b.failures[0]
		b.failures = b.failures[1:]
		return graph.LoginResult{}, err
	}
	res, ok := b.results[req.Token]
	if !ok {
		return graph.LoginResult{}, graph.NewBackendError("login", graph.CodeInvalidCredentials, nil)
	}
	return res, nil
}

func (b *openIDBackend) CreateUser(context.Context, graph.ContinuanceToken) (graph.UserID, error) {
	return "created", nil
}

func (b *openIDBackend) SignOut(context.Context, graph.UserID) error { return nil }

func newState(backend graph.Backend, username, password string) *graph.State {
	st := graph.NewState("01FIRST", backend, graph.Settings{})
	st.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	st.ProvidedCredentials = graph.Credentials{ID: username, Token: password}
	return st
}

func runNode(t *testing.T, n graph.Node, st *graph.State) graph.Result {
	t.Helper()
	results := make(chan graph.Result, 2)
	n.Execute(context.Background(), st, func(r graph.Result) { results <- r })
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		require.FailNow(t, "node did not complete")
		return graph.Error
	}
}
