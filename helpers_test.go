package authgraph

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/authgraph/graph"
)

// fakeBackend signs tokens found in users in directly and hands out a
// continuance token for anything else. Tokens listed in rejected fail with
// CodeInvalidCredentials.
type fakeBackend struct {
	mu       sync.Mutex
	users    map[string]graph.UserID
	rejected map[string]bool
	devices  bool
	logins   int
	created  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:    map[string]graph.UserID{},
		rejected: map[string]bool{},
	}
}

func (b *fakeBackend) Login(_ context.Context, req graph.LoginRequest) (graph.LoginResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logins++

	key := req.Type + ":" + req.Token
	if req.Type == graph.CredentialDeviceIDAccessToken {
		if !b.devices {
			return graph.LoginResult{}, graph.NewBackendError("login", graph.CodeNotFound, nil)
		}
		key = "device"
	}
	if b.rejected[req.Token] {
		return graph.LoginResult{}, graph.NewBackendError("login", graph.CodeInvalidCredentials, nil)
	}
	if user, ok := b.users[key]; ok {
		return graph.LoginResult{User: user}, nil
	}
	return graph.LoginResult{ContinuanceToken: graph.ContinuanceToken("ct:" + key)}, nil
}

func (b *fakeBackend) CreateUser(_ context.Context, token graph.ContinuanceToken) (graph.UserID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created++
	return graph.UserID("new:" + string(token)), nil
}

func (b *fakeBackend) SignOut(context.Context, graph.UserID) error { return nil }

func (b *fakeBackend) CreateDeviceID(context.Context, string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices = true
	return nil
}

// plainBackend hides the optional capabilities of fakeBackend.
type plainBackend struct{ graph.Backend }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, backend graph.Backend, mutate func(*Builder)) *Engine {
	t.Helper()
	b := New().WithBackend(backend).WithLogger(discardLogger())
	if mutate != nil {
		mutate(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func runWithTimeout(t *testing.T, engine *Engine, req Request) (*Outcome, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := engine.Run(ctx, req)
	if err == context.DeadlineExceeded {
		t.Fatal("attempt did not complete")
	}
	return out, err
}
