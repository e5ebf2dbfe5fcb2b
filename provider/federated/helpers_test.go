package federated

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

type fakeService struct {
	mu sync.Mutex

	logins      map[string]AccountID
	external    map[string]ExternalLoginResult
	interactive AccountID
	linked      map[graph.ContinuanceToken]AccountID
	signedOut   []AccountID
}

func newFakeService() *fakeService {
	return &fakeService{
		logins:   map[string]AccountID{},
		external: map[string]ExternalLoginResult{},
		linked:   map[graph.ContinuanceToken]AccountID{},
	}
}

func (s *fakeService) Login(_ context.Context, login Login) (AccountID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.logins[login.Kind.String()+":"+login.Token]; ok {
		return acc, nil
	}
	return "", graph.NewBackendError("login", graph.CodeInvalidCredentials, nil)
}

func (s *fakeService) LoginExternal(_ context.Context, creds graph.ExternalCredentials) (ExternalLoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.external[creds.Token()]
	if !ok {
		return ExternalLoginResult{}, graph.NewBackendError("login_external", graph.CodeInvalidCredentials, nil)
	}
	if acc, ok := s.linked[res.ContinuanceToken]; ok {
		return ExternalLoginResult{Account: acc}, nil
	}
	return res, nil
}

func (s *fakeService) Interactive(_ context.Context, req InteractiveRequest) (AccountID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.interactive.IsValid() {
		return "", graph.NewBackendError("interactive", graph.CodeInvalidCredentials, nil)
	}
	if req.LinkToken.IsValid() {
		s.linked[req.LinkToken] = s.interactive
	}
	return s.interactive, nil
}

func (s *fakeService) CopyToken(_ context.Context, account AccountID) (Token, error) {
	return Token{
		AccessToken:  "access-" + account.String(),
		RefreshToken: "refresh-" + account.String(),
		ExpiresAt:    time.Unix(1700000000, 0),
	}, nil
}

func (s *fakeService) SignOut(_ context.Context, account AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signedOut = append(s.signedOut, account)
	return nil
}

// fakeBackend resolves platform logins by token. Linking binds a
// continuance token to a user so the next login with the same token
// resolves to that user.
type fakeBackend struct {
	mu      sync.Mutex
	results map[string]graph.LoginResult
	links   map[graph.ContinuanceToken]graph.UserID
	linkErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		results: map[string]graph.LoginResult{},
		links:   map[graph.ContinuanceToken]graph.UserID{},
	}
}

func (b *fakeBackend) Login(_ context.Context, req graph.LoginRequest) (graph.LoginResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.results[req.Token]
	if !ok {
		return graph.LoginResult{}, graph.NewBackendError("login", graph.CodeNotFound, nil)
	}
	if user, ok := b.links[res.ContinuanceToken]; ok {
		return graph.LoginResult{User: user}, nil
	}
	return res, nil
}

func (b *fakeBackend) CreateUser(context.Context, graph.ContinuanceToken) (graph.UserID, error) {
	return "created", nil
}

func (b *fakeBackend) SignOut(context.Context, graph.UserID) error { return nil }

func (b *fakeBackend) LinkAccount(_ context.Context, user graph.UserID, token graph.ContinuanceToken) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.linkErr != nil {
		return b.linkErr
	}
	b.links[token] = user
	return nil
}

func newState(backend graph.Backend) *graph.State {
	st := graph.NewState("01FED", backend, graph.Settings{})
	st.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return st
}

func runGraph(t *testing.T, root graph.Node, st *graph.State) graph.Result {
	t.Helper()
	results := make(chan graph.Result, 4)
	g := graph.GraphFunc(func(*graph.State) graph.Node { return root })
	graph.Execute(context.Background(), g, st, func(r graph.Result) { results <- r })

	var r graph.Result
	select {
	case r = <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("graph did not complete")
	}
	time.Sleep(5 * time.Millisecond)
	require.Empty(t, results, "callback invoked more than once")
	return r
}
