package graphs

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/jwt"
	"github.com/stretchr/testify/require"
)

// testBackend resolves static tokens from users/tokens and verifies any
// other token as an identity token, keyed by subject.
type testBackend struct {
	mu       sync.Mutex
	verifier *jwt.Manager
	users    map[string]graph.UserID
	devices  bool
	created  []graph.ContinuanceToken
	links    map[graph.ContinuanceToken]graph.UserID
}

func newTestBackend(verifier *jwt.Manager) *testBackend {
	return &testBackend{
		verifier: verifier,
		users:    map[string]graph.UserID{},
		links:    map[graph.ContinuanceToken]graph.UserID{},
	}
}

func (b *testBackend) key(req graph.LoginRequest) (string, error) {
	switch req.Type {
	case graph.CredentialDeviceIDAccessToken:
		if !b.devices {
			return "", graph.NewBackendError("login", graph.CodeNotFound, nil)
		}
		return "device", nil
	case graph.CredentialOpenIDAccessToken:
		claims, err := b.verifier.Verify(req.Token)
		if err != nil {
			return "", graph.NewBackendError("login", graph.CodeInvalidCredentials, err)
		}
		return claims.Subject, nil
	default:
		return req.Type + ":" + req.Token, nil
	}
}

func (b *testBackend) Login(_ context.Context, req graph.LoginRequest) (graph.LoginResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key, err := b.key(req)
	if err != nil {
		return graph.LoginResult{}, err
	}
	if user, ok := b.users[key]; ok {
		return graph.LoginResult{User: user}, nil
	}
	ct := graph.ContinuanceToken("ct:" + key)
	if user, ok := b.links[ct]; ok {
		return graph.LoginResult{User: user}, nil
	}
	return graph.LoginResult{ContinuanceToken: ct}, nil
}

func (b *testBackend) CreateUser(_ context.Context, token graph.ContinuanceToken) (graph.UserID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, token)
	return graph.UserID("new:" + string(token)), nil
}

func (b *testBackend) SignOut(context.Context, graph.UserID) error { return nil }

func (b *testBackend) CreateDeviceID(context.Context, string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices = true
	return nil
}

func (b *testBackend) LinkAccount(_ context.Context, user graph.UserID, token graph.ContinuanceToken) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.links[token] = user
	return nil
}

func newIssuer(t *testing.T) *jwt.Manager {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	m, err := jwt.NewManager(jwt.Config{TTL: time.Minute, SigningMethod: jwt.MethodEd25519, PrivateKey: priv, PublicKey: pub})
	require.NoError(t, err)
	return m
}

func newState(backend graph.Backend, logs *bytes.Buffer) *graph.State {
	st := graph.NewState("01GRAPHS", backend, graph.Settings{})
	st.Logger = slog.New(slog.NewTextHandler(logs, nil))
	return st
}

func execute(t *testing.T, g graph.Graph, st *graph.State) graph.Result {
	t.Helper()
	results := make(chan graph.Result, 2)
	graph.Execute(context.Background(), g, st, func(r graph.Result) { results <- r })
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		require.FailNow(t, "graph did not complete")
		return graph.Error
	}
}

type staticSource struct {
	creds []graph.ExternalCredentials
}

func (s staticSource) Name() string { return "TestPlatform" }

func (s staticSource) FetchCredentials(context.Context, graph.Credentials) ([]graph.ExternalCredentials, error) {
	return s.creds, nil
}

func platformTicket(token string) staticSource {
	return staticSource{creds: []graph.ExternalCredentials{&graph.StaticCredentials{
		DisplayName: "TestPlatform",
		CredType:    "TEST_TICKET",
		CredID:      "player",
		CredToken:   token,
		Attributes:  map[string]string{"authenticatedWith": "test"},
		Subsystem:   "TEST",
	}}}
}

type choicePrompter struct{ choice graph.SignInChoice }

func (p choicePrompter) PromptSignInOrCreate(context.Context, *graph.State) (graph.SignInChoice, error) {
	return p.choice, nil
}

func (p choicePrompter) PromptSwitchAccount(context.Context, graph.CrossPlatformAccountID) (graph.SwitchChoice, error) {
	return graph.SwitchChoiceSwitchToThisAccount, nil
}
