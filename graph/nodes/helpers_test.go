package nodes

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

type fakeBackend struct {
	mu sync.Mutex

	// logins maps credential token (or id when the token is empty) to a
	// scripted result. Missing entries fail with CodeNotFound.
	logins    map[string][]scripted
	created   []graph.ContinuanceToken
	createErr error
	newUser   graph.UserID
	devices   int
	deviceErr error
	signedOut []graph.UserID
}

type scripted struct {
	res graph.LoginResult
	err error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{logins: map[string][]scripted{}, newUser: "created-user"}
}

func (b *fakeBackend) script(key string, steps ...scripted) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logins[key] = append(b.logins[key], steps...)
}

func (b *fakeBackend) Login(_ context.Context, req graph.LoginRequest) (graph.LoginResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := req.Token
	if key == "" {
		key = req.ID
	}
	steps := b.logins[key]
	if len(steps) == 0 {
		return graph.LoginResult{}, graph.NewBackendError("login", graph.CodeNotFound, nil)
	}
	step := steps[0]
	if len(steps) > 1 {
		b.logins[key] = steps[1:]
	}
	return step.res, step.err
}

func (b *fakeBackend) CreateUser(_ context.Context, token graph.ContinuanceToken) (graph.UserID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, token)
	if b.createErr != nil {
		return graph.NoUserID, b.createErr
	}
	return b.newUser, nil
}

func (b *fakeBackend) SignOut(_ context.Context, user graph.UserID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signedOut = append(b.signedOut, user)
	return nil
}

type deviceBackend struct {
	*fakeBackend
}

func (d deviceBackend) CreateDeviceID(context.Context, string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices++
	if d.deviceErr != nil {
		return d.deviceErr
	}
	d.logins["Anonymous"] = []scripted{{res: graph.LoginResult{ContinuanceToken: "device-ct"}}}
	return nil
}

func newState(backend graph.Backend) *graph.State {
	st := graph.NewState("01NODES", backend, graph.Settings{})
	st.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return st
}

func run(t *testing.T, n graph.Node, st *graph.State) graph.Result {
	t.Helper()
	results := make(chan graph.Result, 4)
	n.Execute(context.Background(), st, func(r graph.Result) { results <- r })

	var r graph.Result
	select {
	case r = <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("node did not complete")
	}
	time.Sleep(5 * time.Millisecond)
	require.Empty(t, results, "callback invoked more than once")
	return r
}

type accountID string

func (a accountID) Type() string   { return "Test" }
func (a accountID) Bytes() []byte  { return []byte(a) }
func (a accountID) IsValid() bool  { return a != "" }
func (a accountID) String() string { return string(a) }
func (a accountID) Equal(other graph.CrossPlatformAccountID) bool {
	o, ok := other.(accountID)
	return ok && o == a
}
