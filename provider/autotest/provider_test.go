package autotest

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// verifyingBackend accepts OpenID tokens signed by its manager. Subjects in
// users are bound accounts; every other subject gets a continuance token.
type verifyingBackend struct {
	mu       sync.Mutex
	verifier *jwt.Manager
	users    map[string]graph.UserID
	created  []graph.ContinuanceToken
}

func (b *verifyingBackend) Login(_ context.Context, req graph.LoginRequest) (graph.LoginResult, error) {
	claims, err := b.verifier.Verify(req.Token)
	if err != nil {
		return graph.LoginResult{}, graph.NewBackendError("login", graph.CodeInvalidCredentials, err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if user, ok := b.users[claims.Subject]; ok {
		return graph.LoginResult{User: user}, nil
	}
	return graph.LoginResult{ContinuanceToken: graph.ContinuanceToken("ct-" + claims.Subject)}, nil
}

func (b *verifyingBackend) CreateUser(_ context.Context, token graph.ContinuanceToken) (graph.UserID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.created = append(b.created, token)
	return graph.UserID("user-" + string(token)), nil
}

func (b *verifyingBackend) SignOut(context.Context, graph.UserID) error { return nil }

type fixture struct {
	provider *Provider
	backend  *verifyingBackend
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	m, err := jwt.NewManager(jwt.Config{TTL: time.Minute, SigningMethod: jwt.MethodEd25519, PrivateKey: priv, PublicKey: pub})
	require.NoError(t, err)
	return fixture{
		provider: New(m),
		backend:  &verifyingBackend{verifier: m, users: map[string]graph.UserID{}},
		logs:     &bytes.Buffer{},
	}
}

func (f fixture) state(id string) *graph.State {
	st := graph.NewState("01AUTO", f.backend, graph.Settings{AutomatedTesting: true})
	st.Logger = slog.New(slog.NewTextHandler(f.logs, nil))
	st.ProvidedCredentials = graph.Credentials{Type: "AUTOMATED_TESTING", ID: id}
	return st
}

func run(t *testing.T, n graph.Node, st *graph.State) graph.Result {
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

func TestInteractiveEmitsMarkerAndAddsCrossPlatformCandidate(t *testing.T) {
	f := newFixture(t)
	st := f.state("CreateOnDemand:LoginTest")

	require.Equal(t, graph.Continue, run(t, f.provider.InteractiveAuthentication(), st))
	assert.Contains(t, f.logs.String(), "[CPAT-01]")

	candidates := st.Candidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, CrossPlatformDisplayName, candidates[0].DisplayName)
	assert.Equal(t, graph.CandidateCrossPlatform, candidates[0].Type)
	subject := SubjectFor("LoginTest", true)
	assert.Equal(t, AccountID(subject), candidates[0].CrossPlatformAccountID)
	assert.Equal(t, graph.ContinuanceToken("ct-"+subject), candidates[0].ContinuanceToken)
	assert.NotEmpty(t, st.ResultAuthAttributes[AttributeJWT])
}

func TestNonInteractiveUsesPlatformSubject(t *testing.T) {
	f := newFixture(t)
	st := f.state("CreateOnDemand:LoginTest")

	require.Equal(t, graph.Continue, run(t, f.provider.NonInteractiveAuthentication(false), st))
	assert.Contains(t, f.logs.String(), "[CPAT-03]")

	candidates := st.Candidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, DisplayName, candidates[0].DisplayName)
	assert.Equal(t, graph.CandidateGeneric, candidates[0].Type)
	assert.Equal(t, graph.ContinuanceToken("ct-"+SubjectFor("LoginTest", false)), candidates[0].ContinuanceToken)
	assert.Nil(t, st.AuthenticatedCrossPlatformAccountID)
}

func TestUpgradeFinalizesCrossPlatformAccount(t *testing.T) {
	f := newFixture(t)
	subject := SubjectFor("Upgrade", true)
	f.backend.users[subject] = "existing-xp-user"
	st := f.state("CreateOnDemand:Upgrade")

	require.Equal(t, graph.Continue, run(t, f.provider.UpgradeCurrentAccount(), st))
	assert.Contains(t, f.logs.String(), "[CPAT-05]")
	assert.Equal(t, graph.UserID("existing-xp-user"), st.ResultUserID)
	assert.Equal(t, AccountID(subject), st.ResultCrossPlatformAccountID)
}

func TestPreIssuedTokenIsUsedVerbatim(t *testing.T) {
	f := newFixture(t)
	token, err := f.backend.verifier.Issue("preissued", "")
	require.NoError(t, err)
	st := f.state(JWTPrefix + token)

	require.Equal(t, graph.Continue, run(t, IssueJWT(nil), st))
	assert.Equal(t, token, st.MetadataString(MetadataJWT))

	require.Equal(t, graph.Continue, run(t, PerformOpenIDLogin(), st))
	assert.Equal(t, graph.ContinuanceToken("ct-preissued"), st.Candidates()[0].ContinuanceToken)
}

func TestIssueWithoutIssuerFails(t *testing.T) {
	f := newFixture(t)
	st := f.state("CreateOnDemand:NoIssuer")
	require.Equal(t, graph.Error, run(t, IssueJWT(nil), st))
	assert.NotEmpty(t, st.Diagnostics())
}

func TestLinkUnusedAndDeauthAlwaysContinue(t *testing.T) {
	f := newFixture(t)
	st := f.state("")
	assert.Equal(t, graph.Continue, run(t, f.provider.LinkUnusedExternalCredentials(), st))
	assert.Contains(t, f.logs.String(), "[CPAT-04]")
	assert.Equal(t, graph.Continue, run(t, f.provider.NonInteractiveDeauthentication(), st))
}

func TestAutomatedTestingSequenceFailsLoudly(t *testing.T) {
	f := newFixture(t)
	st := f.state("")
	require.Equal(t, graph.Error, run(t, f.provider.AutomatedTestingAuthentication(), st))
	require.Len(t, st.Diagnostics(), 1)
	assert.Contains(t, st.Diagnostics()[0], "not meant to be used with the AutomatedTesting graph")
}

func TestSubjectsAreStable(t *testing.T) {
	assert.Equal(t, SubjectFor("A", false), SubjectFor("A", false))
	assert.NotEqual(t, SubjectFor("A", false), SubjectFor("A", true))
	assert.True(t, AccountID("").IsValid())
	assert.True(t, New(nil).ParseAccountID("x").Equal(New(nil).AccountIDFromBytes([]byte("x\x00"))))
}
