package devbackend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authgraph/graph"
)

func ticket(token string) graph.LoginRequest {
	return graph.LoginRequest{Type: "TEST_TICKET", ID: "player", Token: token}
}

func TestLoginUnboundCredentialYieldsContinuanceToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.backend.Login(ctx, ticket("t1"))
	require.NoError(t, err)
	assert.False(t, res.User.IsValid())
	require.True(t, res.ContinuanceToken.IsValid())
	assert.True(t, f.mr.Exists("ag:dev:ct:"+string(res.ContinuanceToken)))
}

func TestCreateUserBindsCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.backend.Login(ctx, ticket("t1"))
	require.NoError(t, err)
	user, err := f.backend.CreateUser(ctx, res.ContinuanceToken)
	require.NoError(t, err)
	require.True(t, user.IsValid())

	again, err := f.backend.Login(ctx, ticket("t1"))
	require.NoError(t, err)
	assert.Equal(t, user, again.User)
	assert.False(t, again.ContinuanceToken.IsValid())
}

func TestCreateUserConsumesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.backend.Login(ctx, ticket("t1"))
	require.NoError(t, err)
	_, err = f.backend.CreateUser(ctx, res.ContinuanceToken)
	require.NoError(t, err)

	_, err = f.backend.CreateUser(ctx, res.ContinuanceToken)
	assert.Equal(t, graph.CodeInvalidCredentials, graph.CodeOf(err))
}

func TestCreateUserRaceOnSameCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.backend.Login(ctx, ticket("t1"))
	require.NoError(t, err)
	second, err := f.backend.Login(ctx, ticket("t1"))
	require.NoError(t, err)

	_, err = f.backend.CreateUser(ctx, first.ContinuanceToken)
	require.NoError(t, err)
	_, err = f.backend.CreateUser(ctx, second.ContinuanceToken)
	assert.Equal(t, graph.CodeDuplicateNotAllowed, graph.CodeOf(err))
}

func TestContinuanceTokenExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.backend.Login(ctx, ticket("t1"))
	require.NoError(t, err)
	f.mr.FastForward(11 * time.Minute)

	_, err = f.backend.CreateUser(ctx, res.ContinuanceToken)
	assert.Equal(t, graph.CodeInvalidCredentials, graph.CodeOf(err))
}

func TestDeviceIDLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := graph.LoginRequest{Type: graph.CredentialDeviceIDAccessToken, ID: "Anonymous"}

	_, err := f.backend.Login(ctx, req)
	assert.Equal(t, graph.CodeNotFound, graph.CodeOf(err))

	require.NoError(t, f.backend.CreateDeviceID(ctx, "Anonymous Login"))
	err = f.backend.CreateDeviceID(ctx, "Anonymous Login")
	assert.Equal(t, graph.CodeDuplicateNotAllowed, graph.CodeOf(err))
	assert.Equal(t, "Anonymous Login", f.mr.HGet("ag:dev:device:local", "model"))

	res, err := f.backend.Login(ctx, req)
	require.NoError(t, err)
	require.True(t, res.ContinuanceToken.IsValid())
}

func TestDevicesAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := New(f.client, Config{Device: "other"})

	require.NoError(t, f.backend.CreateDeviceID(ctx, "m"))
	_, err := other.Login(ctx, graph.LoginRequest{Type: graph.CredentialDeviceIDAccessToken, ID: "Anonymous"})
	assert.Equal(t, graph.CodeNotFound, graph.CodeOf(err))
}

func TestOpenIDLoginKeysBySubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.tokens.Issue("subject-1", "Tester")
	require.NoError(t, err)
	res, err := f.backend.Login(ctx, graph.LoginRequest{Type: graph.CredentialOpenIDAccessToken, Token: first})
	require.NoError(t, err)
	user, err := f.backend.CreateUser(ctx, res.ContinuanceToken)
	require.NoError(t, err)

	second, err := f.tokens.Issue("subject-1", "Tester")
	require.NoError(t, err)
	res, err = f.backend.Login(ctx, graph.LoginRequest{Type: graph.CredentialOpenIDAccessToken, Token: second})
	require.NoError(t, err)
	assert.Equal(t, user, res.User)
}

func TestOpenIDLoginRejectsBadToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.backend.Login(context.Background(), graph.LoginRequest{Type: graph.CredentialOpenIDAccessToken, Token: "garbage"})
	assert.Equal(t, graph.CodeInvalidCredentials, graph.CodeOf(err))
}

func TestOpenIDLoginWithoutVerifier(t *testing.T) {
	f := newFixture(t)
	b := New(f.client, Config{})

	_, err := b.Login(context.Background(), graph.LoginRequest{Type: graph.CredentialOpenIDAccessToken, Token: "x"})
	assert.Equal(t, graph.CodeUnavailable, graph.CodeOf(err))
	assert.ErrorIs(t, err, ErrVerifierRequired)
}

func TestFederatedLoginRequiresMatchingSubject(t *testing.T) {
	f := newFixture(t)
	token, err := f.tokens.Issue("account-a", "")
	require.NoError(t, err)

	_, err = f.backend.Login(context.Background(), graph.LoginRequest{Type: graph.CredentialFederated, ID: "account-b", Token: token})
	assert.Equal(t, graph.CodeInvalidCredentials, graph.CodeOf(err))

	res, err := f.backend.Login(context.Background(), graph.LoginRequest{Type: graph.CredentialFederated, ID: "account-a", Token: token})
	require.NoError(t, err)
	assert.True(t, res.ContinuanceToken.IsValid())
}

func TestEmptyCredentialRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.backend.Login(context.Background(), ticket(""))
	assert.Equal(t, graph.CodeInvalidCredentials, graph.CodeOf(err))
}

func TestLinkAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.backend.Login(ctx, ticket("primary"))
	require.NoError(t, err)
	user, err := f.backend.CreateUser(ctx, res.ContinuanceToken)
	require.NoError(t, err)

	extra, err := f.backend.Login(ctx, ticket("secondary"))
	require.NoError(t, err)
	require.NoError(t, f.backend.LinkAccount(ctx, user, extra.ContinuanceToken))

	linked, err := f.backend.Login(ctx, ticket("secondary"))
	require.NoError(t, err)
	assert.Equal(t, user, linked.User)

	creds, err := f.client.SCard(ctx, "ag:dev:user:"+user.String()+":creds").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), creds)
}

func TestLinkAccountErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.backend.Login(ctx, ticket("t1"))
	require.NoError(t, err)
	err = f.backend.LinkAccount(ctx, "ghost", res.ContinuanceToken)
	assert.Equal(t, graph.CodeNotFound, graph.CodeOf(err))

	user, err := f.backend.CreateUser(ctx, res.ContinuanceToken)
	require.NoError(t, err)
	err = f.backend.LinkAccount(ctx, user, "missing")
	assert.Equal(t, graph.CodeInvalidCredentials, graph.CodeOf(err))

	// t2 gets bound to another user before the link lands.
	pending := mustLogin(t, f, "t2")
	_, err = f.backend.CreateUser(ctx, mustLogin(t, f, "t2"))
	require.NoError(t, err)
	err = f.backend.LinkAccount(ctx, user, pending)
	assert.Equal(t, graph.CodeDuplicateNotAllowed, graph.CodeOf(err))
}

func mustLogin(t *testing.T, f *fixture, token string) graph.ContinuanceToken {
	t.Helper()
	res, err := f.backend.Login(context.Background(), ticket(token))
	require.NoError(t, err)
	return res.ContinuanceToken
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.backend.SignOut(ctx, "ghost")
	assert.Equal(t, graph.CodeNotFound, graph.CodeOf(err))

	user, err := f.backend.CreateUser(ctx, mustLogin(t, f, "t1"))
	require.NoError(t, err)
	require.NoError(t, f.backend.SignOut(ctx, user))
	assert.NotEmpty(t, f.mr.HGet("ag:dev:user:"+user.String(), "signed_out_at"))
}

func TestRedisOutageIsTransient(t *testing.T) {
	f := newFixture(t)
	f.mr.Close()

	_, err := f.backend.Login(context.Background(), ticket("t1"))
	assert.True(t, graph.IsTransient(err))
}
