package devbackend

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authgraph/jwt"
	"github.com/MrEthical07/authgraph/password"
)

type fixture struct {
	mr       *miniredis.Miniredis
	client   *redis.Client
	tokens   *jwt.Manager
	backend  *Backend
	accounts *Accounts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	tokens, err := jwt.NewManager(jwt.Config{
		TTL:           time.Hour,
		SigningMethod: jwt.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	require.NoError(t, err)

	hasherCfg := password.DefaultConfig()
	hasherCfg.Memory = 8 * 1024
	hasherCfg.Parallelism = 1
	hasher, err := password.NewHasher(hasherCfg)
	require.NoError(t, err)

	accounts, err := NewAccounts(client, AccountsConfig{Issuer: tokens, Hasher: hasher})
	require.NoError(t, err)

	return &fixture{
		mr:       mr,
		client:   client,
		tokens:   tokens,
		backend:  New(client, Config{Verifier: tokens}),
		accounts: accounts,
	}
}
