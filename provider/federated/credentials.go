package federated

import (
	"context"
	"strconv"
	"sync"

	"github.com/MrEthical07/authgraph/graph"
)

// accountCredentials presents a signed-in federated account as a platform
// credential. Refresh copies a fresh token from the account service.
type accountCredentials struct {
	service   AccountService
	account   AccountID
	subsystem string

	mu    sync.Mutex
	token Token
}

func (c *accountCredentials) ProviderDisplayName() string { return ProviderName }
func (c *accountCredentials) Type() string                { return graph.CredentialFederated }
func (c *accountCredentials) ID() string                  { return c.account.String() }
func (c *accountCredentials) NativeSubsystem() string     { return c.subsystem }

func (c *accountCredentials) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token.AccessToken
}

func (c *accountCredentials) AuthAttributes() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]string{
		"authenticatedWith":      "federated",
		"federated.accessToken":  c.token.AccessToken,
		"federated.accountId":    c.account.String(),
		"federated.refreshToken": c.token.RefreshToken,
		"federated.expiresAt":    strconv.FormatInt(c.token.ExpiresAt.Unix(), 10),
	}
}

func (c *accountCredentials) Refresh(ctx context.Context) error {
	token, err := c.service.CopyToken(ctx, c.account)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}
