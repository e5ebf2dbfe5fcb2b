// Package firstparty implements a lightweight cross-platform provider for
// studios running their own account service. Users sign in with a username
// and password posted to a login URL; the returned access token is then
// exchanged with the platform backend as an OpenID credential.
package firstparty

import (
	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
	"github.com/MrEthical07/authgraph/jwt"
)

// Provider is the first-party cross-platform provider.
type Provider struct {
	client   LoginClient
	verifier *jwt.Manager
}

var _ graph.CrossPlatformProvider = (*Provider)(nil)

// New returns a provider that logs in through client. verifier may be nil.
func New(client LoginClient, verifier *jwt.Manager) *Provider {
	return &Provider{client: client, verifier: verifier}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) ParseAccountID(s string) graph.CrossPlatformAccountID {
	return ParseAccountID(s)
}

func (p *Provider) AccountIDFromBytes(b []byte) graph.CrossPlatformAccountID {
	return AccountIDFromBytes(b)
}

func (p *Provider) signIn() graph.Node {
	return graph.Forever().
		Add(GetJWT(p.client, p.verifier)).
		Add(PerformOpenIDLogin())
}

func (p *Provider) InteractiveAuthentication() graph.Node     { return p.signIn() }
func (p *Provider) InteractiveOnlyAuthentication() graph.Node { return p.signIn() }

func (p *Provider) NonInteractiveAuthentication(bool) graph.Node { return nodes.Noop() }
func (p *Provider) UpgradeCurrentAccount() graph.Node            { return nodes.Noop() }
func (p *Provider) LinkUnusedExternalCredentials() graph.Node    { return nodes.Noop() }
func (p *Provider) NonInteractiveDeauthentication() graph.Node   { return nodes.Noop() }

// AutomatedTestingAuthentication fails: first-party accounts are real
// accounts and cannot be minted for a test run.
func (p *Provider) AutomatedTestingAuthentication() graph.Node {
	return nodes.Fail("The " + ProviderName + " cross-platform provider does not support automated testing.")
}
