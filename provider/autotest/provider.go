// Package autotest implements a deterministic cross-platform provider for
// test harnesses.
//
// Every sequence issues an identity token locally and exchanges it with the
// platform backend as an OpenID credential. Each sequence also logs a
// "[CPAT-nn]" marker so that tests can assert which path a graph took.
package autotest

import (
	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
	"github.com/MrEthical07/authgraph/jwt"
)

// Log markers emitted by the provider sequences.
const (
	MarkerInteractive     = "[CPAT-01] Emulating required sign-in for cross-platform automation testing"
	MarkerInteractiveOnly = "[CPAT-02] Emulating interactive sign in because the automated testing emulated a click on 'sign in' instead of 'create an account'"
	MarkerNonInteractive  = "[CPAT-03] Emulating non-interactive sign-in for cross-platform automation testing"
	MarkerLinkUnused      = "[CPAT-04] Requested linkage of platform credentials into cross-platform account"
	MarkerUpgrade         = "[CPAT-05] Emulating interactive login as part of an upgrade process"
)

const redundantGraphMessage = "The automated testing cross-platform provider is not meant to be used with the " +
	"AutomatedTesting graph, as this combination is redundant. The automated testing cross-platform provider is " +
	"intended to be used with other graphs to test their interactive sign in and create account flows."

type Provider struct {
	issuer *jwt.Manager
}

var _ graph.CrossPlatformProvider = (*Provider)(nil)

// New returns a provider that signs its tokens with issuer.
func New(issuer *jwt.Manager) *Provider {
	return &Provider{issuer: issuer}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) ParseAccountID(s string) graph.CrossPlatformAccountID {
	return ParseAccountID(s)
}

func (p *Provider) AccountIDFromBytes(b []byte) graph.CrossPlatformAccountID {
	return AccountIDFromBytes(b)
}

func (p *Provider) crossPlatformSignIn(marker string) *graph.Until {
	return graph.Forever().
		Add(IssueCrossPlatformJWT(p.issuer)).
		Add(nodes.EmitLog(marker)).
		Add(PerformCrossPlatformOpenIDLogin())
}

func (p *Provider) InteractiveAuthentication() graph.Node {
	return p.crossPlatformSignIn(MarkerInteractive)
}

func (p *Provider) InteractiveOnlyAuthentication() graph.Node {
	return p.crossPlatformSignIn(MarkerInteractiveOnly)
}

// NonInteractiveAuthentication issues a platform token rather than a
// cross-platform one. The resulting candidate always carries a continuance
// token, so graphs proceed to their sign-in-or-create prompt with something
// to create an account from.
func (p *Provider) NonInteractiveAuthentication(bool) graph.Node {
	return graph.Forever().
		Add(nodes.EmitLog(MarkerNonInteractive)).
		Add(IssueJWT(p.issuer)).
		Add(PerformOpenIDLogin())
}

func (p *Provider) UpgradeCurrentAccount() graph.Node {
	return p.crossPlatformSignIn(MarkerUpgrade).
		Add(nodes.SelectCrossPlatformAccount(nodes.PermitContinuance)).
		Add(nodes.LoginWithSelected())
}

func (p *Provider) LinkUnusedExternalCredentials() graph.Node {
	return nodes.EmitLog(MarkerLinkUnused)
}

func (p *Provider) NonInteractiveDeauthentication() graph.Node { return nodes.Noop() }

func (p *Provider) AutomatedTestingAuthentication() graph.Node {
	return nodes.Fail(redundantGraphMessage)
}
