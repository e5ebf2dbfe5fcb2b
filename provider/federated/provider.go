// Package federated implements the cross-platform provider backed by a
// federated account service: exchange codes, developer credentials,
// persistent refresh tokens, platform credential sign-in, interactive login
// and account linking.
package federated

import (
	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
)

// Provider is the federated cross-platform provider.
type Provider struct {
	service AccountService
}

var _ graph.CrossPlatformProvider = (*Provider)(nil)

// New returns a provider that signs in through service.
func New(service AccountService) *Provider {
	return &Provider{service: service}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) ParseAccountID(s string) graph.CrossPlatformAccountID {
	return ParseAccountID(s)
}

func (p *Provider) AccountIDFromBytes(b []byte) graph.CrossPlatformAccountID {
	return AccountIDFromBytes(b)
}

/* ==== CONDITIONS ==== */

// HasContinuanceToken holds when a platform credential produced an account
// service continuance token.
func HasContinuanceToken(st *graph.State) bool {
	return st.ExternalContinuanceToken.IsValid()
}

func HasAccount(st *graph.State) bool {
	return graph.CrossPlatformAccountIsValid(st)
}

// CandidateMatchesExistingAccount holds when the cross-platform candidate
// resolved to the user that is already signed in.
func CandidateMatchesExistingAccount(st *graph.State) bool {
	for _, c := range st.Candidates() {
		if c.Type == graph.CandidateCrossPlatform && c.UserID.IsValid() && c.UserID == st.ExistingUserID {
			return true
		}
	}
	return false
}

// CandidateIsContinuanceToken holds when the cross-platform candidate has no
// platform identity yet.
func CandidateIsContinuanceToken(st *graph.State) bool {
	return graph.CrossPlatformProvidedContinuance(st)
}

/* ==== SEQUENCES ==== */

// nonInteractiveSources are the sign-in paths that never prompt, in the
// order they are tried.
func (p *Provider) nonInteractiveSources() []graph.Node {
	return []graph.Node{
		TryExchangeCode(p.service),
		TryContextDeveloper(p.service),
		TryDefaultDeveloper(p.service),
		TryPersistent(p.service),
	}
}

func (p *Provider) InteractiveAuthentication() graph.Node {
	signIn := graph.UntilCrossPlatformAccountPresent("Unable to sign in to " + ProviderName +
		" interactively. Check the logs for more information.")
	for _, n := range p.nonInteractiveSources() {
		signIn.Add(n)
	}
	signIn.
		Add(GatherAccountsWithExternalCredentials(p.service)).
		Add(graph.NewConditional().
			If(HasContinuanceToken, InteractiveLinkExternalCredentials(p.service)).
			Else(InteractiveLogin(p.service)))

	return graph.Forever().
		Add(signIn).
		Add(ChainResultToPlatform(p.service))
}

func (p *Provider) InteractiveOnlyAuthentication() graph.Node {
	return graph.Forever().
		Add(graph.UntilCrossPlatformAccountPresent("").Add(InteractiveLogin(p.service))).
		Add(ChainResultToPlatform(p.service))
}

func (p *Provider) NonInteractiveAuthentication(onlyExternal bool) graph.Node {
	signIn := graph.UntilCrossPlatformAccountPresent("").AllowFailure(true)
	if !onlyExternal {
		for _, n := range p.nonInteractiveSources() {
			signIn.Add(n)
		}
	}
	signIn.Add(GatherAccountsWithExternalCredentials(p.service))

	return graph.Forever().
		Add(signIn).
		Add(graph.NewConditional().
			If(graph.CrossPlatformAccountIsValid, ChainResultToPlatform(p.service)).
			Else(nodes.Noop()))
}

func (p *Provider) UpgradeCurrentAccount() graph.Node {
	return graph.Forever().
		Add(GetContinuanceOrAccountForExisting(p.service)).
		Add(graph.NewConditional().
			If(HasContinuanceToken, InteractiveLinkExternalCredentials(p.service)).
			Else(nodes.Noop())).
		Add(graph.NewConditional().
			If(HasAccount, ChainResultToPlatform(p.service)).
			Else(nodes.Fail("Unable to complete linking process as no cross-platform account was available."))).
		Add(graph.NewConditional().
			If(CandidateMatchesExistingAccount, graph.Forever().
				Add(nodes.SelectCrossPlatformAccount(nodes.PermitContinuance)).
				Add(nodes.LoginWithSelected())).
			If(CandidateIsContinuanceToken, graph.Forever().
				Add(LinkContinuanceToExisting()).
				Add(nodes.ClearCandidates()).
				Add(GetContinuanceOrAccountForExisting(p.service)).
				Add(ChainResultToPlatform(p.service)).
				Add(nodes.SelectCrossPlatformAccount(nodes.PermitContinuance)).
				Add(nodes.LoginWithSelected())).
			Else(FailDueToConflictingAccounts()))
}

func (p *Provider) LinkUnusedExternalCredentials() graph.Node {
	return LinkUnconnected()
}

func (p *Provider) NonInteractiveDeauthentication() graph.Node {
	return SignOutCandidate(p.service)
}

func (p *Provider) AutomatedTestingAuthentication() graph.Node {
	return graph.Forever().
		Add(graph.UntilCrossPlatformAccountPresent("").Add(AutomatedTestingLogin(p.service))).
		Add(ChainResultToPlatform(p.service))
}

// DeveloperToolAuthentication signs in with the developer tool credentials
// only and exchanges the account for a platform session.
func (p *Provider) DeveloperToolAuthentication() graph.Node {
	return graph.Forever().
		Add(graph.UntilCrossPlatformAccountPresent("Unable to authenticate with the developer authentication tool. "+
			"Ensure it is running and has a credential loaded.").
			Add(TryContextDeveloper(p.service)).
			Add(TryDefaultDeveloper(p.service))).
		Add(ChainResultToPlatform(p.service))
}
