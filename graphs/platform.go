package graphs

import (
	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
)

// PlatformGraph signs in with the credentials of a platform credential
// source, optionally combined with the attempt's cross-platform provider.
//
// Without a provider the platform credential is exchanged directly. With a
// provider that is required, the user always ends up on a cross-platform
// account. With an optional provider, an existing cross-platform account is
// used implicitly, then an existing platform-only account, and only then is
// the user asked whether to sign in or create a new account.
func PlatformGraph(src nodes.CredentialSource) graph.Graph {
	return graph.GraphFunc(func(st *graph.State) graph.Node {
		switch {
		case st.CrossPlatformProvider == nil:
			return platformOnly(src)
		case st.Settings.RequireCrossPlatformAccount:
			return requiredCrossPlatform(st.CrossPlatformProvider, src)
		default:
			return optionalCrossPlatform(st.CrossPlatformProvider, src)
		}
	})
}

func platformOnly(src nodes.CredentialSource) graph.Node {
	return graph.Forever().
		Add(nodes.BailIfAlreadyAuthenticated()).
		Add(nodes.GatherPlatformCredentials(src)).
		Add(nodes.BailIfNotExactlyOneExternalCredential()).
		Add(nodes.GatherAccountsWithExternalCredentials()).
		Add(nodes.SelectOnly()).
		Add(nodes.LoginWithSelected())
}

func requiredCrossPlatform(p graph.CrossPlatformProvider, src nodes.CredentialSource) graph.Node {
	return graph.Forever().
		Add(nodes.BailIfAlreadyAuthenticated()).
		Add(nodes.GatherPlatformCredentials(src)).
		Add(p.InteractiveAuthentication()).
		Add(nodes.SelectCrossPlatformAccount(nodes.PermitContinuance)).
		Add(nodes.LoginWithSelected()).
		// Link the platform credential straight to the platform account too,
		// so the account stays reachable if the provider is ever removed.
		Add(nodes.GatherAccountsWithExternalCredentials()).
		Add(p.LinkUnusedExternalCredentials())
}

func optionalCrossPlatform(p graph.CrossPlatformProvider, src nodes.CredentialSource) graph.Node {
	signInOrCreate := graph.Forever().
		Add(nodes.PromptToSignInOrCreateAccount()).
		Add(graph.NewConditional().
			If(graph.SignInChoiceIs(graph.SignInChoiceSignIn), graph.Forever().
				Add(p.InteractiveOnlyAuthentication()).
				Add(nodes.SelectCrossPlatformAccount(nodes.ExistingAccountOnly)).
				Add(nodes.LoginWithSelected()).
				Add(p.LinkUnusedExternalCredentials())).
			Else(graph.Forever().
				Add(nodes.SelectSingleContinuanceToken()).
				Add(nodes.LoginWithSelected())))

	// A provider account without a platform identity is never used
	// implicitly: doing so could split one player across two platform
	// accounts. Fall back to the platform credential instead.
	platformFallback := graph.Forever().
		Add(p.NonInteractiveDeauthentication()).
		Add(nodes.GatherAccountsWithExternalCredentials()).
		Add(graph.NewConditional().
			If(graph.OneSuccessfulCandidate, graph.Forever().
				Add(nodes.SelectSingleSuccessful()).
				Add(nodes.LoginWithSelected())).
			Else(signInOrCreate))

	signIn := graph.Forever().
		Add(nodes.GatherPlatformCredentials(src)).
		Add(nodes.BailIfNotExactlyOneExternalCredential()).
		Add(p.NonInteractiveAuthentication(true)).
		Add(graph.NewConditional().
			If(graph.CrossPlatformAccountIsValidWithBackingIdentity, graph.Forever().
				Add(nodes.SelectCrossPlatformAccount(nodes.PermitContinuance)).
				Add(nodes.LoginWithSelected())).
			Else(platformFallback))

	return graph.NewConditional().
		If(graph.Unauthenticated, signIn).
		If(graph.CanUpgradeToCrossPlatformAccount, p.UpgradeCurrentAccount()).
		Else(nodes.BailIfAlreadyAuthenticated())
}
