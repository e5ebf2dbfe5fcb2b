package federated

import (
	"context"

	"github.com/MrEthical07/authgraph/graph"
)

// signedIn records a successful account service sign-in. The session is
// signed out again if the attempt fails.
func signedIn(st *graph.State, service AccountService, account AccountID, how string) {
	st.AddCleanup(SignOutAccount(service, account))
	st.SetResultAttribute(authenticatedWithAttribute, how)
	st.AuthenticatedCrossPlatformAccountID = account
}

// TryExchangeCode signs in with an exchange code supplied as the provided
// credential. Absent or rejected codes are skipped.
func TryExchangeCode(service AccountService) graph.Node {
	return graph.Named("TryExchangeCode", func(ctx context.Context, st *graph.State, done graph.Done) {
		if st.ProvidedCredentials.Type != CredentialExchangeCode || st.ProvidedCredentials.Token == "" {
			done(graph.Continue)
			return
		}
		code := st.ProvidedCredentials.Token
		go func() {
			account, err := service.Login(ctx, Login{Kind: LoginExchangeCode, Token: code})
			if err != nil || !account.IsValid() {
				st.Log().Debug("exchange code rejected", "error", err)
				done(graph.Continue)
				return
			}
			st.SetMetadata(MetadataNativeSubsystem, ProviderName)
			signedIn(st, service, account, "exchangeCode")
			done(graph.Continue)
		}()
	})
}

// developerCredentialName picks the credential name a developer login uses.
type developerCredentialName func(st *graph.State) string

// contextDeveloperName uses a developer credential supplied by the caller,
// such as "Context_1" for a second editor instance.
func contextDeveloperName(st *graph.State) string {
	if st.ProvidedCredentials.Type == CredentialDeveloper {
		return st.ProvidedCredentials.ID
	}
	return ""
}

func defaultDeveloperName(st *graph.State) string {
	return st.Settings.DeveloperToolCredentialName
}

func tryDeveloper(name string, service AccountService, credentialName developerCredentialName) graph.Node {
	return graph.Named(name, func(ctx context.Context, st *graph.State, done graph.Done) {
		address := st.Settings.DeveloperToolAddress
		if address == "" || st.Settings.AutomatedTesting {
			done(graph.Continue)
			return
		}
		cred := credentialName(st)
		if cred == "" || !st.MarkDeveloperCredentialAttempted(cred) {
			done(graph.Continue)
			return
		}
		st.Log().Debug("trying developer credential", "address", address, "credential", cred)
		go func() {
			account, err := service.Login(ctx, Login{Kind: LoginDeveloper, ID: address, Token: cred})
			if err != nil || !account.IsValid() {
				done(graph.Continue)
				return
			}
			signedIn(st, service, account, "devTool")
			done(graph.Continue)
		}()
	})
}

// TryContextDeveloper signs in with the developer credential the caller
// supplied.
func TryContextDeveloper(service AccountService) graph.Node {
	return tryDeveloper("TryContextDeveloper", service, contextDeveloperName)
}

// TryDefaultDeveloper signs in with the configured default developer
// credential.
func TryDefaultDeveloper(service AccountService) graph.Node {
	return tryDeveloper("TryDefaultDeveloper", service, defaultDeveloperName)
}

// TryPersistent signs in with a refresh token stored by an earlier attempt.
func TryPersistent(service AccountService) graph.Node {
	return graph.Named("TryPersistent", func(ctx context.Context, st *graph.State, done graph.Done) {
		token := st.MetadataString(MetadataRefreshToken)
		if !st.Settings.PersistentLoginEnabled || token == "" {
			done(graph.Continue)
			return
		}
		go func() {
			account, err := service.Login(ctx, Login{Kind: LoginPersistent, Token: token})
			if err != nil || !account.IsValid() {
				st.Log().Debug("persistent login failed", "error", err)
				done(graph.Continue)
				return
			}
			signedIn(st, service, account, "persistent")
			done(graph.Continue)
		}()
	})
}

// AutomatedTestingLogin signs in with the provided id and token as a
// password login.
func AutomatedTestingLogin(service AccountService) graph.Node {
	return graph.Named("AutomatedTestingLogin", func(ctx context.Context, st *graph.State, done graph.Done) {
		creds := st.ProvidedCredentials
		if creds.ID == "" || creds.Token == "" {
			done(graph.Continue)
			return
		}
		go func() {
			account, err := service.Login(ctx, Login{Kind: LoginPassword, ID: creds.ID, Token: creds.Token})
			if err != nil || !account.IsValid() {
				st.AddDiagnosticf("AutomatedTestingLogin: Failed to login with automated testing account: %s", graph.CodeOf(err))
				done(graph.Error)
				return
			}
			signedIn(st, service, account, "automatedTesting")
			done(graph.Continue)
		}()
	})
}

// InteractiveLogin signs the user in interactively. A pending external
// continuance token is linked to the account as part of the sign-in.
func InteractiveLogin(service AccountService) graph.Node {
	return interactive("InteractiveLogin", service, false)
}

// InteractiveLinkExternalCredentials signs the user in interactively and
// links the platform credential behind the external continuance token.
func InteractiveLinkExternalCredentials(service AccountService) graph.Node {
	return interactive("InteractiveLinkExternalCredentials", service, true)
}

func interactive(name string, service AccountService, requireLink bool) graph.Node {
	return graph.Named(name, func(ctx context.Context, st *graph.State, done graph.Done) {
		if requireLink && !st.ExternalContinuanceToken.IsValid() {
			panic("federated: " + name + " requires an external continuance token")
		}
		req := InteractiveRequest{Credentials: st.ProvidedCredentials, LinkToken: st.ExternalContinuanceToken}
		go func() {
			account, err := service.Interactive(ctx, req)
			if err != nil || !account.IsValid() {
				st.AddDiagnosticf("%s: Interactive authentication failed with error %s", name, graph.CodeOf(err))
				done(graph.Error)
				return
			}
			signedIn(st, service, account, "interactive")
			done(graph.Continue)
		}()
	})
}
