package federated

import (
	"context"
	"fmt"
	"maps"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
)

type externalLogin struct {
	res ExternalLoginResult
	err error
}

// GatherAccountsWithExternalCredentials signs in to the account service with
// every available platform credential. The first linked account becomes the
// authenticated account; failing that, the first continuance token is kept
// for interactive linking.
func GatherAccountsWithExternalCredentials(service AccountService) graph.Node {
	return graph.Named("GatherFederatedAccountsWithExternalCredentials", func(ctx context.Context, st *graph.State, done graph.Done) {
		creds := append([]graph.ExternalCredentials(nil), st.AvailableExternalCredentials...)

		graph.FanOut(ctx, st.Settings.FanOutLimit, creds,
			func(ctx context.Context, _ int, c graph.ExternalCredentials) externalLogin {
				res, err := service.LoginExternal(ctx, c)
				return externalLogin{res: res, err: err}
			},
			func(results []externalLogin) {
				var (
					account AccountID
					token   graph.ContinuanceToken
				)
				for i, r := range results {
					switch {
					case r.err != nil:
						st.AddDiagnosticf("External credential '%s' failed to authenticate: %s", creds[i].Type(), graph.CodeOf(r.err))
					case r.res.Account.IsValid():
						st.AddCleanup(SignOutAccount(service, r.res.Account))
						if account.IsValid() {
							continue
						}
						account = r.res.Account
						st.MergeResultAttributes(federatedAttributes(creds[i].AuthAttributes()))
						st.SetMetadata(MetadataNativeSubsystem, creds[i].NativeSubsystem())
					case r.res.ContinuanceToken.IsValid() && !token.IsValid():
						token = r.res.ContinuanceToken
					}
				}
				if account.IsValid() {
					st.AuthenticatedCrossPlatformAccountID = account
				} else if token.IsValid() {
					st.ExternalContinuanceToken = token
				}
				done(graph.Continue)
			})
	})
}

// federatedAttributes namespaces the authenticatedWith attribute of a
// platform credential so it does not clobber the platform's own.
func federatedAttributes(attrs map[string]string) map[string]string {
	out := maps.Clone(attrs)
	if out == nil {
		return map[string]string{}
	}
	if v, ok := out["authenticatedWith"]; ok {
		delete(out, "authenticatedWith")
		out[authenticatedWithAttribute] = v
	}
	return out
}

// ChainResultToPlatform exchanges the authenticated federated account for a
// platform session and adds the result as a cross-platform candidate.
func ChainResultToPlatform(service AccountService) graph.Node {
	return graph.Named("ChainResultToPlatform", func(ctx context.Context, st *graph.State, done graph.Done) {
		account, ok := st.AuthenticatedCrossPlatformAccountID.(AccountID)
		if !ok || !account.IsValid() {
			st.AddDiagnostic("ChainResultToPlatform ran without an authenticated cross-platform account")
			done(graph.Continue)
			return
		}
		subsystem := st.MetadataString(MetadataNativeSubsystem)
		if subsystem == "" {
			subsystem = ProviderName
		}
		backend := st.Backend
		go func() {
			creds := &accountCredentials{service: service, account: account, subsystem: subsystem}
			if err := creds.Refresh(ctx); err != nil {
				st.AddDiagnosticf("Unable to copy the cross-platform account token: %s", graph.CodeOf(err))
				done(graph.Continue)
				return
			}
			if refresh := creds.token.RefreshToken; refresh != "" {
				st.SetMetadata(MetadataRefreshToken, refresh)
			}
			res, err := graph.CheckLogin(backend.Login(ctx, graph.LoginRequest{Type: creds.Type(), ID: creds.ID(), Token: creds.Token()}))
			if err != nil {
				st.AddDiagnosticf("Cross-platform account service failed to authenticate with the platform backend: %s", graph.CodeOf(err))
				done(graph.Continue)
				return
			}
			st.AddCandidateFromLogin(res, creds, graph.CandidateCrossPlatform, account, nodes.RefreshFromExternalCredentials(backend, creds))
			done(graph.Continue)
		}()
	})
}

// GetContinuanceOrAccountForExisting signs in to the account service with the
// platform credential the existing user authenticated with.
func GetContinuanceOrAccountForExisting(service AccountService) graph.Node {
	return graph.Named("GetContinuanceOrAccountForExisting", func(ctx context.Context, st *graph.State, done graph.Done) {
		existing := st.ExistingExternalCredentials
		if existing == nil {
			st.Log().Warn("no existing external credentials to upgrade with")
			done(graph.Continue)
			return
		}
		go func() {
			res, err := service.LoginExternal(ctx, existing)
			switch {
			case err != nil:
				st.Log().Error("existing external credentials failed to authenticate", "error", err)
			case res.Account.IsValid():
				st.AddCleanup(SignOutAccount(service, res.Account))
				st.AuthenticatedCrossPlatformAccountID = res.Account
			case res.ContinuanceToken.IsValid():
				st.ExternalContinuanceToken = res.ContinuanceToken
			}
			done(graph.Continue)
		}()
	})
}

// LinkContinuanceToExisting binds the continuance token of the cross-platform
// candidate to the existing platform user.
func LinkContinuanceToExisting() graph.Node {
	return graph.Named("LinkContinuanceToExisting", func(ctx context.Context, st *graph.State, done graph.Done) {
		var token graph.ContinuanceToken
		for _, c := range st.Candidates() {
			if c.Type == graph.CandidateCrossPlatform && !c.UserID.IsValid() && c.ContinuanceToken.IsValid() {
				token = c.ContinuanceToken
				break
			}
		}
		linker, ok := st.Backend.(graph.LinkBackend)
		if !token.IsValid() || !ok {
			st.AddDiagnosticf("Link account operation failed with result code %s", graph.CodeOf(graph.ErrLinkUnsupported))
			done(graph.Continue)
			return
		}
		user := st.ExistingUserID
		go func() {
			if err := linker.LinkAccount(ctx, user, token); err != nil {
				st.AddDiagnosticf("Link account operation failed with result code %s", graph.CodeOf(err))
			}
			done(graph.Continue)
		}()
	})
}

// LinkUnconnected links the platform credential that produced an unbound
// candidate to the cross-platform account that was just signed in. It
// always continues.
func LinkUnconnected() graph.Node {
	return graph.Named("LinkUnconnected", func(ctx context.Context, st *graph.State, done graph.Done) {
		candidates := st.Candidates()
		if len(candidates) != 2 || !st.HasSelected() || st.Selected().Type != graph.CandidateCrossPlatform {
			done(graph.Continue)
			return
		}
		var token graph.ContinuanceToken
		for _, c := range candidates {
			if c.Type == graph.CandidateGeneric && c.ContinuanceToken.IsValid() {
				token = c.ContinuanceToken
			}
		}
		linker, ok := st.Backend.(graph.LinkBackend)
		if !token.IsValid() || !ok {
			done(graph.Continue)
			return
		}
		user := st.ResultUserID
		if !user.IsValid() {
			user = st.Selected().UserID
		}
		go func() {
			if err := linker.LinkAccount(ctx, user, token); err != nil {
				st.Log().Warn("unable to link unconnected platform credential", "user_id", user, "error", err)
			}
			done(graph.Continue)
		}()
	})
}

const conflictMessage = "The specified cross-platform account has already played this title, so you can not " +
	"link it against the game data of this local account. Please contact game support with the following " +
	"information: \n - Local account id: %s\n - Cross-platform account ID: %s\n - Cross-platform platform account id: %s"

// FailDueToConflictingAccounts fails the upgrade because the cross-platform
// account already belongs to a different platform user.
func FailDueToConflictingAccounts() graph.Node {
	return graph.Named("FailDueToConflictingAccounts", func(_ context.Context, st *graph.State, done graph.Done) {
		platformID := "Unavailable"
		for _, c := range st.Candidates() {
			if c.Type == graph.CandidateCrossPlatform && c.UserID.IsValid() {
				platformID = c.UserID.String()
				break
			}
		}
		st.AddDiagnostic(fmt.Sprintf(conflictMessage,
			st.ExistingUserID,
			graph.AccountIDString(st.AuthenticatedCrossPlatformAccountID),
			platformID))
		done(graph.Error)
	})
}
