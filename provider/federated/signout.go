package federated

import (
	"context"

	"github.com/MrEthical07/authgraph/graph"
)

// SignOutAccount signs account out of the account service and forgets any
// candidate it produced. It is registered as a cleanup node by every node
// that signs an account in.
func SignOutAccount(service AccountService, account AccountID) graph.Node {
	return graph.Named("SignOutAccount", func(ctx context.Context, st *graph.State, done graph.Done) {
		st.RemoveCandidates(func(c graph.Candidate) bool {
			return c.Type == graph.CandidateCrossPlatform && graph.SameAccount(account, c.CrossPlatformAccountID)
		})
		if graph.SameAccount(account, st.AuthenticatedCrossPlatformAccountID) {
			st.AuthenticatedCrossPlatformAccountID = nil
		}
		go func() {
			if err := service.SignOut(ctx, account); err != nil {
				st.Log().Error("unable to sign out cross-platform account", "account_id", account, "error", err)
				done(graph.Error)
				return
			}
			done(graph.Continue)
		}()
	})
}

// SignOutCandidate removes the cross-platform candidate and signs its
// account out so another account can be tried with the same credentials.
// Without a candidate it signs out the authenticated account, which is left
// behind when the platform exchange failed.
func SignOutCandidate(service AccountService) graph.Node {
	return graph.Named("SignOutCandidate", func(ctx context.Context, st *graph.State, done graph.Done) {
		removed := st.RemoveCandidates(func(c graph.Candidate) bool {
			return c.Type == graph.CandidateCrossPlatform
		})
		if len(removed) > 1 {
			panic("federated: multiple cross-platform candidates in state")
		}
		var account AccountID
		if len(removed) == 1 {
			account, _ = removed[0].CrossPlatformAccountID.(AccountID)
		} else {
			account, _ = st.AuthenticatedCrossPlatformAccountID.(AccountID)
		}
		if !account.IsValid() {
			st.AuthenticatedCrossPlatformAccountID = nil
			done(graph.Continue)
			return
		}
		go func() {
			if err := service.SignOut(ctx, account); err != nil {
				st.AddDiagnostic("Unable to sign out cross-platform account when required")
				st.Log().Error("sign out failed", "account_id", account, "error", err)
				done(graph.Error)
				return
			}
			st.AuthenticatedCrossPlatformAccountID = nil
			done(graph.Continue)
		}()
	})
}
