package nodes

import (
	"context"
	"fmt"
	"maps"

	"github.com/MrEthical07/authgraph/graph"
)

// LoginWithSelected commits the selected candidate as the attempt result.
//
// A candidate with a user id is copied into the result fields directly,
// replacing any result attributes gathered so far. A candidate with only a
// continuance token is first exchanged for a new user through
// Backend.CreateUser and its attributes are merged into the result. A
// candidate with neither is a broken invariant and panics.
func LoginWithSelected() graph.Node {
	return graph.Named("LoginWithSelected", loginWithSelected)
}

func loginWithSelected(ctx context.Context, st *graph.State, done graph.Done) {
	c := st.Selected()

	if c.UserID.IsValid() {
		st.ResultAuthAttributes = maps.Clone(c.AuthAttributes)
		commit(st, c, c.UserID)
		done(graph.Continue)
		return
	}
	if !c.ContinuanceToken.IsValid() {
		panic(fmt.Sprintf("nodes: selected candidate %q has neither a user id nor a continuance token", c.DisplayName))
	}

	backend := st.Backend
	go func() {
		user, err := backend.CreateUser(ctx, c.ContinuanceToken)
		if err != nil {
			st.AddDiagnosticf("Unable to create user: %v", err)
			done(graph.Error)
			return
		}
		st.MergeResultAttributes(c.AuthAttributes)
		commit(st, c, user)
		done(graph.Continue)
	}()
}

func commit(st *graph.State, c graph.Candidate, user graph.UserID) {
	st.ResultUserID = user
	st.ResultRefresh = c.Refresh
	st.ResultExternalCredentials = c.ExternalCredentials
	st.ResultCrossPlatformAccountID = c.CrossPlatformAccountID
	st.ResultNativeSubsystem = c.NativeSubsystem
}
