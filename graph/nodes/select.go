package nodes

import (
	"context"

	"github.com/MrEthical07/authgraph/graph"
)

// SelectOnly selects the sole candidate. Zero or several candidates is an
// error.
func SelectOnly() graph.Node {
	return graph.Named("SelectOnly", func(_ context.Context, st *graph.State, done graph.Done) {
		candidates := st.Candidates()
		if len(candidates) != 1 {
			st.AddDiagnosticf("SelectOnly expected exactly one candidate, but there were %d", len(candidates))
			done(graph.Error)
			return
		}
		st.Select(candidates[0])
		done(graph.Continue)
	})
}

// selectSingle selects the one candidate matching pred. name prefixes the
// diagnostics.
func selectSingle(name string, pred func(graph.Candidate) bool) graph.Node {
	return graph.Named(name, func(_ context.Context, st *graph.State, done graph.Done) {
		var (
			picked graph.Candidate
			found  bool
		)
		for _, c := range st.Candidates() {
			if !pred(c) {
				continue
			}
			if found {
				st.AddDiagnostic(name + " hit with multiple valid candidates")
				done(graph.Error)
				return
			}
			picked, found = c, true
		}
		if !found {
			st.AddDiagnostic(name + " hit with no valid candidates")
			done(graph.Error)
			return
		}
		st.Select(picked)
		done(graph.Continue)
	})
}

// SelectSingleSuccessful selects the only candidate with a user id.
func SelectSingleSuccessful() graph.Node {
	return selectSingle("SelectSingleSuccessful", func(c graph.Candidate) bool {
		return c.UserID.IsValid()
	})
}

// SelectSingleContinuanceToken selects the only candidate with a continuance
// token.
func SelectSingleContinuanceToken() graph.Node {
	return selectSingle("SelectSingleContinuanceToken", func(c graph.Candidate) bool {
		return c.ContinuanceToken.IsValid()
	})
}

// SelectByDisplayName selects the only candidate named name.
func SelectByDisplayName(name string) graph.Node {
	return selectSingle("SelectByDisplayName", func(c graph.Candidate) bool {
		return c.DisplayName == name
	})
}

// CrossPlatformSelectMode controls whether a cross-platform candidate that has
// no platform identity yet may be selected.
type CrossPlatformSelectMode int

const (
	// PermitContinuance allows selecting a candidate that only carries a
	// continuance token. Finalizing it creates the identity.
	PermitContinuance CrossPlatformSelectMode = iota
	// ExistingAccountOnly rejects continuance-only candidates.
	ExistingAccountOnly
)

const notPlayedBeforeMessage = "The chosen cross-platform account hasn't signed in to this game before. " +
	"If you've previously played this game on another device, log in there and connect your account " +
	"to your cross-platform account first, and then try signing in again."

// SelectCrossPlatformAccount selects the first cross-platform candidate.
func SelectCrossPlatformAccount(mode CrossPlatformSelectMode) graph.Node {
	return graph.Named("SelectCrossPlatformAccount", func(_ context.Context, st *graph.State, done graph.Done) {
		if st.HasSelected() {
			panic("nodes: SelectCrossPlatformAccount ran with a candidate already selected")
		}
		for _, c := range st.Candidates() {
			if c.Type != graph.CandidateCrossPlatform {
				continue
			}
			if mode == ExistingAccountOnly && !c.UserID.IsValid() {
				st.AddDiagnostic(notPlayedBeforeMessage)
				done(graph.Error)
				return
			}
			st.Select(c)
			done(graph.Continue)
			return
		}
		st.AddDiagnostic("SelectCrossPlatformAccount ran but there were no cross-platform candidates available")
		done(graph.Error)
	})
}
