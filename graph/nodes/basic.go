package nodes

import (
	"context"

	"github.com/MrEthical07/authgraph/graph"
)

// Fail records msg and completes with Error.
func Fail(msg string) graph.Node {
	return graph.Named("Fail", func(_ context.Context, st *graph.State, done graph.Done) {
		st.AddDiagnostic(msg)
		done(graph.Error)
	})
}

// Noop completes with Continue.
func Noop() graph.Node {
	return graph.Named("Noop", func(_ context.Context, _ *graph.State, done graph.Done) {
		done(graph.Continue)
	})
}

// EmitLog writes msg at Info level. Test harnesses match on these lines.
func EmitLog(msg string) graph.Node {
	return graph.Named("EmitLog", func(_ context.Context, st *graph.State, done graph.Done) {
		st.Log().Info(msg)
		done(graph.Continue)
	})
}

func ClearCandidates() graph.Node {
	return graph.Named("ClearCandidates", func(_ context.Context, st *graph.State, done graph.Done) {
		st.ClearCandidates()
		done(graph.Continue)
	})
}

// BailIfAlreadyAuthenticated fails the attempt when the caller already has a
// signed-in user.
func BailIfAlreadyAuthenticated() graph.Node {
	return graph.Named("BailIfAlreadyAuthenticated", func(_ context.Context, st *graph.State, done graph.Done) {
		if st.ExistingUserID.IsValid() {
			st.AddDiagnostic("The user is already authenticated, so this authentication graph can not be used.")
			done(graph.Error)
			return
		}
		done(graph.Continue)
	})
}

func BailIfNotExactlyOneExternalCredential() graph.Node {
	return graph.Named("BailIfNotExactlyOneExternalCredential", func(_ context.Context, st *graph.State, done graph.Done) {
		if n := len(st.AvailableExternalCredentials); n != 1 {
			st.AddDiagnosticf("Expected exactly one external credential to be available, but there were %d.", n)
			done(graph.Error)
			return
		}
		done(graph.Continue)
	})
}
