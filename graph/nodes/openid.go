package nodes

import (
	"context"

	"github.com/MrEthical07/authgraph/graph"
)

// OpenIDLogin exchanges an OpenID access token held in state metadata for a
// platform session and records the outcome as a candidate.
//
// Transient backend failures re-run the node until the attempt's retry budget
// is exhausted.
type OpenIDLogin struct {
	// NodeName prefixes diagnostics and logs.
	NodeName string
	// TokenKey is the metadata key holding the access token.
	TokenKey string
	// RequiredKeys must all be present in metadata; TokenKey is always
	// required.
	RequiredKeys   []string
	MissingMessage string

	DisplayName   string
	CandidateType graph.CandidateType
	// AccountID derives the cross-platform account of the candidate. It may
	// be nil or return nil.
	AccountID func(st *graph.State) graph.CrossPlatformAccountID

	attempt int
}

func (n *OpenIDLogin) Name() string { return n.NodeName }

func (n *OpenIDLogin) Execute(ctx context.Context, st *graph.State, done graph.Done) {
	for _, key := range append([]string{n.TokenKey}, n.RequiredKeys...) {
		if _, ok := st.Metadata(key); !ok {
			st.AddDiagnostic(n.MissingMessage)
			done(graph.Error)
			return
		}
	}

	token := st.MetadataString(n.TokenKey)
	backend := st.Backend
	go func() {
		res, err := backend.Login(ctx, graph.LoginRequest{Type: graph.CredentialOpenIDAccessToken, Token: token})
		switch {
		case err == nil && !res.Valid():
			n.attempt = 0
			st.Log().Error("backend returned an empty login result", "node", n.NodeName)
			st.AddDiagnosticf("%s: OpenID failed to authenticate: %s", n.NodeName, graph.CodeUnexpected)
			done(graph.Error)
		case err == nil:
			n.attempt = 0
			n.addCandidate(st, res, token)
			done(graph.Continue)
		case graph.IsTransient(err) && st.RetryAllowed(n.attempt+1):
			n.attempt++
			st.NoteRetry(n.NodeName, n.attempt, err)
			n.Execute(ctx, st, done)
		default:
			n.attempt = 0
			st.AddDiagnosticf("%s: OpenID failed to authenticate: %s", n.NodeName, graph.CodeOf(err))
			done(graph.Error)
		}
	}()
}

func (n *OpenIDLogin) addCandidate(st *graph.State, res graph.LoginResult, token string) {
	var account graph.CrossPlatformAccountID
	if n.AccountID != nil {
		account = n.AccountID(st)
	}
	creds := &graph.StaticCredentials{
		DisplayName: n.DisplayName,
		CredType:    graph.CredentialOpenIDAccessToken,
		CredToken:   token,
	}
	st.AddCandidateFromLogin(res, creds, n.CandidateType, account, nil)
	if n.CandidateType == graph.CandidateCrossPlatform && graph.AccountIDValid(account) {
		st.AuthenticatedCrossPlatformAccountID = account
	}
}
