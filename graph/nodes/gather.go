package nodes

import (
	"context"

	"github.com/MrEthical07/authgraph/graph"
)

type exchange struct {
	res graph.LoginResult
	err error
}

// GatherAccountsWithExternalCredentials exchanges every available external
// credential with the backend concurrently. Candidates are added in the
// order the credentials were listed, regardless of completion order.
func GatherAccountsWithExternalCredentials() graph.Node {
	return graph.Named("GatherAccountsWithExternalCredentials", func(ctx context.Context, st *graph.State, done graph.Done) {
		creds := append([]graph.ExternalCredentials(nil), st.AvailableExternalCredentials...)
		backend := st.Backend

		graph.FanOut(ctx, st.Settings.FanOutLimit, creds,
			func(ctx context.Context, _ int, c graph.ExternalCredentials) exchange {
				res, err := graph.CheckLogin(backend.Login(ctx, graph.LoginRequest{Type: c.Type(), ID: c.ID(), Token: c.Token()}))
				return exchange{res: res, err: err}
			},
			func(results []exchange) {
				for i, r := range results {
					if r.err != nil {
						st.AddDiagnosticf("External credential '%s' failed to authenticate: %s", creds[i].Type(), graph.CodeOf(r.err))
						continue
					}
					st.AddCandidateFromLogin(r.res, creds[i], graph.CandidateGeneric, nil, RefreshFromExternalCredentials(backend, creds[i]))
				}
				done(graph.Continue)
			})
	})
}

// CredentialSource supplies platform credentials for an attempt.
type CredentialSource interface {
	// Name identifies the source in diagnostics.
	Name() string
	FetchCredentials(ctx context.Context, provided graph.Credentials) ([]graph.ExternalCredentials, error)
}

// GatherPlatformCredentials appends the credentials of src to the state.
// Automated testing runs skip the source entirely.
func GatherPlatformCredentials(src CredentialSource) graph.Node {
	return graph.Named("GatherPlatformCredentials", func(ctx context.Context, st *graph.State, done graph.Done) {
		if st.Settings.AutomatedTesting {
			done(graph.Continue)
			return
		}
		provided := st.ProvidedCredentials
		go func() {
			creds, err := src.FetchCredentials(ctx, provided)
			if err != nil {
				st.Log().Error("platform credentials unavailable", "source", src.Name(), "error", err)
				st.AddDiagnosticf("Could not authenticate with %s: %v", src.Name(), err)
				done(graph.Error)
				return
			}
			st.AvailableExternalCredentials = append(st.AvailableExternalCredentials, creds...)
			done(graph.Continue)
		}()
	})
}

// ProvidedCredentialSource turns the caller-supplied credential triple into a
// single platform credential.
type ProvidedCredentialSource struct {
	Subsystem string
	// CredentialType overrides the provided type when set.
	CredentialType string
	// AuthenticatedWith is reported as the authenticatedWith attribute.
	AuthenticatedWith string
	// TokenAttribute, when set, names the attribute carrying the token.
	TokenAttribute string
}

func (p ProvidedCredentialSource) Name() string { return p.Subsystem }

func (p ProvidedCredentialSource) FetchCredentials(_ context.Context, provided graph.Credentials) ([]graph.ExternalCredentials, error) {
	typ := provided.Type
	if p.CredentialType != "" {
		typ = p.CredentialType
	}
	id := provided.ID
	if id == "" {
		id = "Anonymous"
	}
	attrs := map[string]string{"authenticatedWith": p.AuthenticatedWith}
	if p.TokenAttribute != "" {
		attrs[p.TokenAttribute] = provided.Token
	}
	return []graph.ExternalCredentials{&graph.StaticCredentials{
		DisplayName: p.Subsystem,
		CredType:    typ,
		CredID:      id,
		CredToken:   provided.Token,
		Attributes:  attrs,
		Subsystem:   p.Subsystem,
	}}, nil
}
