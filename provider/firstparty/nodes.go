package firstparty

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
	"github.com/MrEthical07/authgraph/jwt"
)

// Metadata keys written by GetJWT.
const (
	MetadataAccessToken = "FIRST_PARTY_ACCESS_TOKEN"
	MetadataUserID      = "FIRST_PARTY_USER_ID"
)

// GetJWT logs in to the first-party service with the provided credential id
// and token as username and password. When verifier is non-nil the returned
// access token must verify and name the returned user as its subject.
func GetJWT(client LoginClient, verifier *jwt.Manager) graph.Node {
	return graph.Named("GetJwtForSimpleFirstParty", func(ctx context.Context, st *graph.State, done graph.Done) {
		username, password := st.ProvidedCredentials.ID, st.ProvidedCredentials.Token
		go func() {
			session, err := client.Login(ctx, username, password)
			if err != nil {
				st.AddDiagnostic(loginDiagnostic(err))
				done(graph.Error)
				return
			}
			if verifier != nil {
				claims, err := verifier.Verify(session.AccessToken)
				if err != nil {
					st.AddDiagnosticf("First party access token failed verification: %v", err)
					done(graph.Error)
					return
				}
				if claims.Subject != session.UserID.String() {
					st.AddDiagnostic("First party access token was issued for a different user.")
					done(graph.Error)
					return
				}
			}

			st.SetMetadata(MetadataAccessToken, session.AccessToken)
			st.SetMetadata(MetadataUserID, session.UserID.String())
			st.Log().Debug("obtained first party session", "user_id", session.UserID)
			done(graph.Continue)
		}()
	})
}

func loginDiagnostic(err error) string {
	var re *ResponseError
	body := ""
	if errors.As(err, &re) {
		body = re.Body
	}
	switch {
	case errors.Is(err, ErrLoginURLMissing):
		return "First party login URL not configured."
	case errors.Is(err, ErrLoginUnreachable):
		return "Unable to connect to login URL for authentication."
	case errors.Is(err, ErrLoginStatus):
		return "Non-200 response from login URL when obtaining JWT for authentication."
	case errors.Is(err, ErrResponseNotJSON):
		return fmt.Sprintf("Response data from login URL wasn't JSON, got: '%s'.", body)
	case errors.Is(err, ErrResponseMalformed):
		return fmt.Sprintf("Response data from login URL wasn't expected JSON format, got: '%s'.", body)
	case errors.Is(err, ErrResponseZeroUserID):
		return "Got response from login URL, but it indicated a user ID of 0 which is not valid. " +
			"User IDs are non-zero 64-bit integers."
	default:
		return fmt.Sprintf("First party login failed: %v", err)
	}
}

// PerformOpenIDLogin exchanges the first-party access token for a platform
// session and adds a cross-platform candidate for the first-party user.
func PerformOpenIDLogin() graph.Node {
	return &nodes.OpenIDLogin{
		NodeName:       "PerformOpenIdLoginForCrossPlatformFP",
		TokenKey:       MetadataAccessToken,
		RequiredKeys:   []string{MetadataUserID},
		MissingMessage: "Missing first party credentials to complete login",
		DisplayName:    ProviderName,
		CandidateType:  graph.CandidateCrossPlatform,
		AccountID: func(st *graph.State) graph.CrossPlatformAccountID {
			return ParseAccountID(st.MetadataString(MetadataUserID))
		},
	}
}
