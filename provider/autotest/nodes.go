package autotest

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
	"github.com/MrEthical07/authgraph/jwt"
)

// Prefixes recognized in the provided credential id of an automated testing
// attempt.
const (
	CreateOnDemandPrefix = "CreateOnDemand:"
	// JWTPrefix carries a pre-issued token instead of a test name.
	JWTPrefix = "JWT:"
)

// Metadata and attribute keys written by IssueJWT.
const (
	MetadataJWT     = "AUTOMATED_TESTING_JWT"
	MetadataSubject = "AUTOMATED_TESTING_SUBJECT"
	AttributeJWT    = "automatedTesting.jwt"
)

// Candidate display names.
const (
	DisplayName              = "AutomatedTesting"
	CrossPlatformDisplayName = "AutomatedTestingCrossPlatform"
)

var accountNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://authgraph.dev/automated-testing"))

// SubjectFor derives the stable account subject of testName. Cross-platform
// subjects live in a separate space so the same test yields two distinct
// accounts.
func SubjectFor(testName string, crossPlatform bool) string {
	name := testName
	if crossPlatform {
		name = "cross-platform/" + testName
	}
	return uuid.NewSHA1(accountNamespace, []byte(name)).String()
}

// IssueJWT signs an identity token for the test named by the provided
// credential id and stores it in metadata. An id of the form "JWT:<token>"
// is used as-is.
func IssueJWT(issuer *jwt.Manager) graph.Node {
	return issueJWT("IssueJwtForAutomatedTesting", issuer, false)
}

// IssueCrossPlatformJWT is IssueJWT for the cross-platform account of the
// test.
func IssueCrossPlatformJWT(issuer *jwt.Manager) graph.Node {
	return issueJWT("IssueJwtForCrossPlatformAutomatedTesting", issuer, true)
}

func issueJWT(name string, issuer *jwt.Manager, crossPlatform bool) graph.Node {
	return graph.Named(name, func(_ context.Context, st *graph.State, done graph.Done) {
		id := st.ProvidedCredentials.ID
		if token, ok := strings.CutPrefix(id, JWTPrefix); ok {
			st.SetMetadata(MetadataJWT, strings.TrimSpace(token))
			done(graph.Continue)
			return
		}
		if issuer == nil {
			st.AddDiagnostic("No identity token issuer is configured for automated testing.")
			done(graph.Error)
			return
		}

		testName := strings.TrimPrefix(id, CreateOnDemandPrefix)
		subject := SubjectFor(testName, crossPlatform)
		token, err := issuer.Issue(subject, testName)
		if err != nil {
			st.AddDiagnosticf("Unable to issue JWT for automated testing: %v", err)
			done(graph.Error)
			return
		}
		st.Log().Debug("issued automated testing jwt", "test_name", testName, "subject", subject)
		st.SetMetadata(MetadataJWT, token)
		st.SetMetadata(MetadataSubject, subject)
		st.SetResultAttribute(AttributeJWT, token)
		done(graph.Continue)
	})
}

// PerformOpenIDLogin exchanges the automated testing token for a platform
// session and adds a generic candidate.
func PerformOpenIDLogin() graph.Node {
	return &nodes.OpenIDLogin{
		NodeName:       "PerformOpenIdLoginForAutomatedTesting",
		TokenKey:       MetadataJWT,
		MissingMessage: "AUTOMATED_TESTING_JWT metadata not present",
		DisplayName:    DisplayName,
		CandidateType:  graph.CandidateGeneric,
	}
}

// PerformCrossPlatformOpenIDLogin exchanges the automated testing token and
// adds a cross-platform candidate.
func PerformCrossPlatformOpenIDLogin() graph.Node {
	return &nodes.OpenIDLogin{
		NodeName:       "PerformOpenIdLoginForCrossPlatformAutomatedTesting",
		TokenKey:       MetadataJWT,
		MissingMessage: "AUTOMATED_TESTING_JWT metadata not present",
		DisplayName:    CrossPlatformDisplayName,
		CandidateType:  graph.CandidateCrossPlatform,
		AccountID: func(st *graph.State) graph.CrossPlatformAccountID {
			return AccountID(st.MetadataString(MetadataSubject))
		},
	}
}
