package federated

import (
	"bytes"
	"context"
	"time"

	"github.com/MrEthical07/authgraph/graph"
)

// ProviderName is the registry name of the federated provider.
const ProviderName = "Federated"

// Provided credential types that select a specific login path.
const (
	CredentialExchangeCode = "EXCHANGE_CODE"
	CredentialDeveloper    = "DEVELOPER"
)

// Metadata keys used by the federated nodes.
const (
	MetadataRefreshToken    = "FEDERATED_REFRESH_TOKEN"
	MetadataNativeSubsystem = "FEDERATED_NATIVE_SUBSYSTEM"
)

const authenticatedWithAttribute = "federated.authenticatedWith"

// AccountID identifies an account in the federated account service.
type AccountID string

func (a AccountID) Type() string   { return ProviderName }
func (a AccountID) Bytes() []byte  { return []byte(a) }
func (a AccountID) IsValid() bool  { return a != "" }
func (a AccountID) String() string { return string(a) }

func (a AccountID) Equal(other graph.CrossPlatformAccountID) bool {
	o, ok := other.(AccountID)
	return ok && o == a
}

// ParseAccountID parses the string form of an account id.
func ParseAccountID(s string) AccountID { return AccountID(s) }

// AccountIDFromBytes parses the byte form, ignoring a trailing NUL.
func AccountIDFromBytes(b []byte) AccountID {
	return AccountID(bytes.TrimRight(b, "\x00"))
}

// LoginKind selects how AccountService.Login authenticates.
type LoginKind int

const (
	LoginExchangeCode LoginKind = iota + 1
	LoginDeveloper
	LoginPersistent
	LoginPassword
)

func (k LoginKind) String() string {
	switch k {
	case LoginExchangeCode:
		return "exchange_code"
	case LoginDeveloper:
		return "developer"
	case LoginPersistent:
		return "persistent"
	case LoginPassword:
		return "password"
	default:
		return "unknown"
	}
}

// Login is an account service credential.
type Login struct {
	Kind  LoginKind
	ID    string
	Token string
}

// ExternalLoginResult is the outcome of signing in with a platform
// credential. Account is set when the credential is linked; otherwise
// ContinuanceToken can be used to link it interactively.
type ExternalLoginResult struct {
	Account          AccountID
	ContinuanceToken graph.ContinuanceToken
}

// InteractiveRequest drives an interactive sign-in. When LinkToken is set the
// signed-in account is linked to the platform credential it was issued for.
type InteractiveRequest struct {
	Credentials graph.Credentials
	LinkToken   graph.ContinuanceToken
}

// Token is a platform-exchangeable token for a signed-in account.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// AccountService is the federated account system. Errors should be
// *graph.BackendError values so nodes can classify them.
type AccountService interface {
	Login(ctx context.Context, login Login) (AccountID, error)
	LoginExternal(ctx context.Context, creds graph.ExternalCredentials) (ExternalLoginResult, error)
	Interactive(ctx context.Context, req InteractiveRequest) (AccountID, error)
	CopyToken(ctx context.Context, account AccountID) (Token, error)
	SignOut(ctx context.Context, account AccountID) error
}
