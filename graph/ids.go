package graph

import (
	"context"
	"errors"
	"maps"
)

// UserID identifies an account in the platform backend. NoUserID is the
// explicit "none" value.
type UserID string

// NoUserID is the absent user id.
const NoUserID UserID = ""

func (id UserID) IsValid() bool { return id != NoUserID }

func (id UserID) String() string { return string(id) }

// ContinuanceToken is issued by a backend when a credential is valid but not
// yet bound to an account. It can later be exchanged for a new account or
// linked to an existing one.
type ContinuanceToken string

// NoContinuanceToken is the absent token.
const NoContinuanceToken ContinuanceToken = ""

func (t ContinuanceToken) IsValid() bool { return t != NoContinuanceToken }

// CrossPlatformAccountID is an opaque identity issued by a cross-platform
// provider. A nil value means "unresolved".
type CrossPlatformAccountID interface {
	// Type is the provider name that issued the id.
	Type() string
	Bytes() []byte
	IsValid() bool
	String() string
	// Equal compares by canonical id. Ids of different providers are never
	// equal.
	Equal(other CrossPlatformAccountID) bool
}

// AccountIDValid reports whether id is non-nil and valid.
func AccountIDValid(id CrossPlatformAccountID) bool {
	return id != nil && id.IsValid()
}

// SameAccount reports whether a and b refer to the same provider account.
func SameAccount(a, b CrossPlatformAccountID) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equal(b)
}

// AccountIDString renders id for diagnostics.
func AccountIDString(id CrossPlatformAccountID) string {
	if id == nil {
		return "Unavailable"
	}
	return id.String()
}

// Credentials is the credential triple supplied by the caller.
type Credentials struct {
	Type  string
	ID    string
	Token string
}

// ErrRefreshUnsupported is returned by credentials that cannot be refreshed.
var ErrRefreshUnsupported = errors.New("credential refresh unsupported")

// ExternalCredentials is a credential obtained from a platform or provider
// that can be exchanged with a backend.
type ExternalCredentials interface {
	ProviderDisplayName() string
	Type() string
	ID() string
	Token() string
	AuthAttributes() map[string]string
	NativeSubsystem() string
	Refresh(ctx context.Context) error
}

// StaticCredentials is an ExternalCredentials value that never changes.
type StaticCredentials struct {
	DisplayName string
	CredType    string
	CredID      string
	CredToken   string
	Attributes  map[string]string
	Subsystem   string
}

func (c *StaticCredentials) ProviderDisplayName() string { return c.DisplayName }
func (c *StaticCredentials) Type() string                { return c.CredType }
func (c *StaticCredentials) ID() string                  { return c.CredID }
func (c *StaticCredentials) Token() string               { return c.CredToken }
func (c *StaticCredentials) NativeSubsystem() string     { return c.Subsystem }

func (c *StaticCredentials) AuthAttributes() map[string]string {
	return maps.Clone(c.Attributes)
}

func (c *StaticCredentials) Refresh(context.Context) error {
	return ErrRefreshUnsupported
}

// RefreshResult is the attribute delta produced by a refresh.
type RefreshResult struct {
	Set    map[string]string
	Delete []string
}

// RefreshFunc re-validates an authenticated identity. existing is the
// attribute set currently attached to the user.
type RefreshFunc func(ctx context.Context, existing map[string]string) (RefreshResult, error)

// DiffAttributes sets every attribute of next and deletes attributes of
// existing that next no longer carries.
func DiffAttributes(existing, next map[string]string) RefreshResult {
	out := RefreshResult{Set: maps.Clone(next)}
	if out.Set == nil {
		out.Set = map[string]string{}
	}
	for k := range existing {
		if _, ok := next[k]; !ok {
			out.Delete = append(out.Delete, k)
		}
	}
	return out
}
