package graph

import (
	"context"
	"errors"
	"fmt"
)

// Credential types understood by the platform backend.
const (
	CredentialDeviceIDAccessToken = "DEVICEID_ACCESS_TOKEN"
	CredentialOpenIDAccessToken   = "OPENID_ACCESS_TOKEN"
	CredentialFederated           = "FEDERATED"
)

// ResultCode classifies backend failures.
type ResultCode int

const (
	// CodeUnexpected is the transient failure class. Nodes may retry it.
	CodeUnexpected ResultCode = iota + 1
	CodeDuplicateNotAllowed
	CodeNotFound
	CodeInvalidCredentials
	CodeUnavailable
	CodeRateLimited
)

func (c ResultCode) String() string {
	switch c {
	case CodeUnexpected:
		return "unexpected_error"
	case CodeDuplicateNotAllowed:
		return "duplicate_not_allowed"
	case CodeNotFound:
		return "not_found"
	case CodeInvalidCredentials:
		return "invalid_credentials"
	case CodeUnavailable:
		return "unavailable"
	case CodeRateLimited:
		return "rate_limited"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}

// BackendError is the error type returned by Backend implementations.
type BackendError struct {
	Op   string
	Code ResultCode
	Err  error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError builds a BackendError.
func NewBackendError(op string, code ResultCode, err error) *BackendError {
	return &BackendError{Op: op, Code: code, Err: err}
}

// CodeOf extracts the ResultCode of err. Errors that are not BackendErrors
// are reported as CodeUnexpected.
func CodeOf(err error) ResultCode {
	if err == nil {
		return 0
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeUnexpected
}

// IsTransient reports whether err belongs to the retryable failure class.
func IsTransient(err error) bool {
	return err != nil && CodeOf(err) == CodeUnexpected
}

var (
	ErrDeviceIDUnsupported = errors.New("backend does not support device ids")
	ErrLinkUnsupported     = errors.New("backend does not support account linking")
	ErrEmptyLoginResult    = errors.New("login returned neither a user id nor a continuance token")
)

// LoginRequest exchanges one credential with the platform backend.
type LoginRequest struct {
	Type  string
	ID    string
	Token string
}

// LoginResult is a successful exchange. Exactly one of User and
// ContinuanceToken is set: User when the credential is bound to an account,
// ContinuanceToken when it is valid but unbound.
type LoginResult struct {
	User             UserID
	ContinuanceToken ContinuanceToken
}

// Valid reports whether r can back a candidate.
func (r LoginResult) Valid() bool {
	return r.User.IsValid() || r.ContinuanceToken.IsValid()
}

// CheckLogin passes a Login outcome through, turning a successful exchange
// with an empty result into a CodeUnexpected error.
func CheckLogin(res LoginResult, err error) (LoginResult, error) {
	if err == nil && !res.Valid() {
		return res, NewBackendError("login", CodeUnexpected, ErrEmptyLoginResult)
	}
	return res, err
}

// Backend is the platform identity service.
type Backend interface {
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	CreateUser(ctx context.Context, token ContinuanceToken) (UserID, error)
	SignOut(ctx context.Context, user UserID) error
}

// DeviceIDBackend is implemented by backends that can mint anonymous device
// credentials.
type DeviceIDBackend interface {
	CreateDeviceID(ctx context.Context, deviceModel string) error
}

// LinkBackend is implemented by backends that can bind a continuance token to
// an existing account.
type LinkBackend interface {
	LinkAccount(ctx context.Context, user UserID, token ContinuanceToken) error
}
