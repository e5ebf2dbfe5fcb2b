package firstparty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Login client failures. ResponseError wraps the ones that carry a response
// body.
var (
	ErrLoginURLMissing    = errors.New("first party login url not configured")
	ErrLoginUnreachable   = errors.New("unable to connect to login url")
	ErrLoginStatus        = errors.New("non-200 response from login url")
	ErrResponseNotJSON    = errors.New("login response is not json")
	ErrResponseMalformed  = errors.New("login response is not in the expected format")
	ErrResponseZeroUserID = errors.New("login response has a zero user id")
)

// ResponseError is a login failure that carries the response body.
type ResponseError struct {
	Err  error
	Body string
}

func (e *ResponseError) Error() string { return fmt.Sprintf("%v: %q", e.Err, e.Body) }

func (e *ResponseError) Unwrap() error { return e.Err }

// Session is a successful first-party login.
type Session struct {
	AccessToken string
	UserID      AccountID
}

// LoginClient exchanges a username and password for a first-party session.
type LoginClient interface {
	Login(ctx context.Context, username, password string) (Session, error)
}

const maxResponseBytes = 64 << 10

// HTTPLoginClient posts form-encoded credentials to URL and expects a JSON
// object with string "access_token" and "user_id" fields.
type HTTPLoginClient struct {
	URL    string
	Client *http.Client
}

// NewHTTPLoginClient returns a client for loginURL with a bounded timeout.
func NewHTTPLoginClient(loginURL string, timeout time.Duration) *HTTPLoginClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPLoginClient{URL: loginURL, Client: &http.Client{Timeout: timeout}}
}

func (c *HTTPLoginClient) Login(ctx context.Context, username, password string) (Session, error) {
	if strings.TrimSpace(c.URL) == "" {
		return Session{}, ErrLoginURLMissing
	}

	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrLoginUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrLoginUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("%w: status %d", ErrLoginStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrLoginUnreachable, err)
	}
	return parseSession(body)
}

func parseSession(body []byte) (Session, error) {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return Session{}, &ResponseError{Err: ErrResponseNotJSON, Body: string(body)}
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return Session{}, &ResponseError{Err: ErrResponseMalformed, Body: string(body)}
	}
	token, tokenOK := obj["access_token"].(string)
	userID, userOK := obj["user_id"].(string)
	if !tokenOK || !userOK {
		return Session{}, &ResponseError{Err: ErrResponseMalformed, Body: string(body)}
	}

	// Non-numeric ids collapse to zero like any other invalid id.
	n, _ := strconv.ParseInt(strings.TrimSpace(userID), 10, 64)
	if n == 0 {
		return Session{}, ErrResponseZeroUserID
	}
	return Session{AccessToken: token, UserID: AccountID(n)}, nil
}
