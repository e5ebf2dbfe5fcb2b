package middleware

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authgraph"
	"github.com/MrEthical07/authgraph/jwt"
)

func newManager(t *testing.T) *jwt.Manager {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	m, err := jwt.NewManager(jwt.Config{
		TTL:           time.Minute,
		SigningMethod: jwt.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	require.NoError(t, err)
	return m
}

func TestRequireIdentity(t *testing.T) {
	m := newManager(t)
	token, err := m.Issue("account-1", "Tester")
	require.NoError(t, err)

	var seen string
	h := RequireIdentity(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		seen = claims.Subject
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"empty token", "Bearer  ", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "account-1", seen)
			}
		})
	}
}

func TestRequireIdentityWithoutVerifier(t *testing.T) {
	h := RequireIdentity(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remote     string
		forwarded  string
		trustProxy bool
		want       string
	}{
		{"remote addr", "192.0.2.7:5123", "", false, "192.0.2.7"},
		{"forwarded ignored", "192.0.2.7:5123", "203.0.113.9", false, "192.0.2.7"},
		{"forwarded trusted", "192.0.2.7:5123", "203.0.113.9, 10.0.0.1", true, "203.0.113.9"},
		{"bad forwarded falls back", "192.0.2.7:5123", "junk", true, "192.0.2.7"},
		{"ipv6", "[2001:db8::1]:443", "", false, "2001:db8::1"},
		{"unparseable", "pipe", "", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			h := ClientIP(tc.trustProxy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = authgraph.ClientIPFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tc.want, got)
		})
	}
}
