package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/authgraph/jwt"
)

type identityContextKey struct{}

// IdentityFromContext returns the claims stored by RequireIdentity.
func IdentityFromContext(ctx context.Context) (*jwt.IdentityClaims, bool) {
	claims, ok := ctx.Value(identityContextKey{}).(*jwt.IdentityClaims)
	return claims, ok
}

// RequireIdentity rejects requests without a bearer token that verifier
// accepts.
func RequireIdentity(verifier *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
