package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/MrEthical07/authgraph"
)

// ClientIP attaches the caller address to the request context. When
// trustProxy is set the first X-Forwarded-For entry wins over RemoteAddr;
// only enable it behind a proxy that overwrites the header.
func ClientIP(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := clientAddress(r, trustProxy); ip != "" {
				r = r.WithContext(authgraph.WithClientIP(r.Context(), ip))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddress(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return ""
}
