package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// NewAttemptID returns a time-sortable attempt id. Ids minted in the same
// millisecond remain strictly increasing.
func NewAttemptID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// AttemptTime extracts the creation time of an attempt id.
func AttemptTime(id string) (time.Time, bool) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(parsed.Time()), true
}

// CredentialKey derives a stable, non-reversible key for a credential so
// that tokens never appear in Redis keys or logs.
func CredentialKey(typ, id, token string) string {
	h := sha256.New()
	for _, part := range []string{typ, id, token} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)[:18])
}
