package firstparty

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/MrEthical07/authgraph/graph"
)

// ProviderName is the registry name of the first-party provider.
const ProviderName = "SimpleFirstParty"

// AccountID is a first-party user id. Zero is invalid.
type AccountID int64

func (a AccountID) Type() string   { return ProviderName }
func (a AccountID) IsValid() bool  { return a != 0 }
func (a AccountID) String() string { return strconv.FormatInt(int64(a), 10) }

// Bytes is the decimal form followed by a NUL terminator.
func (a AccountID) Bytes() []byte {
	return append([]byte(a.String()), 0)
}

func (a AccountID) Equal(other graph.CrossPlatformAccountID) bool {
	o, ok := other.(AccountID)
	return ok && o == a
}

// ParseAccountID parses a decimal user id. Malformed input yields the
// invalid zero id.
func ParseAccountID(s string) AccountID {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return AccountID(n)
}

func AccountIDFromBytes(b []byte) AccountID {
	return ParseAccountID(string(bytes.TrimRight(b, "\x00")))
}
