package autotest

import (
	"bytes"

	"github.com/MrEthical07/authgraph/graph"
)

// ProviderName is the registry name of the automated testing provider.
const ProviderName = "AutomatedTesting"

// AccountID is an automated testing account. Every value, including the
// empty string, is valid.
type AccountID string

func (a AccountID) Type() string   { return ProviderName }
func (a AccountID) IsValid() bool  { return true }
func (a AccountID) String() string { return string(a) }
func (a AccountID) Bytes() []byte  { return append([]byte(a), 0) }

func (a AccountID) Equal(other graph.CrossPlatformAccountID) bool {
	o, ok := other.(AccountID)
	return ok && o == a
}

func ParseAccountID(s string) AccountID { return AccountID(s) }

func AccountIDFromBytes(b []byte) AccountID {
	return AccountID(bytes.TrimRight(b, "\x00"))
}
