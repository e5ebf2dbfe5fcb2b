package graph

import "fmt"

// CandidateType tags where a candidate came from.
type CandidateType int

const (
	CandidateGeneric CandidateType = iota
	CandidateCrossPlatform
	CandidateDeviceID
	CandidatePlatformLinked
)

func (t CandidateType) String() string {
	switch t {
	case CandidateGeneric:
		return "generic"
	case CandidateCrossPlatform:
		return "cross-platform"
	case CandidateDeviceID:
		return "device-id"
	case CandidatePlatformLinked:
		return "platform-linked"
	default:
		return fmt.Sprintf("candidate-type(%d)", int(t))
	}
}

// Candidate is one identity an attempt could resolve to.
//
// A candidate is selectable when it carries a valid user id (the identity
// already exists) or a valid continuance token (the identity can be created).
type Candidate struct {
	DisplayName            string
	AuthAttributes         map[string]string
	UserID                 UserID
	ContinuanceToken       ContinuanceToken
	Type                   CandidateType
	CrossPlatformAccountID CrossPlatformAccountID
	Refresh                RefreshFunc
	ExternalCredentials    ExternalCredentials
	NativeSubsystem        string
}

func (c Candidate) Selectable() bool {
	return c.UserID.IsValid() || c.ContinuanceToken.IsValid()
}
