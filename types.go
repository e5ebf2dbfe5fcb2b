package authgraph

import (
	"io"

	"github.com/MrEthical07/authgraph/graph"
	internalaudit "github.com/MrEthical07/authgraph/internal/audit"
)

// Request describes one authentication attempt.
type Request struct {
	// Graph names the graph or resolver to run. Empty selects the configured
	// default graph.
	Graph string
	// Provider names the cross-platform provider to attach. Empty selects the
	// configured provider, if any.
	Provider string
	// Credentials are the caller-supplied credentials, interpreted by the
	// graph that runs.
	Credentials graph.Credentials

	// The Existing fields describe the identity the caller is already signed
	// in with, if any.
	ExistingUserID                 graph.UserID
	ExistingExternalCredentials    graph.ExternalCredentials
	ExistingCrossPlatformAccountID graph.CrossPlatformAccountID

	// Metadata seeds the attempt's metadata, for example a persisted
	// refresh token.
	Metadata map[string]any
	// Prompter overrides the engine prompter for this attempt.
	Prompter graph.Prompter
}

// Outcome is the result of one attempt.
type Outcome struct {
	AttemptID string
	// Graph is the graph that ran, after resolvers.
	Graph    string
	Provider string

	UserID                 graph.UserID
	AuthAttributes         map[string]string
	CrossPlatformAccountID graph.CrossPlatformAccountID
	NativeSubsystem        string
	ExternalCredentials    graph.ExternalCredentials
	// Refresh re-validates the credential the user signed in with. It is nil
	// for credentials that cannot be refreshed.
	Refresh graph.RefreshFunc
	// Metadata is the attempt metadata after the run. Providers store values
	// worth persisting here, such as a refresh token.
	Metadata map[string]any

	Diagnostics []string
	// Err is nil on success. A failed graph yields an *AttemptError.
	Err error
}

// Succeeded reports whether the attempt signed a user in.
func (o *Outcome) Succeeded() bool {
	return o != nil && o.Err == nil && o.UserID.IsValid()
}

// GraphInfo describes a registered graph or resolver.
type GraphInfo = graph.GraphInfo

// AuditEvent is the record emitted for every completed attempt.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events.
type AuditSink = internalaudit.Sink

// NoOpSink discards audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink delivers audit events on a channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes audit events as JSON lines.
type JSONWriterSink = internalaudit.JSONWriterSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
