package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event records the outcome of one authentication attempt.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	AttemptID string    `json:"attempt_id"`
	// Graph is the graph that actually ran, after resolvers.
	Graph    string `json:"graph"`
	Provider string `json:"provider,omitempty"`
	Success  bool   `json:"success"`
	UserID   string `json:"user_id,omitempty"`
	// CrossPlatformAccountID is empty when the attempt did not involve a
	// cross-platform account.
	CrossPlatformAccountID string            `json:"cross_platform_account_id,omitempty"`
	IP                     string            `json:"ip,omitempty"`
	Duration               time.Duration     `json:"duration_ns"`
	Diagnostics            []string          `json:"diagnostics,omitempty"`
	Metadata               map[string]string `json:"metadata,omitempty"`
}

// Sink receives audit events from the dispatcher goroutine.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink forwards events to a buffered channel for in-process consumers.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{events: make(chan Event, max(buffer, 1))}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event { return s.events }

// JSONWriterSink writes one JSON document per event, newline separated.
// Encoding failures are dropped.
type JSONWriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	if w == nil {
		return &JSONWriterSink{}
	}
	return &JSONWriterSink{enc: json.NewEncoder(w)}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.enc == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(event)
}
