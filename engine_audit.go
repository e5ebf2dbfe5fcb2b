package authgraph

import (
	"context"
	"time"

	"github.com/MrEthical07/authgraph/graph"
)

func (e *Engine) emitAudit(ctx context.Context, o *Outcome, ip string, elapsed time.Duration) {
	if e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp:   time.Now().UTC(),
		AttemptID:   o.AttemptID,
		Graph:       o.Graph,
		Provider:    o.Provider,
		Success:     o.Err == nil,
		UserID:      o.UserID.String(),
		IP:          ip,
		Duration:    elapsed,
		Diagnostics: o.Diagnostics,
	}
	if graph.AccountIDValid(o.CrossPlatformAccountID) {
		event.CrossPlatformAccountID = o.CrossPlatformAccountID.String()
	}
	if o.NativeSubsystem != "" {
		event.Metadata = map[string]string{"native_subsystem": o.NativeSubsystem}
	}
	// The attempt context may already be finished; audit delivery must not
	// depend on it.
	e.audit.Emit(context.WithoutCancel(ctx), event)
}
