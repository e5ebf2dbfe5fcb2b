package authgraph

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/internal"
	internalaudit "github.com/MrEthical07/authgraph/internal/audit"
)

const noUserMessage = "The authentication graph completed without signing in a user."

// Engine runs authentication attempts. It is safe for concurrent use; every
// attempt gets its own graph.State.
type Engine struct {
	config   Config
	registry *graph.Registry
	backend  graph.Backend
	logger   *slog.Logger
	prompter graph.Prompter
	metrics  *Metrics
	audit    *internalaudit.Dispatcher

	inflight atomic.Int64
	closed   atomic.Bool
}

// Authenticate starts an attempt and returns immediately. done is invoked
// exactly once, from an arbitrary goroutine, with the outcome. Failures to
// start the attempt, such as an unknown graph, are delivered through done as
// well.
func (e *Engine) Authenticate(ctx context.Context, req Request, done func(*Outcome)) {
	if ctx == nil {
		ctx = context.Background()
	}
	attemptID := internal.NewAttemptID()

	if e.closed.Load() {
		done(&Outcome{AttemptID: attemptID, Err: ErrEngineClosed})
		return
	}

	st, err := e.newState(attemptID, req)
	if err != nil {
		done(&Outcome{AttemptID: attemptID, Provider: req.Provider, Err: err})
		return
	}

	name := req.Graph
	if name == "" {
		name = e.config.Graph.DefaultGraph
	}
	g, resolved, err := e.registry.Get(name, st)
	if err != nil {
		st.Log().Warn("unable to resolve authentication graph", "graph", name, "error", err)
		done(&Outcome{AttemptID: attemptID, Graph: name, Err: err})
		return
	}

	log := st.Log().With("graph", resolved)
	ctx = graph.WithLogger(ctx, log)
	ip := ClientIPFromContext(ctx)
	start := time.Now()

	e.inflight.Add(1)
	e.metrics.Inc(MetricAttemptStarted)
	log.Debug("authentication attempt started")

	graph.Execute(ctx, g, st, func(r graph.Result) {
		defer e.inflight.Add(-1)

		elapsed := time.Since(start)
		e.metrics.Observe(MetricAttemptLatency, elapsed)
		outcome := e.outcome(st, resolved, r)

		if outcome.Err == nil {
			e.metrics.Inc(MetricAttemptSucceeded)
			log.Info("authentication attempt succeeded", "user_id", outcome.UserID, "duration", elapsed)
		} else {
			e.metrics.Inc(MetricAttemptFailed)
			log.Info("authentication attempt failed", "diagnostics", outcome.Diagnostics, "duration", elapsed)
		}
		e.emitAudit(ctx, outcome, ip, elapsed)
		done(outcome)
	})
}

// Run performs an attempt and waits for it. A failed attempt returns the
// outcome together with its *AttemptError. When ctx ends first, Run returns
// ctx.Err() while the attempt runs on to completion in the background.
func (e *Engine) Run(ctx context.Context, req Request) (*Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan *Outcome, 1)
	e.Authenticate(ctx, req, func(o *Outcome) { ch <- o })

	select {
	case o := <-ch:
		return o, o.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting attempts and flushes pending audit events. Attempts
// already running complete normally.
func (e *Engine) Close() {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return
	}
	if n := e.inflight.Load(); n > 0 {
		e.logger.Warn("engine closed with attempts in flight", "attempts", n)
	}
	e.audit.Close()
}

func (e *Engine) settings() graph.Settings {
	gc := e.config.Graph
	return graph.Settings{
		RequireCrossPlatformAccount: gc.RequireCrossPlatformAccount,
		PersistentLoginEnabled:      gc.PersistentLogin,
		AutomatedTesting:            gc.AutomatedTesting,
		DeveloperToolAddress:        gc.DeveloperToolAddress,
		DeveloperToolCredentialName: gc.DeveloperToolCredentialName,
		MaxTransientRetries:         gc.MaxTransientRetries,
		FanOutLimit:                 gc.FanOutLimit,
	}
}

func (e *Engine) newState(attemptID string, req Request) (*graph.State, error) {
	st := graph.NewState(attemptID, e.backend, e.settings())
	st.Logger = e.logger
	st.Prompter = e.prompter
	if req.Prompter != nil {
		st.Prompter = req.Prompter
	}
	if e.metrics.Enabled() {
		st.Observer = e.metrics
	}

	providerName := req.Provider
	if providerName == "" {
		providerName = e.config.Graph.CrossPlatformProvider
	}
	if providerName != "" {
		p, err := e.registry.Provider(providerName)
		if err != nil {
			return nil, fmt.Errorf("cross-platform provider %q: %w", providerName, err)
		}
		st.CrossPlatformProvider = p
	}

	st.ProvidedCredentials = req.Credentials
	st.ExistingUserID = req.ExistingUserID
	st.ExistingExternalCredentials = req.ExistingExternalCredentials
	st.ExistingCrossPlatformAccountID = req.ExistingCrossPlatformAccountID
	for k, v := range req.Metadata {
		st.SetMetadata(k, v)
	}
	return st, nil
}

func (e *Engine) outcome(st *graph.State, resolved string, r graph.Result) *Outcome {
	o := &Outcome{
		AttemptID:   st.AttemptID,
		Graph:       resolved,
		Metadata:    st.MetadataSnapshot(),
		Diagnostics: st.Diagnostics(),
	}
	if st.CrossPlatformProvider != nil {
		o.Provider = st.CrossPlatformProvider.Name()
	}

	if r == graph.Continue && !st.ResultUserID.IsValid() {
		o.Diagnostics = append(o.Diagnostics, noUserMessage)
	}
	if r == graph.Error || !st.ResultUserID.IsValid() {
		o.Err = &AttemptError{AttemptID: st.AttemptID, Graph: resolved, Diagnostics: o.Diagnostics}
		return o
	}

	o.UserID = st.ResultUserID
	o.AuthAttributes = st.ResultAuthAttributes
	o.CrossPlatformAccountID = st.ResultCrossPlatformAccountID
	o.NativeSubsystem = st.ResultNativeSubsystem
	o.ExternalCredentials = st.ResultExternalCredentials
	o.Refresh = st.ResultRefresh
	return o
}
