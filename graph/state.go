package graph

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Settings is the per-attempt configuration snapshot.
type Settings struct {
	RequireCrossPlatformAccount bool
	PersistentLoginEnabled      bool
	AutomatedTesting            bool
	DeveloperToolAddress        string
	DeveloperToolCredentialName string
	// MaxTransientRetries caps node-local retries of transient backend
	// failures. Zero means unbounded.
	MaxTransientRetries int
	// FanOutLimit bounds concurrent sub-operations in FanOut. Zero means
	// unbounded.
	FanOutLimit int
}

// SignInChoice is the answer to the sign-in-or-create prompt.
type SignInChoice int

const (
	SignInChoiceNone SignInChoice = iota
	SignInChoiceSignIn
	SignInChoiceCreateAccount
)

// SwitchChoice is the answer to the switch-to-cross-platform prompt.
type SwitchChoice int

const (
	SwitchChoiceNone SwitchChoice = iota
	SwitchChoiceSwitchToThisAccount
	SwitchChoiceLinkADifferentAccount
)

// Prompter presents choices to the user. Implementations block until the
// user answers or ctx is done.
type Prompter interface {
	PromptSignInOrCreate(ctx context.Context, st *State) (SignInChoice, error)
	PromptSwitchAccount(ctx context.Context, account CrossPlatformAccountID) (SwitchChoice, error)
}

// Observer receives run events for metrics. All methods are called on the
// run's logical thread.
type Observer interface {
	CandidateAdded(c Candidate)
	CleanupFinished(node string, r Result)
	RetryScheduled(node string, attempt int)
}

// State is the mutable context of one authentication attempt. It is owned by
// the run and mutated only by the currently executing node.
type State struct {
	AttemptID string
	Settings  Settings
	Backend   Backend
	Logger    *slog.Logger
	Prompter  Prompter
	Observer  Observer

	ExistingUserID                 UserID
	ExistingExternalCredentials    ExternalCredentials
	ExistingCrossPlatformAccountID CrossPlatformAccountID
	ProvidedCredentials            Credentials

	CrossPlatformProvider               CrossPlatformProvider
	AuthenticatedCrossPlatformAccountID CrossPlatformAccountID
	ExternalContinuanceToken            ContinuanceToken

	AvailableExternalCredentials []ExternalCredentials

	LastSignInChoice SignInChoice
	LastSwitchChoice SwitchChoice

	ResultUserID                 UserID
	ResultAuthAttributes         map[string]string
	ResultRefresh                RefreshFunc
	ResultExternalCredentials    ExternalCredentials
	ResultCrossPlatformAccountID CrossPlatformAccountID
	ResultNativeSubsystem        string

	attemptedDeveloperNames map[string]struct{}
	metadata                map[string]any
	candidates              []Candidate
	selected                Candidate
	hasSelected             bool
	diagnostics             []string
	cleanup                 []Node
	log                     *slog.Logger
}

// NewState returns a state bound to backend.
func NewState(attemptID string, backend Backend, settings Settings) *State {
	return &State{
		AttemptID:            attemptID,
		Backend:              backend,
		Settings:             settings,
		ResultAuthAttributes: map[string]string{},
	}
}

// Log returns the attempt logger.
func (s *State) Log() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	base := s.Logger
	if base == nil {
		base = slog.Default()
	}
	if s.AttemptID != "" {
		base = base.With("attempt_id", s.AttemptID)
	}
	s.log = base
	return s.log
}

/* ==== DIAGNOSTICS ==== */

// AddDiagnostic appends a user-facing failure explanation.
func (s *State) AddDiagnostic(msg string) {
	s.diagnostics = append(s.diagnostics, msg)
	s.Log().Debug("diagnostic recorded", "message", msg)
}

func (s *State) AddDiagnosticf(format string, args ...any) {
	s.AddDiagnostic(fmt.Sprintf(format, args...))
}

// Diagnostics returns a copy of the diagnostic list in insertion order.
func (s *State) Diagnostics() []string {
	return slices.Clone(s.diagnostics)
}

/* ==== CANDIDATES ==== */

// AddCandidate appends c. It panics when c is not selectable.
func (s *State) AddCandidate(c Candidate) {
	if !c.Selectable() {
		panic(fmt.Sprintf("graph: candidate %q has neither a user id nor a continuance token", c.DisplayName))
	}
	s.candidates = append(s.candidates, c)
	if s.Observer != nil {
		s.Observer.CandidateAdded(c)
	}
}

// AddCandidateFromLogin records the outcome of exchanging creds with the
// backend as a candidate and returns it.
func (s *State) AddCandidateFromLogin(res LoginResult, creds ExternalCredentials, typ CandidateType, account CrossPlatformAccountID, refresh RefreshFunc) Candidate {
	c := Candidate{
		DisplayName:            creds.ProviderDisplayName(),
		AuthAttributes:         creds.AuthAttributes(),
		UserID:                 res.User,
		ContinuanceToken:       res.ContinuanceToken,
		Type:                   typ,
		CrossPlatformAccountID: account,
		Refresh:                refresh,
		ExternalCredentials:    creds,
		NativeSubsystem:        creds.NativeSubsystem(),
	}
	s.AddCandidate(c)
	return c
}

// Candidates returns a copy of the candidate list.
func (s *State) Candidates() []Candidate {
	return slices.Clone(s.candidates)
}

// RemoveCandidates deletes every candidate matching pred and returns them.
func (s *State) RemoveCandidates(pred func(Candidate) bool) []Candidate {
	var removed []Candidate
	kept := s.candidates[:0]
	for _, c := range s.candidates {
		if pred(c) {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	clear(s.candidates[len(kept):])
	s.candidates = kept
	return removed
}

// ClearCandidates drops every candidate and any selection.
func (s *State) ClearCandidates() {
	s.candidates = nil
	s.selected = Candidate{}
	s.hasSelected = false
}

// Select marks c as the candidate to finalize. Selecting twice, or selecting
// an unselectable candidate, panics.
func (s *State) Select(c Candidate) {
	if s.hasSelected {
		panic("graph: a candidate has already been selected")
	}
	if !c.Selectable() {
		panic(fmt.Sprintf("graph: candidate %q is not selectable", c.DisplayName))
	}
	s.selected = c
	s.hasSelected = true
}

func (s *State) HasSelected() bool { return s.hasSelected }

// Selected returns the selected candidate. It panics when none is selected.
func (s *State) Selected() Candidate {
	if !s.hasSelected {
		panic("graph: no candidate selected")
	}
	return s.selected
}

/* ==== CLEANUP ==== */

// AddCleanup registers n to run if the attempt ends with Error. Cleanup
// nodes run in registration order.
func (s *State) AddCleanup(n Node) {
	s.cleanup = append(s.cleanup, n)
}

// PendingCleanup returns the number of registered cleanup nodes.
func (s *State) PendingCleanup() int { return len(s.cleanup) }

/* ==== METADATA ==== */

func (s *State) SetMetadata(key string, value any) {
	if s.metadata == nil {
		s.metadata = map[string]any{}
	}
	s.metadata[key] = value
}

func (s *State) Metadata(key string) (any, bool) {
	v, ok := s.metadata[key]
	return v, ok
}

// MetadataString returns the string stored at key, or "".
func (s *State) MetadataString(key string) string {
	v, _ := s.metadata[key].(string)
	return v
}

func (s *State) DeleteMetadata(key string) {
	delete(s.metadata, key)
}

// MetadataSnapshot returns a shallow copy of the metadata map.
func (s *State) MetadataSnapshot() map[string]any {
	return maps.Clone(s.metadata)
}

/* ==== RESULTS ==== */

// MergeResultAttributes copies attrs into the result attribute set.
func (s *State) MergeResultAttributes(attrs map[string]string) {
	if s.ResultAuthAttributes == nil {
		s.ResultAuthAttributes = map[string]string{}
	}
	maps.Copy(s.ResultAuthAttributes, attrs)
}

func (s *State) SetResultAttribute(key, value string) {
	if s.ResultAuthAttributes == nil {
		s.ResultAuthAttributes = map[string]string{}
	}
	s.ResultAuthAttributes[key] = value
}

/* ==== DEVELOPER CREDENTIALS ==== */

// MarkDeveloperCredentialAttempted records name and reports whether it was
// new.
func (s *State) MarkDeveloperCredentialAttempted(name string) bool {
	if s.attemptedDeveloperNames == nil {
		s.attemptedDeveloperNames = map[string]struct{}{}
	}
	if _, ok := s.attemptedDeveloperNames[name]; ok {
		return false
	}
	s.attemptedDeveloperNames[name] = struct{}{}
	return true
}

// RetryAllowed reports whether attempt (1-based) is within the transient
// retry budget.
func (s *State) RetryAllowed(attempt int) bool {
	return s.Settings.MaxTransientRetries <= 0 || attempt <= s.Settings.MaxTransientRetries
}

func (s *State) notifyRetry(node string, attempt int) {
	if s.Observer != nil {
		s.Observer.RetryScheduled(node, attempt)
	}
}

// NoteRetry reports a scheduled retry to the observer and the log.
func (s *State) NoteRetry(node string, attempt int, err error) {
	s.Log().Warn("transient backend failure, retrying", "node", node, "attempt", attempt, "error", err)
	s.notifyRetry(node, attempt)
}
