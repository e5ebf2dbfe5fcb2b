package graph

// CrossPlatformProvider is a pluggable cross-platform account system. Each
// method returns a fresh sub-graph to embed in a larger graph.
type CrossPlatformProvider interface {
	Name() string
	// ParseAccountID and AccountIDFromBytes return an invalid id, never nil,
	// when the input is malformed.
	ParseAccountID(s string) CrossPlatformAccountID
	AccountIDFromBytes(b []byte) CrossPlatformAccountID

	// InteractiveAuthentication signs in, trying non-interactive sources
	// before prompting.
	InteractiveAuthentication() Node
	// InteractiveOnlyAuthentication prompts without non-interactive
	// shortcuts.
	InteractiveOnlyAuthentication() Node
	// NonInteractiveAuthentication never prompts and completes with Continue
	// even when nothing authenticated. onlyExternal restricts it to the
	// state's available external credentials.
	NonInteractiveAuthentication(onlyExternal bool) Node
	// UpgradeCurrentAccount binds the state's existing user to a provider
	// account, failing with a conflict diagnostic when that account already
	// belongs to a different user.
	UpgradeCurrentAccount() Node
	// LinkUnusedExternalCredentials binds still-unbound external credentials
	// to the authenticated account. It always completes with Continue.
	LinkUnusedExternalCredentials() Node
	// NonInteractiveDeauthentication signs out any provider session in the
	// state before completing.
	NonInteractiveDeauthentication() Node
	// AutomatedTestingAuthentication is the deterministic sign-in used by
	// test harnesses.
	AutomatedTestingAuthentication() Node
}
