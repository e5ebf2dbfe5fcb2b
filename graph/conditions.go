package graph

// Always holds for every state.
func Always(*State) bool { return true }

// Unauthenticated holds when the caller supplied no existing user.
func Unauthenticated(st *State) bool {
	return !st.ExistingUserID.IsValid()
}

func HasCrossPlatformProvider(st *State) bool {
	return st.CrossPlatformProvider != nil
}

func RequireCrossPlatformAccount(st *State) bool {
	return st.Settings.RequireCrossPlatformAccount
}

// CrossPlatformAccountIsValid holds once a provider account has been
// authenticated during this attempt.
func CrossPlatformAccountIsValid(st *State) bool {
	return AccountIDValid(st.AuthenticatedCrossPlatformAccountID)
}

// CrossPlatformAccountIsValidWithBackingIdentity holds when a provider
// account is authenticated and no cross-platform candidate is still waiting
// on a continuance token, i.e. the account already has a platform identity.
func CrossPlatformAccountIsValidWithBackingIdentity(st *State) bool {
	if !CrossPlatformAccountIsValid(st) {
		return false
	}
	for _, c := range st.candidates {
		if c.Type == CandidateCrossPlatform && c.ContinuanceToken.IsValid() {
			return false
		}
	}
	return true
}

func countCandidates(st *State) (withUser, withToken int) {
	for _, c := range st.candidates {
		if c.UserID.IsValid() {
			withUser++
		}
		if c.ContinuanceToken.IsValid() {
			withToken++
		}
	}
	return withUser, withToken
}

// OneSuccessfulCandidate holds when exactly one candidate has a user id.
func OneSuccessfulCandidate(st *State) bool {
	n, _ := countCandidates(st)
	return n == 1
}

func MoreThanOneSuccessfulCandidate(st *State) bool {
	n, _ := countCandidates(st)
	return n > 1
}

// NoSuccessfulWithContinuance holds when no candidate has a user id and at
// least one has a continuance token.
func NoSuccessfulWithContinuance(st *State) bool {
	users, tokens := countCandidates(st)
	return users == 0 && tokens > 0
}

func NoSuccessfulNoContinuance(st *State) bool {
	users, tokens := countCandidates(st)
	return users == 0 && tokens == 0
}

// CrossPlatformProvidedContinuance holds when a cross-platform candidate has
// a continuance token but no user id.
func CrossPlatformProvidedContinuance(st *State) bool {
	for _, c := range st.candidates {
		if c.Type == CandidateCrossPlatform && !c.UserID.IsValid() && c.ContinuanceToken.IsValid() {
			return true
		}
	}
	return false
}

func IsSwitchToCrossPlatformAccount(st *State) bool {
	return st.LastSwitchChoice == SwitchChoiceSwitchToThisAccount
}

func IsLinkADifferentAccount(st *State) bool {
	return st.LastSwitchChoice == SwitchChoiceLinkADifferentAccount
}

func AnyCandidates(st *State) bool {
	return len(st.candidates) > 0
}

// CanUpgradeToCrossPlatformAccount holds for an existing user without a
// cross-platform account when a provider is configured.
func CanUpgradeToCrossPlatformAccount(st *State) bool {
	return st.ExistingUserID.IsValid() && !AccountIDValid(st.ExistingCrossPlatformAccountID) && st.CrossPlatformProvider != nil
}

// LoginComplete holds once a result identity has been committed.
func LoginComplete(st *State) bool {
	return st.ResultUserID.IsValid()
}

// SignInChoiceIs returns a condition matching the last sign-in answer.
func SignInChoiceIs(choice SignInChoice) Condition {
	return func(st *State) bool { return st.LastSignInChoice == choice }
}

// Not negates cond.
func Not(cond Condition) Condition {
	return func(st *State) bool { return !cond(st) }
}
