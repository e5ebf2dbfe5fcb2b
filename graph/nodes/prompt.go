package nodes

import (
	"context"
	"strings"

	"github.com/MrEthical07/authgraph/graph"
)

// Provided credential ids recognized by the sign-in prompt in automated
// testing mode.
const (
	AutomationUpgradeFlowID  = "CreateOnDemand:CrossPlatformUpgradeFlow"
	AutomationOptionalFlowID = "CreateOnDemand:CrossPlatformOptionalFlow"
)

// AutomationSignInChoice is the answer the sign-in prompt gives for
// AutomationOptionalFlowID. Tests flip it to drive both branches.
var AutomationSignInChoice = graph.SignInChoiceCreateAccount

const noPrompterMessage = "There is no prompter configured to ask the user how to continue."

// PromptToSignInOrCreateAccount asks whether the user wants to sign in to an
// existing cross-platform account or create a new one.
func PromptToSignInOrCreateAccount() graph.Node {
	return graph.Named("PromptToSignInOrCreateAccount", func(ctx context.Context, st *graph.State, done graph.Done) {
		if st.Settings.AutomatedTesting {
			st.LastSignInChoice = automatedSignInChoice(st.ProvidedCredentials.ID)
			done(graph.Continue)
			return
		}
		if st.Prompter == nil {
			st.AddDiagnostic(noPrompterMessage)
			done(graph.Error)
			return
		}
		prompter := st.Prompter
		go func() {
			choice, err := prompter.PromptSignInOrCreate(ctx, st)
			if err != nil {
				st.AddDiagnosticf("Unable to ask the user to sign in or create an account: %v", err)
				done(graph.Error)
				return
			}
			st.LastSignInChoice = choice
			done(graph.Continue)
		}()
	})
}

func automatedSignInChoice(id string) graph.SignInChoice {
	switch {
	case strings.EqualFold(id, AutomationUpgradeFlowID):
		return graph.SignInChoiceCreateAccount
	case strings.EqualFold(id, AutomationOptionalFlowID):
		return AutomationSignInChoice
	default:
		return graph.SignInChoiceSignIn
	}
}

// PromptToSwitchToCrossPlatformAccount asks whether the user wants to switch
// to the cross-platform account that was just authenticated or link a
// different one.
func PromptToSwitchToCrossPlatformAccount() graph.Node {
	return graph.Named("PromptToSwitchToCrossPlatformAccount", func(ctx context.Context, st *graph.State, done graph.Done) {
		if st.Prompter == nil {
			st.AddDiagnostic(noPrompterMessage)
			done(graph.Error)
			return
		}
		prompter, account := st.Prompter, st.AuthenticatedCrossPlatformAccountID
		go func() {
			choice, err := prompter.PromptSwitchAccount(ctx, account)
			if err != nil {
				st.AddDiagnosticf("Unable to ask the user to switch accounts: %v", err)
				done(graph.Error)
				return
			}
			st.LastSwitchChoice = choice
			done(graph.Continue)
		}()
	})
}
