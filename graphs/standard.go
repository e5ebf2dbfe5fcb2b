package graphs

import (
	"strings"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
	"github.com/MrEthical07/authgraph/jwt"
	"github.com/MrEthical07/authgraph/provider/autotest"
	"github.com/MrEthical07/authgraph/provider/federated"
)

// Names of the standard graphs.
const (
	Default                      = "Default"
	DefaultCrossPlatformFallback = "DefaultCrossPlatformFallback"
	AlwaysFail                   = "AlwaysFail"
	CrossPlatformOnly            = "CrossPlatformOnly"
	Anonymous                    = "Anonymous"
	AutomatedTesting             = "AutomatedTesting"
	DeveloperTool                = "DevAuthTool"
)

const (
	noGraphMessage    = "There is no authentication graph that can sign in a user in this environment."
	noProviderMessage = "There is no cross-platform account provider configured."
)

// AlwaysFailGraph fails every attempt.
func AlwaysFailGraph() graph.Graph {
	return graph.GraphFunc(func(*graph.State) graph.Node {
		return nodes.Fail(noGraphMessage)
	})
}

// CrossPlatformOnlyGraph signs in exclusively through the configured
// cross-platform provider.
func CrossPlatformOnlyGraph() graph.Graph {
	return graph.GraphFunc(func(st *graph.State) graph.Node {
		if st.CrossPlatformProvider == nil {
			return nodes.Fail(noProviderMessage)
		}
		return graph.Forever().
			Add(nodes.BailIfAlreadyAuthenticated()).
			Add(st.CrossPlatformProvider.InteractiveAuthentication()).
			Add(nodes.SelectCrossPlatformAccount(nodes.PermitContinuance)).
			Add(nodes.LoginWithSelected())
	})
}

// AnonymousGraph signs in with a device id credential, creating one when the
// device has none yet.
func AnonymousGraph() graph.Graph {
	return graph.GraphFunc(func(*graph.State) graph.Node {
		existing := graph.UntilLoginComplete("").
			Add(nodes.SelectOnly()).
			Add(nodes.LoginWithSelected())
		create := graph.UntilLoginComplete("").
			Add(nodes.CreateDeviceID()).
			Add(nodes.TryDeviceIDAuthentication()).
			Add(nodes.SelectOnly()).
			Add(nodes.LoginWithSelected())

		return graph.Forever().
			Add(nodes.BailIfAlreadyAuthenticated()).
			Add(nodes.TryDeviceIDAuthentication()).
			Add(graph.NewConditional().
				If(graph.AnyCandidates, existing).
				Else(create))
	})
}

// AutomatedTestingGraph signs in test harness users. A provided credential id
// of the form "CreateOnDemand:<test>" gets a fresh platform account issued by
// issuer; any other id goes through the cross-platform provider's automated
// testing sequence.
func AutomatedTestingGraph(issuer *jwt.Manager) graph.Graph {
	return graph.GraphFunc(func(st *graph.State) graph.Node {
		if strings.HasPrefix(st.ProvidedCredentials.ID, autotest.CreateOnDemandPrefix) {
			return graph.Forever().
				Add(nodes.BailIfAlreadyAuthenticated()).
				Add(autotest.IssueJWT(issuer)).
				Add(autotest.PerformOpenIDLogin()).
				Add(nodes.SelectByDisplayName(autotest.DisplayName)).
				Add(nodes.LoginWithSelected())
		}
		if st.CrossPlatformProvider == nil {
			return nodes.Fail("The AutomatedTesting graph requires a cross-platform account provider when the " +
				"credential id is not a CreateOnDemand: test name.")
		}
		return graph.Forever().
			Add(nodes.BailIfAlreadyAuthenticated()).
			Add(graph.UntilLoginComplete("").
				Add(st.CrossPlatformProvider.AutomatedTestingAuthentication()).
				Add(nodes.SelectCrossPlatformAccount(nodes.PermitContinuance)).
				Add(nodes.LoginWithSelected()))
	})
}

const developerToolMessage = "The credential provided by the developer authentication tool could not be used. " +
	"Developer tool credentials expire after a few hours, so restart the tool and try again."

// DeveloperToolGraph signs in with the developer authentication tool through
// the federated provider, whatever provider the attempt was configured with.
func DeveloperToolGraph(reg *graph.Registry) graph.Graph {
	return graph.GraphFunc(func(st *graph.State) graph.Node {
		p, err := reg.Provider(federated.ProviderName)
		fed, ok := p.(*federated.Provider)
		if err != nil || !ok {
			return nodes.Fail("The developer authentication tool requires the " + federated.ProviderName + " provider.")
		}
		st.CrossPlatformProvider = fed

		return graph.Forever().
			Add(nodes.BailIfAlreadyAuthenticated()).
			Add(graph.UntilLoginComplete(developerToolMessage).
				Add(fed.DeveloperToolAuthentication()).
				Add(nodes.SelectCrossPlatformAccount(nodes.PermitContinuance)).
				Add(nodes.LoginWithSelected()))
	})
}
