package graphs

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/MrEthical07/authgraph/graph/nodes"
	"github.com/MrEthical07/authgraph/jwt"
	"github.com/MrEthical07/authgraph/provider/federated"
)

// Options configures RegisterDefaults.
type Options struct {
	// Issuer signs tokens for the AutomatedTesting graph. Without it the
	// graph is registered as a placeholder.
	Issuer *jwt.Manager
	// PreferredPlatform is the platform graph the Default resolver picks
	// whenever it is registered.
	PreferredPlatform string
}

// RegisterDefaults registers the standard graphs and resolvers into reg.
func RegisterDefaults(reg *graph.Registry, opts Options) error {
	r := resolver{reg: reg, preferred: opts.PreferredPlatform}

	errs := []error{
		reg.Register(AlwaysFail, "Always fails", AlwaysFailGraph()),
		reg.Register(CrossPlatformOnly, "Cross-platform only", CrossPlatformOnlyGraph()),
		reg.Register(Anonymous, "Anonymous device id", AnonymousGraph()),
		reg.Register(DeveloperTool, "Developer authentication tool only", DeveloperToolGraph(reg)),
		reg.RegisterResolver(Default, "Default", r.resolve),
		reg.RegisterResolver(DefaultCrossPlatformFallback, "Default, with cross-platform fallback", r.resolveWithCrossPlatform),
	}
	if opts.Issuer != nil {
		errs = append(errs, reg.Register(AutomatedTesting, "Automated testing", AutomatedTestingGraph(opts.Issuer)))
	} else {
		errs = append(errs, reg.RegisterPlaceholder(AutomatedTesting, "Automated testing (no token issuer configured)"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("register default graphs: %w", err)
	}
	return nil
}

// RegisterPlatform registers a platform graph over src under name.
func RegisterPlatform(reg *graph.Registry, name, description string, src nodes.CredentialSource) error {
	return reg.Register(name, description, PlatformGraph(src))
}

type resolver struct {
	reg       *graph.Registry
	preferred string
}

func (r resolver) resolve(_ *graph.Registry, st *graph.State) string {
	if r.preferred != "" && r.reg.Has(r.preferred) {
		return r.preferred
	}
	if p := st.CrossPlatformProvider; p != nil && p.Name() == federated.ProviderName &&
		r.reg.Has(CrossPlatformOnly) &&
		st.ProvidedCredentials.Type == federated.CredentialExchangeCode && st.ProvidedCredentials.Token != "" {
		return CrossPlatformOnly
	}
	if st.Settings.DeveloperToolAddress != "" && r.reg.Has(DeveloperTool) {
		st.Log().Debug("choosing the developer authentication tool graph")
		return DeveloperTool
	}
	return AlwaysFail
}

func (r resolver) resolveWithCrossPlatform(reg *graph.Registry, st *graph.State) string {
	name := r.resolve(reg, st)
	if name == AlwaysFail && st.CrossPlatformProvider != nil {
		return CrossPlatformOnly
	}
	return name
}
