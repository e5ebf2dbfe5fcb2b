package nodes

import (
	"context"
	"errors"

	"github.com/MrEthical07/authgraph/graph"
)

// RefreshFromExternalCredentials returns a refresh callback that refreshes
// creds, exchanges them with backend again and diffs the attributes.
//
// Credentials that cannot refresh themselves are re-exchanged as they are.
func RefreshFromExternalCredentials(backend graph.Backend, creds graph.ExternalCredentials) graph.RefreshFunc {
	return func(ctx context.Context, existing map[string]string) (graph.RefreshResult, error) {
		if err := creds.Refresh(ctx); err != nil && !errors.Is(err, graph.ErrRefreshUnsupported) {
			return graph.RefreshResult{}, err
		}
		if _, err := backend.Login(ctx, graph.LoginRequest{Type: creds.Type(), ID: creds.ID(), Token: creds.Token()}); err != nil {
			return graph.RefreshResult{}, err
		}
		return graph.DiffAttributes(existing, creds.AuthAttributes()), nil
	}
}
