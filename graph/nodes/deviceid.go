package nodes

import (
	"context"

	"github.com/MrEthical07/authgraph/graph"
)

const (
	// DeviceIDDisplayName names device id candidates.
	DeviceIDDisplayName = "This Device"
	// DeviceModel is the model string sent when minting a device id.
	DeviceModel = "Anonymous Login"

	deviceIDAccount = "Anonymous"
)

func deviceIDCredentials() *graph.StaticCredentials {
	return &graph.StaticCredentials{
		DisplayName: DeviceIDDisplayName,
		CredType:    graph.CredentialDeviceIDAccessToken,
		CredID:      deviceIDAccount,
		Attributes:  map[string]string{"authenticatedWith": "deviceId"},
	}
}

func deviceIDLogin(ctx context.Context, backend graph.Backend) (graph.LoginResult, error) {
	return graph.CheckLogin(backend.Login(ctx, graph.LoginRequest{
		Type: graph.CredentialDeviceIDAccessToken,
		ID:   deviceIDAccount,
	}))
}

// TryDeviceIDAuthentication exchanges the local device credential with the
// backend. A usable result becomes a device id candidate. Any failure is
// recorded as a diagnostic and the node still continues.
func TryDeviceIDAuthentication() graph.Node {
	return graph.Named("TryDeviceIDAuthentication", func(ctx context.Context, st *graph.State, done graph.Done) {
		backend := st.Backend
		go func() {
			res, err := deviceIDLogin(ctx, backend)
			if err != nil {
				st.AddDiagnosticf("Error while authenticating against device ID: %s", graph.CodeOf(err))
				st.Log().Debug("device id login failed", "error", err)
				done(graph.Continue)
				return
			}
			creds := deviceIDCredentials()
			st.AddCandidateFromLogin(res, creds, graph.CandidateDeviceID, nil, refreshDeviceID(backend, creds))
			done(graph.Continue)
		}()
	})
}

// refreshDeviceID re-runs the device login and reports the device attributes.
func refreshDeviceID(backend graph.Backend, creds *graph.StaticCredentials) graph.RefreshFunc {
	return func(ctx context.Context, existing map[string]string) (graph.RefreshResult, error) {
		if _, err := deviceIDLogin(ctx, backend); err != nil {
			return graph.RefreshResult{}, err
		}
		return graph.DiffAttributes(existing, creds.AuthAttributes()), nil
	}
}

// CreateDeviceID mints a device credential. A duplicate device id counts as
// success. Other failures add a diagnostic and continue so the following
// login attempt reports the real error.
func CreateDeviceID() graph.Node {
	return graph.Named("CreateDeviceID", func(ctx context.Context, st *graph.State, done graph.Done) {
		devices, ok := st.Backend.(graph.DeviceIDBackend)
		if !ok {
			st.AddDiagnosticf("Unable to create Device Id, got result code %s", graph.CodeOf(graph.ErrDeviceIDUnsupported))
			done(graph.Continue)
			return
		}
		go func() {
			err := devices.CreateDeviceID(ctx, DeviceModel)
			if err != nil && graph.CodeOf(err) != graph.CodeDuplicateNotAllowed {
				st.Log().Debug("device id creation failed", "error", err)
				st.AddDiagnosticf("Unable to create Device Id, got result code %s", graph.CodeOf(err))
			}
			done(graph.Continue)
		}()
	})
}
