package nodes

import (
	"context"
	"testing"

	"github.com/MrEthical07/authgraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryDeviceIDAddsCandidate(t *testing.T) {
	backend := newFakeBackend()
	backend.script("Anonymous", scripted{res: graph.LoginResult{User: "device-user"}})
	st := newState(backend)

	require.Equal(t, graph.Continue, run(t, TryDeviceIDAuthentication(), st))
	candidates := st.Candidates()
	require.Len(t, candidates, 1)
	assert.Equal(t, DeviceIDDisplayName, candidates[0].DisplayName)
	assert.Equal(t, graph.CandidateDeviceID, candidates[0].Type)
	assert.Equal(t, "deviceId", candidates[0].AuthAttributes["authenticatedWith"])

	res, err := candidates[0].Refresh(context.Background(), map[string]string{"stale": "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, res.Delete)
	assert.Equal(t, "deviceId", res.Set["authenticatedWith"])
}

func TestTryDeviceIDFailureStillContinues(t *testing.T) {
	st := newState(newFakeBackend())
	require.Equal(t, graph.Continue, run(t, TryDeviceIDAuthentication(), st))
	assert.Empty(t, st.Candidates())
	require.Len(t, st.Diagnostics(), 1)
	assert.Contains(t, st.Diagnostics()[0], "not_found")
}

func TestTryDeviceIDEmptyResultStillContinues(t *testing.T) {
	backend := newFakeBackend()
	backend.script("Anonymous", scripted{})
	st := newState(backend)

	require.Equal(t, graph.Continue, run(t, TryDeviceIDAuthentication(), st))
	assert.Empty(t, st.Candidates())
	require.Len(t, st.Diagnostics(), 1)
	assert.Contains(t, st.Diagnostics()[0], "unexpected_error")
}

func TestCreateDeviceIDTreatsDuplicateAsSuccess(t *testing.T) {
	backend := deviceBackend{newFakeBackend()}
	backend.deviceErr = graph.NewBackendError("create_device_id", graph.CodeDuplicateNotAllowed, nil)
	st := newState(backend)

	require.Equal(t, graph.Continue, run(t, CreateDeviceID(), st))
	assert.Empty(t, st.Diagnostics())
	assert.Equal(t, 1, backend.devices)
}

func TestCreateDeviceIDOnUnsupportedBackend(t *testing.T) {
	st := newState(newFakeBackend())
	require.Equal(t, graph.Continue, run(t, CreateDeviceID(), st))
	assert.Len(t, st.Diagnostics(), 1)
}

func TestAnonymousSequenceCreatesDeviceAndUser(t *testing.T) {
	backend := deviceBackend{newFakeBackend()}
	st := newState(backend)

	seq := graph.UntilLoginComplete("").
		Add(CreateDeviceID()).
		Add(TryDeviceIDAuthentication()).
		Add(SelectOnly()).
		Add(LoginWithSelected())

	require.Equal(t, graph.Continue, run(t, seq, st))
	assert.Equal(t, graph.UserID("created-user"), st.ResultUserID)
	assert.Equal(t, []graph.ContinuanceToken{"device-ct"}, backend.created)
}
