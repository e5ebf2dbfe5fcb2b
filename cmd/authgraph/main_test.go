package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("REDIS_ADDR", "")
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func quietConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o600))
	return path
}

func TestGraphsCommand(t *testing.T) {
	out, err := execute(t, "graphs", "--config", quietConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Anonymous")
	assert.Contains(t, out, "resolver")
}

func TestProvidersCommand(t *testing.T) {
	out, err := execute(t, "providers", "--config", quietConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Federated")
}

func TestRunCommandReusesDeviceUser(t *testing.T) {
	out, err := execute(t, "run", "--config", quietConfig(t), "--graph", "Anonymous", "--times", "2", "--json")
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var users []string
	for dec.More() {
		var view map[string]any
		require.NoError(t, dec.Decode(&view))
		assert.Equal(t, true, view["succeeded"])
		users = append(users, view["user_id"].(string))
	}
	require.Len(t, users, 2)
	assert.Equal(t, users[0], users[1])
}

func TestRunCommandReportsFailure(t *testing.T) {
	out, err := execute(t, "run", "--config", quietConfig(t), "--graph", "AlwaysFail")
	require.Error(t, err)
	assert.Contains(t, out, "failed")
}

func TestRunCommandRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nope: 1\n"), 0o600))

	_, err := execute(t, "run", "--config", path)
	require.Error(t, err)
}

func TestAccountCreate(t *testing.T) {
	out, err := execute(t, "account", "create", "--config", quietConfig(t), "--email", "a@example.com", "--secret", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
}
