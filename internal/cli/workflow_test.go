package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neubot/nbwatch/internal/config"
	"github.com/neubot/nbwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWorkflow_Defaults(t *testing.T) {
	isolate(t)

	wc, err := SetupWorkflow(context.Background(), WorkflowOptions{})
	require.NoError(t, err)
	defer wc.Close()

	assert.Empty(t, wc.ConfigPath)
	assert.Equal(t, "http://127.0.0.1:9774", wc.Client.Endpoint())
	assert.Equal(t, "http://127.0.0.1:9774/api/state?t=0", wc.Client.StateURL("0"))
	assert.Len(t, wc.SyncOptions(), 2)
}

func TestSetupWorkflow_ConfigFileAndOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint: http://from-file:9774
state_path: /state.xml
output: html
retry:
  initial: 2s
  max: 8s
`), 0o644))

	wc, err := SetupWorkflow(context.Background(), WorkflowOptions{Output: "plain"})
	require.NoError(t, err)
	defer wc.Close()

	assert.Equal(t, path, wc.ConfigPath)
	assert.Equal(t, "http://from-file:9774/state.xml?t=5", wc.Client.StateURL("5"))
	assert.Equal(t, config.OutputPlain, wc.Config.Output, "flag wins over file")
	assert.Equal(t, 2*time.Second, wc.Config.RetryPolicy().Initial)
	assert.Equal(t, 8*time.Second, wc.Config.RetryPolicy().Max)

	wc2, err := SetupWorkflow(context.Background(), WorkflowOptions{Endpoint: "http://flag:1"})
	require.NoError(t, err)
	assert.Equal(t, "http://flag:1", wc2.Client.Endpoint())
}

func TestSetupWorkflow_ExplicitConfig(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: http://custom:9774\n"), 0o644))
	cfgFile = path

	wc, err := SetupWorkflow(context.Background(), WorkflowOptions{})
	require.NoError(t, err)
	assert.Equal(t, "http://custom:9774", wc.Client.Endpoint())
}

func TestSetupWorkflow_InvalidConfig(t *testing.T) {
	isolate(t)

	_, err := SetupWorkflow(context.Background(), WorkflowOptions{Output: "xml"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Equal(t, ErrCodeConfigInvalid, ErrorToJSON(err).Code)
}

func TestWorkflowContext_CloseWithoutTelemetry(t *testing.T) {
	isolate(t)

	wc, err := SetupWorkflow(context.Background(), WorkflowOptions{Telemetry: true})
	require.NoError(t, err)
	assert.NotPanics(t, wc.Close)
	assert.NotPanics(t, wc.Close)
}
