package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/neubot/nbwatch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgent struct {
	version    string
	versionErr error
	doc        string
	fetchErr   error
	cursor     string
}

func (f *fakeAgent) Version(context.Context) (string, error) {
	return f.version, f.versionErr
}

func (f *fakeAgent) Fetch(_ context.Context, cursor string) ([]byte, error) {
	f.cursor = cursor
	return []byte(f.doc), f.fetchErr
}

func TestAgentVersionCheck(t *testing.T) {
	tests := []struct {
		name   string
		agent  *fakeAgent
		status CheckStatus
		msg    string
	}{
		{"up", &fakeAgent{version: "0.4.2"}, StatusPass, "Agent 0.4.2 at http://127.0.0.1:9774"},
		{"down", &fakeAgent{versionErr: errors.New("connection refused")}, StatusFail, "connection refused"},
		{"empty", &fakeAgent{}, StatusWarn, "empty version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := &AgentVersionCheck{Agent: tt.agent, Endpoint: "http://127.0.0.1:9774"}
			result := check.Run(context.Background())

			assert.Equal(t, "agent_version", result.Name)
			assert.Equal(t, tt.status, result.Status)
			assert.Contains(t, result.Message, tt.msg)
		})
	}
}

func TestStateDocumentCheck(t *testing.T) {
	tests := []struct {
		name   string
		agent  *fakeAgent
		status CheckStatus
		msg    string
	}{
		{
			name: "running",
			agent: &fakeAgent{doc: `<state t="9"><active>true</active>` +
				`<activity current="true">negotiate</activity><test><name>speedtest</name></test></state>`},
			status: StatusPass,
			msg:    "State OK: cursor 9, running (negotiate), test speedtest",
		},
		{
			name:   "idle",
			agent:  &fakeAgent{doc: `<state t="3"><active>false</active></state>`},
			status: StatusPass,
			msg:    "State OK: cursor 3, idle",
		},
		{
			name:   "no cursor",
			agent:  &fakeAgent{doc: `<state><active>false</active></state>`},
			status: StatusWarn,
			msg:    "no cursor",
		},
		{
			name:   "malformed",
			agent:  &fakeAgent{doc: `<state><active>`},
			status: StatusFail,
			msg:    "not valid XML",
		},
		{
			name:   "request failed",
			agent:  &fakeAgent{fetchErr: errors.New("agent returned 404 Not Found")},
			status: StatusFail,
			msg:    "404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := (&StateDocumentCheck{Agent: tt.agent}).Run(context.Background())

			assert.Equal(t, tt.status, result.Status)
			assert.Contains(t, result.Message, tt.msg)
			assert.Equal(t, "0", tt.agent.cursor, "the check never waits for a change")
		})
	}
}

func TestNewAgentChecks(t *testing.T) {
	checks := NewAgentChecks(&fakeAgent{}, "http://x")
	require.Len(t, checks, 2)
	for _, c := range checks {
		assert.Equal(t, CategoryAgent, c.Category())
	}
}

func TestConfigChecks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	t.Run("no file", func(t *testing.T) {
		results := RunAll(context.Background(), NewConfigChecks(""))
		require.Len(t, results, 2)
		assert.Equal(t, StatusWarn, results[0].Status)
		assert.Equal(t, StatusPass, results[1].Status, "defaults are valid")
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, config.ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("output: plain\n"), 0o644))
		t.Cleanup(func() { os.Remove(path) })

		results := RunAll(context.Background(), NewConfigChecks(""))
		assert.Equal(t, StatusPass, results[0].Status)
		assert.Contains(t, results[0].Message, path)
		assert.Contains(t, results[1].Message, "output plain")
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(dir, config.ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("output: xml\n"), 0o644))
		t.Cleanup(func() { os.Remove(path) })

		results := RunAll(context.Background(), NewConfigChecks(""))
		assert.Equal(t, StatusFail, results[1].Status)
		assert.Equal(t, `Invalid config: Unknown output mode "xml"`, results[1].Message)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		results := RunAll(context.Background(), NewConfigChecks(filepath.Join(dir, "nope.yaml")))
		assert.Equal(t, StatusFail, results[0].Status)
		assert.Contains(t, results[0].Message, "Specified config file not found")
		assert.Equal(t, StatusFail, results[1].Status)
	})
}
