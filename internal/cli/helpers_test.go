package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

const runningDoc = `<?xml version="1.0"?>
<state t="1302">
  <active>true</active>
  <activity>idle</activity>
  <activity current="true">test</activity>
  <test>
    <name>speedtest</name>
    <result tag="latency" unit="ms">12.3</result>
    <result tag="download" unit="Mbit/s">12.345</result>
    <result tag="jitter" unit="ms">1.5</result>
    <task state="done">latency</task>
    <task state="running">download</task>
  </test>
</state>`

// isolate points HOME and the working directory at temp dirs and resets
// the global flags so no real config is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	oldCfg, oldMachine := cfgFile, machineMode
	cfgFile, machineMode = "", false
	t.Cleanup(func() {
		cfgFile, machineMode = oldCfg, oldMachine
	})
	return dir
}

// fakeAgent serves doc at /api/state and "0.4.2" at /api/version.
func fakeAgent(t *testing.T, status int, doc string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/version":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("0.4.2\n"))
		case "/api/state":
			w.WriteHeader(status)
			_, _ = w.Write([]byte(doc))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}
