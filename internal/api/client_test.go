package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/neubot/nbwatch/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"default when empty", "", false},
		{"http", "http://127.0.0.1:9774", false},
		{"https with path", "https://agent.example.com/neubot/", false},
		{"no scheme", "127.0.0.1:9774", true},
		{"ftp scheme", "ftp://127.0.0.1", true},
		{"missing host", "http://", true},
		{"unparseable", "http://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestClient_StateURL(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:9774/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9774/api/state?t=0", c.StateURL("0"))
	assert.Equal(t, "http://127.0.0.1:9774/api/state?t=1302", c.StateURL("1302"))

	prefixed, err := NewClient("https://agent.example.com/neubot", WithStatePath("/state.xml"))
	require.NoError(t, err)
	assert.Equal(t, "https://agent.example.com/neubot/state.xml?t=7", prefixed.StateURL("7"))
}

func TestClient_Fetch(t *testing.T) {
	var gotPath, gotCursor string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCursor = r.URL.Query().Get("t")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<state t="43"/>`))
	}))
	defer srv.Close()

	log := logger.NewBufferLogger()
	c, err := NewClient(srv.URL, WithLogger(log))
	require.NoError(t, err)

	body, err := c.Fetch(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, `<state t="43"/>`, string(body))
	assert.Equal(t, "/api/state", gotPath)
	assert.Equal(t, "42", gotCursor)
	assert.True(t, log.HasLevel("debug"))
}

func TestClient_Fetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404 Not Found", http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "0")
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_Fetch_RequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(srv.URL, WithRequestTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_Fetch_Cancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = c.Fetch(ctx, "0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_Version(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != VersionPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("0.4.2\n"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.4.2", v)
}
