package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notify-lab/auth"
	"notify-lab/observability"
	"notify-lab/runtime"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-long-enough-for-hs256!!"

func newTestServer(t *testing.T) (*httptest.Server, *runtime.Registry, *auth.TokenManager, *Server) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	stats := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry(log, stats, 16)
	tokens := auth.NewTokenManager(testSecret, time.Hour)

	server := NewServer(log, registry, tokens, stats)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	t.Cleanup(server.Shutdown)
	return ts, registry, tokens, server
}

func TestHealthEndpoint(t *testing.T) {
	req := require.New(t)
	ts, _, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]string
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Equal("ok", body["status"])
}

func TestStatsEndpoint(t *testing.T) {
	req := require.New(t)
	ts, _, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/statsz")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)

	var snapshot map[string]any
	req.NoError(json.NewDecoder(resp.Body).Decode(&snapshot))
	req.NotEmpty(snapshot["instance_id"])
	req.Contains(snapshot, "events_published")
	req.Contains(snapshot, "active_receivers")
}

func TestEvents_RejectsMissingToken(t *testing.T) {
	req := require.New(t)
	ts, _, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/events")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestEvents_RejectsInvalidToken(t *testing.T) {
	req := require.New(t)
	ts, _, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/events?token=not-a-jwt")
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestEvents_RejectsExpiredToken(t *testing.T) {
	req := require.New(t)
	ts, _, _, _ := newTestServer(t)

	// Given a token that expired an hour ago
	expired := auth.NewTokenManager(testSecret, -time.Hour)
	token, err := expired.Generate(1)
	req.NoError(err)

	resp, err := http.Get(ts.URL + "/events?token=" + token)
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestEvents_AcceptsBearerHeader(t *testing.T) {
	req := require.New(t)
	ts, _, tokens, _ := newTestServer(t)

	token, err := tokens.Generate(1)
	req.NoError(err)

	httpReq, err := http.NewRequest(http.MethodGet, ts.URL+"/events", nil)
	req.NoError(err)
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(httpReq)
	req.NoError(err)
	defer resp.Body.Close()

	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("text/event-stream", resp.Header.Get("Content-Type"))
}
