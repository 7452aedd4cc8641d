package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaniXM02/tunneltap/internal/resolve"
)

// newTestApp builds the app against a fake agent serving the given body.
func newTestApp(t *testing.T, agentBody string) *fiber.App {
	t.Helper()

	agentSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(agentBody))
	}))
	t.Cleanup(agentSrv.Close)

	return New(Options{
		Resolver: resolve.New([]string{agentSrv.URL}, time.Second),
		Version:  "test",
	})
}

func doRequest(t *testing.T, app *fiber.App, path string) (*http.Response, []byte) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, `{"tunnels":[]}`)

	resp, body := doRequest(t, app, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.NotEmpty(t, health.GoVersion)
}

func TestNgrokRoute_WithTunnel(t *testing.T) {
	app := newTestApp(t, `{"tunnels":[{"public_url":"https://abc.example.com"}]}`)

	resp, body := doRequest(t, app, "/api/ngrok")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "https://abc.example.com", payload["url"])
}

func TestNgrokRoute_NoAgent(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	app := New(Options{
		Resolver: resolve.New([]string{deadURL}, 200*time.Millisecond),
		Version:  "test",
	})

	resp, body := doRequest(t, app, "/api/ngrok")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "", payload["url"])
}

func TestNgrokRoute_EmptyTunnelList(t *testing.T) {
	app := newTestApp(t, `{"tunnels":[]}`)

	_, body := doRequest(t, app, "/api/ngrok")

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "", payload["url"])
}

func TestTunnelsRoute(t *testing.T) {
	app := newTestApp(t, `{"tunnels":[{"public_url":"https://one.example.com"},{"public_url":"https://two.example.com"}]}`)

	resp, body := doRequest(t, app, "/api/tunnels")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Tunnels []struct {
			PublicURL string `json:"public_url"`
		} `json:"tunnels"`
		Agent string `json:"agent"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Tunnels, 2)
	assert.Equal(t, "https://one.example.com", payload.Tunnels[0].PublicURL)
	assert.NotEmpty(t, payload.Agent)
}

func TestTunnelsRoute_EmptyListNotNull(t *testing.T) {
	app := newTestApp(t, `{"tunnels":[]}`)

	_, body := doRequest(t, app, "/api/tunnels")
	assert.Contains(t, string(body), `"tunnels":[]`)
}

func TestMetricsRoute(t *testing.T) {
	app := newTestApp(t, `{"tunnels":[]}`)

	// Drive at least one resolution so the counter vector has a sample.
	_, _ = doRequest(t, app, "/api/ngrok")

	resp, body := doRequest(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "tunneltap_resolutions_total")
}
