package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/storefront/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Environment:    "test",
		StoreBackend:   config.BackendMemory,
		AllowedOrigins: []string{"https://shop.example"},
		RateLimit:      "1000-M",
		Presence:       config.DefaultPresenceConfig(),
	}
	cfg.Presence.BatchPause = 0

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return srv
}

func request(srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://shop.example")

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	return w
}

func TestServer_RootAndVersionedRoutes(t *testing.T) {
	srv := newTestServer(t)

	w := request(srv, http.MethodPost, "/viewers", map[string]string{"productId": "P1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var joined struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &joined))

	// both prefixes serve the same store
	w = request(srv, http.MethodGet, "/api/v1/viewers?productId=P1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"viewerCount":1`)

	w = request(srv, http.MethodDelete, "/api/v1/viewers?sessionId="+joined.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(srv, http.MethodGet, "/viewers?productId=P1", nil)
	assert.Contains(t, w.Body.String(), `"viewerCount":0`)
}

func TestServer_HealthPingAndCron(t *testing.T) {
	srv := newTestServer(t)

	w := request(srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"memory"`)

	w = request(srv, http.MethodGet, "/api/v1/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(srv, http.MethodPost, "/cron/cleanup-viewers", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(srv, http.MethodGet, "/api/v1/cron/cleanup-viewers", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_CORS(t *testing.T) {
	srv := newTestServer(t)

	w := request(srv, http.MethodGet, "/viewers?productId=P1", nil)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	assert.NotPanics(t, func() { CORSMiddleware([]string{"*"}) })
	assert.NotPanics(t, func() { CORSMiddleware(nil) })
}
