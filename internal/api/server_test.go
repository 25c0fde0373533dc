package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/chat"
	"github.com/talgya/aethersync/internal/engine"
	"github.com/talgya/aethersync/internal/sim"
)

func newTestServer(t *testing.T) (*Server, *sim.World) {
	t.Helper()
	w := sim.NewWorld(sim.DefaultConfig())
	w.Register("Koolie", agents.PersonalityExplorer)
	eng := engine.NewEngine()
	return &Server{World: w, Eng: eng, AdminKey: "secret"}, w
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Handler(), "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(1), body["agents"])
	assert.Equal(t, float64(1), body["speed"])
}

func TestAgentsAndDetail(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := get(t, h, "/api/v1/agents")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["agents"], 1)

	rec = get(t, h, "/api/v1/agent/Koolie")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Koolie", decode(t, rec)["name"])

	rec = get(t, h, "/api/v1/agent/Ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatLimit(t *testing.T) {
	s, w := newTestServer(t)
	for i := 0; i < 10; i++ {
		w.Chat().Append(uint64(i), "Koolie", "hello", chat.KindChat)
	}

	rec := get(t, s.Handler(), "/api/v1/chat?limit=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["chat"], 3)
}

func TestMarket(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Handler(), "/api/v1/market")
	require.Equal(t, http.StatusOK, rec.Code)

	prices := decode(t, rec)["prices"].(map[string]any)
	assert.Equal(t, float64(20), prices["potion"])
	assert.Len(t, prices, 6)
}

func TestEventsWithoutDB(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s.Handler(), "/api/v1/events")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSpeedRequiresAuth(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":5}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":5}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5.0, s.Eng.Speed())
}

func TestSpeedRejectsOutOfRange(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":-1}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSpeedDisabledWithoutKey(t *testing.T) {
	s, _ := newTestServer(t)
	s.AdminKey = ""
	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed":2}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestScreenshot(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := get(t, h, "/screen_live.jpg")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	path := filepath.Join(t.TempDir(), "screen_live.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpegbytes"), 0o644))
	s.ScreenshotPath = path

	rec = get(t, s.Handler(), "/api/v1/screenshot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpegbytes", rec.Body.String())
}

func TestCORSPreflights(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamRelaysChat(t *testing.T) {
	s, w := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the subscription a moment to register before appending.
	time.Sleep(50 * time.Millisecond)
	w.Chat().Append(1, "Koolie", "streamed line", chat.KindChat)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e chat.Entry
	require.NoError(t, conn.ReadJSON(&e))
	assert.Equal(t, "streamed line", e.Text)
	assert.Equal(t, chat.KindChat, e.Kind)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limits are per IP")
	assert.Greater(t, rl.RetryAfter("1.2.3.4"), 0)
}
