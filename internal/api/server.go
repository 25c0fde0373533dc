// Package api provides the HTTP API for observing the world.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/aethersync/internal/agents"
	"github.com/talgya/aethersync/internal/engine"
	"github.com/talgya/aethersync/internal/persistence"
	"github.com/talgya/aethersync/internal/sim"
)

// Server serves the world state over HTTP.
type Server struct {
	World    *sim.World
	Eng      *engine.Engine
	DB       *persistence.DB
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// ScreenshotPath is the file served at the screenshot endpoints.
	// Empty or missing file means 404.
	ScreenshotPath string
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	screenshotLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check in on the world).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentDetail)
	mux.HandleFunc("/api/v1/chat", s.handleChat)
	mux.HandleFunc("/api/v1/territories", s.handleTerritories)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)

	// Screenshot endpoints. The legacy path is kept for old dashboards.
	mux.HandleFunc("/api/v1/screenshot", RateLimitMiddleware(screenshotLimiter, s.handleScreenshot))
	mux.HandleFunc("/screen_live.jpg", RateLimitMiddleware(screenshotLimiter, s.handleScreenshot))

	// Websocket chat stream.
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(s.Addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin token set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	speed := 0.0
	uptime := time.Duration(0)
	if s.Eng != nil {
		speed = s.Eng.Speed()
		uptime = s.Eng.Uptime()
	}
	writeJSON(w, map[string]any{
		"tick":        s.World.CurrentTick(),
		"speed":       speed,
		"agents":      len(s.World.AgentViews()),
		"territories": len(s.World.Territories()),
		"uptime":      uptime.String(),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	all := s.World.AgentViews()
	out := make([]map[string]any, 0, len(all))
	for _, a := range all {
		out = append(out, agentDetail(a))
	}
	writeJSON(w, map[string]any{"agents": out})
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/v1/agent/")
	if name == "" {
		http.Error(w, "agent name required", http.StatusBadRequest)
		return
	}
	a, ok := s.World.AgentView(name)
	if !ok {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	writeJSON(w, agentDetail(a))
}

func agentDetail(a agents.Agent) map[string]any {
	return map[string]any{
		"name":        a.Name,
		"personality": a.Personality.String(),
		"position":    a.Position,
		"wallet":      a.Wallet,
		"level":       a.Level,
		"xp":          a.XP,
		"reputation":  a.Reputation,
		"actions":     a.Actions,
		"inventory":   a.Inventory,
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 30)
	writeJSON(w, map[string]any{"chat": s.World.Chat().Recent(limit)})
}

func (s *Server) handleTerritories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"territories": s.World.Territories()})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"prices": s.World.PriceBoard()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "event journal unavailable", http.StatusServiceUnavailable)
		return
	}
	limit := queryInt(r, "limit", 50)
	events, err := s.DB.RecentEvents(limit)
	if err != nil {
		slog.Error("loading events", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"events": events})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World.Stats())
}

func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	if s.ScreenshotPath == "" {
		http.Error(w, "screenshot capture disabled", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(s.ScreenshotPath); err != nil {
		http.Error(w, "no screenshot captured yet", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, s.ScreenshotPath)
}

// handleStream upgrades to a websocket and relays every chat entry
// appended while the connection lives.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	entries, cancel := s.World.Chat().Subscribe(64)
	defer cancel()

	// Reader goroutine: drains control frames and signals close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case e := <-entries:
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "engine not running", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
