// Package api provides the read-only HTTP observer for a running table.
// Handlers serve published snapshots and recorded events, never live game
// state. /api/v1/stream pushes events and snapshots over a websocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/talgya/hexbarter/internal/engine"
	"github.com/talgya/hexbarter/internal/persistence"
)

// Server serves the table over HTTP.
type Server struct {
	Port int
	DB   *persistence.DB // Optional; enables session lookups

	events *engine.Recorder
	hub    *Hub

	snapMu   sync.RWMutex
	snapshot *engine.Snapshot

	httpSrv *http.Server
}

// NewServer creates an observer server. Call Publish and Report from the
// game goroutine to feed it.
func NewServer(port int) *Server {
	return &Server{
		Port:   port,
		events: engine.NewRecorder(),
		hub:    NewHub(),
	}
}

// Publish replaces the snapshot served to readers and pushes it to streams.
func (s *Server) Publish(snap *engine.Snapshot) {
	s.snapMu.Lock()
	s.snapshot = snap
	s.snapMu.Unlock()
	s.hub.Broadcast(Message{Type: "snapshot", Snapshot: snap})
}

// Report implements engine.Reporter.
func (s *Server) Report(e engine.Event) {
	s.events.Report(e)
	s.hub.Broadcast(Message{Type: "event", Event: &e})
}

func (s *Server) current() *engine.Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snapshot
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	streamLimiter := NewRateLimiter(1, 5)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/players", s.handlePlayers)
	mux.HandleFunc("/api/v1/board", s.handleBoard)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/session/{id}", s.handleSession)
	mux.HandleFunc("/api/v1/stream", RateLimitMiddleware(streamLimiter, s.hub.ServeWS))
	return getOnly(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the listener and closes every stream.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeJSON(w, map[string]any{"started": false})
		return
	}

	leader, best := "", -1
	for _, p := range snap.Players {
		if p.VictoryPoints > best {
			leader, best = p.Name, p.VictoryPoints
		}
	}
	writeJSON(w, map[string]any{
		"started":       true,
		"round":         snap.Round,
		"players":       len(snap.Players),
		"hexes":         len(snap.Board),
		"leader":        leader,
		"leader_points": best,
		"winner":        snap.Winner,
		"streams":       s.hub.Len(),
		"events":        len(s.events.Events()),
	})
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeJSON(w, []engine.PlayerView{})
		return
	}
	writeJSON(w, snap.Players)
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		http.Error(w, "game not started", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{
		"columns": snap.Columns,
		"hexes":   snap.Board,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.events.Events()
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, nonNilEvents(events[start:]))
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var events []engine.Event
	if s.DB != nil {
		var err error
		events, err = s.DB.SessionEvents(id)
		if err != nil {
			slog.Warn("session lookup failed", "session", id, "error", err)
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
	}
	// Events not yet flushed to the store are still in memory.
	if len(events) == 0 {
		for _, e := range s.events.Filter(engine.CategoryTrade) {
			if e.Session == id {
				events = append(events, e)
			}
		}
	}
	if len(events) == 0 {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, events)
}

func nonNilEvents(events []engine.Event) []engine.Event {
	if events == nil {
		return []engine.Event{}
	}
	return events
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
