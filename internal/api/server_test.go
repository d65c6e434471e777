package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/engine"
	"github.com/talgya/hexbarter/internal/entropy"
	"github.com/talgya/hexbarter/internal/persistence"
	"github.com/talgya/hexbarter/internal/world"
)

func testGame() *engine.Game {
	board := world.Generate(world.GenConfig{Seed: 1, Copies: 1, Columns: 3})
	ann := agents.NewPlayer(0, "ann", false, agents.PersonalityFair)
	ann.Resources = economy.NewLedger(economy.SettlementCost)
	bo := agents.NewPlayer(1, "bo", false, agents.PersonalityGreedy)
	return engine.NewGame(board, []*agents.Player{ann, bo}, engine.DefaultRules(), &entropy.Sequence{})
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
	}
	return rec.Code
}

func TestStatusBeforeAndAfterPublish(t *testing.T) {
	s := NewServer(0)
	h := s.Handler()

	var status map[string]any
	if code := get(t, h, "/api/v1/status", &status); code != http.StatusOK || status["started"] != false {
		t.Fatalf("code = %d, status = %v", code, status)
	}
	if code := get(t, h, "/api/v1/board", nil); code != http.StatusServiceUnavailable {
		t.Fatalf("board before publish: code = %d", code)
	}

	g := testGame()
	g.Reporter = s
	if err := g.BuildSettlement(g.Players[0], 1); err != nil {
		t.Fatal(err)
	}
	g.Round = 3
	s.Publish(g.Snapshot())

	status = nil
	get(t, h, "/api/v1/status", &status)
	if status["round"] != float64(3) || status["leader"] != "ann" || status["events"] != float64(1) {
		t.Fatalf("status = %v", status)
	}

	var players []engine.PlayerView
	get(t, h, "/api/v1/players", &players)
	if len(players) != 2 || players[0].VictoryPoints != 1 || players[1].Personality != agents.PersonalityGreedy {
		t.Fatalf("players = %+v", players)
	}

	var board struct {
		Columns int         `json:"columns"`
		Hexes   []world.Hex `json:"hexes"`
	}
	get(t, h, "/api/v1/board", &board)
	if board.Columns != 3 || len(board.Hexes) != g.Board.Len() || len(board.Hexes[1].Owners) != 1 {
		t.Fatalf("board = %+v", board)
	}
}

func TestSnapshotNotLive(t *testing.T) {
	s := NewServer(0)
	g := testGame()
	s.Publish(g.Snapshot())
	g.Players[0].Resources.Add(economy.Ore, 9)

	var players []engine.PlayerView
	get(t, s.Handler(), "/api/v1/players", &players)
	if players[0].Resources[economy.Ore] != 0 {
		t.Fatal("handlers must serve the published snapshot")
	}
}

func TestEventsFilterAndLimit(t *testing.T) {
	s := NewServer(0)
	for i := 0; i < 5; i++ {
		s.Report(engine.Event{Seq: uint64(i + 1), Category: engine.CategoryTurn, Kind: "pass_bonus"})
	}
	s.Report(engine.Event{Seq: 6, Category: engine.CategoryBuild, Kind: "road"})

	var events []engine.Event
	get(t, s.Handler(), "/api/v1/events?limit=2", &events)
	if len(events) != 2 || events[1].Seq != 6 {
		t.Fatalf("limited events = %+v", events)
	}

	events = nil
	get(t, s.Handler(), "/api/v1/events?category=build", &events)
	if len(events) != 1 || events[0].Kind != "road" {
		t.Fatalf("filtered events = %+v", events)
	}

	events = nil
	get(t, s.Handler(), "/api/v1/events?category=trade", &events)
	if events == nil || len(events) != 0 {
		t.Fatalf("expected empty list, got %v", events)
	}
}

func TestSessionLookup(t *testing.T) {
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s := NewServer(0)
	s.DB = db
	s.Report(engine.Event{Seq: 1, Category: engine.CategoryTrade, Kind: engine.StateInitiated, Session: "mem"})
	if err := db.SaveEvents([]engine.Event{
		{Seq: 2, Category: engine.CategoryTrade, Kind: engine.StateInitiated, Session: "stored"},
		{Seq: 3, Category: engine.CategoryTrade, Kind: engine.StateNoAcceptance, Session: "stored"},
	}); err != nil {
		t.Fatal(err)
	}

	var events []engine.Event
	if code := get(t, s.Handler(), "/api/v1/session/stored", &events); code != http.StatusOK || len(events) != 2 {
		t.Fatalf("stored session: code = %d, events = %+v", code, events)
	}
	events = nil
	if code := get(t, s.Handler(), "/api/v1/session/mem", &events); code != http.StatusOK || len(events) != 1 {
		t.Fatalf("in-memory session: code = %d, events = %+v", code, events)
	}
	if code := get(t, s.Handler(), "/api/v1/session/nope", nil); code != http.StatusNotFound {
		t.Fatalf("missing session: code = %d", code)
	}
}

func TestRejectsWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(0).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/status", strings.NewReader("{}")))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestStreamDeliversEvents(t *testing.T) {
	s := NewServer(0)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.Report(engine.Event{Seq: 7, Category: engine.CategoryBuild, Kind: "city", Player: "ann"})
	s.Publish(testGame().Snapshot())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first, second Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read: %v", err)
	}
	if first.Type != "event" || first.Event == nil || first.Event.Seq != 7 {
		t.Fatalf("first = %+v", first)
	}
	if second.Type != "snapshot" || second.Snapshot == nil || len(second.Snapshot.Players) != 2 {
		t.Fatalf("second = %+v", second)
	}

	s.hub.Close()
	if s.hub.Len() != 0 {
		t.Fatal("close must drop every client")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("burst should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("limits are per IP")
	}

	rl.Cleanup(-time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("cleanup should forget idle clients")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	h := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	for i, want := range []int{http.StatusNoContent, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: code = %d, want %d", i, rec.Code, want)
		}
	}
	if clientIP(req) != "9.9.9.9" {
		t.Fatalf("client ip = %q", clientIP(req))
	}
}
