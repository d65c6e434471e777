// Package persistence provides SQLite game state storage and a compressed
// event journal.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/engine"
	"github.com/talgya/hexbarter/internal/entropy"
	"github.com/talgya/hexbarter/internal/world"
)

// Meta keys.
const (
	MetaRound    = "round"
	MetaEventSeq = "event_seq"
	MetaColumns  = "columns"
	MetaRules    = "rules"
	MetaSeed     = "seed"
)

// DB wraps a SQLite connection for game state persistence. It also buffers
// reported events until Flush.
type DB struct {
	conn *sqlx.DB

	mu      sync.Mutex
	pending []engine.Event
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		human INTEGER NOT NULL,
		personality TEXT NOT NULL,
		resources_json TEXT NOT NULL,
		settlements_json TEXT NOT NULL,
		cities_json TEXT NOT NULL,
		roads INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS hexes (
		idx INTEGER PRIMARY KEY,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		trigger_num INTEGER NOT NULL,
		owners_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY,
		round INTEGER NOT NULL,
		category TEXT NOT NULL,
		kind TEXT NOT NULL,
		player TEXT NOT NULL,
		session TEXT NOT NULL,
		payload_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_round ON events(round);
	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// savePlayers writes all players (full replace).
func (db *DB) savePlayers(tx *sqlx.Tx, players []*agents.Player) error {
	if _, err := tx.Exec("DELETE FROM players"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO players
		(id, name, human, personality, resources_json, settlements_json, cities_json, roads)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		resJSON, _ := json.Marshal(p.Balance())
		setJSON, _ := json.Marshal(nonNil(p.Settlements))
		cityJSON, _ := json.Marshal(nonNil(p.Cities))

		human := 0
		if p.Human {
			human = 1
		}

		_, err := stmt.Exec(
			p.ID, p.Name, human, p.Personality.String(),
			string(resJSON), string(setJSON), string(cityJSON), p.Roads,
		)
		if err != nil {
			return fmt.Errorf("insert player %d: %w", p.ID, err)
		}
	}
	return nil
}

// saveBoard writes every hex (full replace).
func (db *DB) saveBoard(tx *sqlx.Tx, b *world.Board) error {
	if _, err := tx.Exec("DELETE FROM hexes"); err != nil {
		return err
	}
	for i, h := range b.Hexes {
		ownersJSON, _ := json.Marshal(nonNil(h.Owners))
		_, err := tx.Exec(`INSERT INTO hexes (idx, q, r, terrain, trigger_num, owners_json)
			VALUES (?, ?, ?, ?, ?, ?)`,
			i, h.Coord.Q, h.Coord.R, int(h.Terrain), h.Trigger, string(ownersJSON),
		)
		if err != nil {
			return fmt.Errorf("insert hex %d: %w", i, err)
		}
	}
	return nil
}

// SaveEvents appends events. Events already stored are skipped.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode event %d: %w", e.Seq, err)
		}
		_, err = tx.Exec(
			`INSERT OR IGNORE INTO events (seq, round, category, kind, player, session, payload_json)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Seq, e.Round, e.Category, e.Kind, e.Player, e.Session, string(payload),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Report implements engine.Reporter by buffering the event for Flush.
func (db *DB) Report(e engine.Event) {
	db.mu.Lock()
	db.pending = append(db.pending, e)
	db.mu.Unlock()
}

// Flush writes buffered events.
func (db *DB) Flush() error {
	db.mu.Lock()
	events := db.pending
	db.pending = nil
	db.mu.Unlock()

	if err := db.SaveEvents(events); err != nil {
		db.mu.Lock()
		db.pending = append(events, db.pending...)
		db.mu.Unlock()
		return fmt.Errorf("flush events: %w", err)
	}
	return nil
}

// SaveMeta stores a key-value pair in game metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM game_meta WHERE key = ?", key)
	return value, err
}

// SaveGameState performs a full save of the table and flushes pending events.
func (db *DB) SaveGameState(g *engine.Game) error {
	slog.Debug("saving game state", "round", g.Round, "players", len(g.Players))

	tx, err := db.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if err := db.savePlayers(tx, g.Players); err != nil {
		return fmt.Errorf("save players: %w", err)
	}
	if err := db.saveBoard(tx, g.Board); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	rules, _ := json.Marshal(g.Rules)
	meta := map[string]string{
		MetaRound:    strconv.Itoa(g.Round),
		MetaEventSeq: strconv.FormatUint(g.EventSeq(), 10),
		MetaColumns:  strconv.Itoa(g.Board.Columns),
		MetaRules:    string(rules),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	return db.Flush()
}

// HasGameState reports whether a saved game exists.
func (db *DB) HasGameState() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM players"); err != nil {
		return false
	}
	return n > 0
}

type playerRow struct {
	ID          int    `db:"id"`
	Name        string `db:"name"`
	Human       bool   `db:"human"`
	Personality string `db:"personality"`
	Resources   string `db:"resources_json"`
	Settlements string `db:"settlements_json"`
	Cities      string `db:"cities_json"`
	Roads       int    `db:"roads"`
}

// LoadPlayers restores players in seat order.
func (db *DB) LoadPlayers() ([]*agents.Player, error) {
	var rows []playerRow
	if err := db.conn.Select(&rows, "SELECT * FROM players ORDER BY id"); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	players := make([]*agents.Player, 0, len(rows))
	for _, r := range rows {
		pers, err := agents.ParsePersonality(r.Personality)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", r.ID, err)
		}
		p := agents.NewPlayer(agents.PlayerID(r.ID), r.Name, r.Human, pers)

		var balance economy.Bundle
		if err := json.Unmarshal([]byte(r.Resources), &balance); err != nil {
			return nil, fmt.Errorf("player %d resources: %w", r.ID, err)
		}
		p.Resources = economy.NewLedger(balance)
		if err := json.Unmarshal([]byte(r.Settlements), &p.Settlements); err != nil {
			return nil, fmt.Errorf("player %d settlements: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.Cities), &p.Cities); err != nil {
			return nil, fmt.Errorf("player %d cities: %w", r.ID, err)
		}
		p.Roads = r.Roads
		players = append(players, p)
	}
	return players, nil
}

type hexRow struct {
	Index   int    `db:"idx"`
	Q       int    `db:"q"`
	R       int    `db:"r"`
	Terrain int    `db:"terrain"`
	Trigger int    `db:"trigger_num"`
	Owners  string `db:"owners_json"`
}

// LoadBoard restores the board in index order.
func (db *DB) LoadBoard() (*world.Board, error) {
	columns := 4
	if v, err := db.GetMeta(MetaColumns); err == nil {
		if c, err := strconv.Atoi(v); err == nil && c > 0 {
			columns = c
		}
	}

	var rows []hexRow
	if err := db.conn.Select(&rows, "SELECT * FROM hexes ORDER BY idx"); err != nil {
		return nil, fmt.Errorf("select hexes: %w", err)
	}

	b := world.NewBoard(columns)
	for _, r := range rows {
		if r.Terrain < 0 || r.Terrain >= world.NumTerrains {
			return nil, fmt.Errorf("hex %d: unknown terrain %d", r.Index, r.Terrain)
		}
		h := b.Add(world.Terrain(r.Terrain), r.Trigger)
		h.Coord = world.HexCoord{Q: r.Q, R: r.R}
		if err := json.Unmarshal([]byte(r.Owners), &h.Owners); err != nil {
			return nil, fmt.Errorf("hex %d owners: %w", r.Index, err)
		}
	}
	return b, nil
}

// LoadGame restores a saved game. Saved rules take precedence over fallback.
func (db *DB) LoadGame(fallback engine.Rules, rng entropy.Source) (*engine.Game, error) {
	players, err := db.LoadPlayers()
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, errors.New("no saved game")
	}
	board, err := db.LoadBoard()
	if err != nil {
		return nil, err
	}

	rules := fallback
	if v, err := db.GetMeta(MetaRules); err == nil {
		if err := json.Unmarshal([]byte(v), &rules); err != nil {
			return nil, fmt.Errorf("decode rules: %w", err)
		}
	}

	g := engine.NewGame(board, players, rules, rng)
	if v, err := db.GetMeta(MetaRound); err == nil {
		if r, err := strconv.Atoi(v); err == nil {
			g.Round = r
		}
	}
	if v, err := db.GetMeta(MetaEventSeq); err == nil {
		if s, err := strconv.ParseUint(v, 10, 64); err == nil {
			g.SetEventSeq(s)
		}
	}
	return g, nil
}

// RecentEvents returns the most recent N events, oldest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var payloads []string
	err := db.conn.Select(&payloads,
		"SELECT payload_json FROM events ORDER BY seq DESC LIMIT ?",
		limit,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	events := make([]engine.Event, len(payloads))
	for i, p := range payloads {
		if err := json.Unmarshal([]byte(p), &events[len(payloads)-1-i]); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
	}
	return events, nil
}

// SessionEvents returns every event of one trade session in order.
func (db *DB) SessionEvents(session string) ([]engine.Event, error) {
	var payloads []string
	if err := db.conn.Select(&payloads, "SELECT payload_json FROM events WHERE session = ? ORDER BY seq", session); err != nil {
		return nil, err
	}
	events := make([]engine.Event, len(payloads))
	for i, p := range payloads {
		if err := json.Unmarshal([]byte(p), &events[i]); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
	}
	return events, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
