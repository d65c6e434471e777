// Package engine runs the table: production, building, trade negotiation
// and turn sequencing over an explicit Game context.
package engine

import (
	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/entropy"
	"github.com/talgya/hexbarter/internal/world"
)

// Rules holds the table rules that are not part of the cost table.
type Rules struct {
	VictoryTarget     int `yaml:"victory_target" json:"victory_target"`
	StartingResources int `yaml:"starting_resources" json:"starting_resources"`
	PassBonus         int `yaml:"pass_bonus" json:"pass_bonus"`
}

// DefaultRules returns 10 VP to win, 5 random starting units, 1 unit for passing.
func DefaultRules() Rules {
	return Rules{
		VictoryTarget:     10,
		StartingResources: 5,
		PassBonus:         1,
	}
}

// Game holds the complete table state. Every component receives it
// explicitly; there is no package-level game state.
type Game struct {
	Board   *world.Board
	Players []*agents.Player // Seat order
	Rules   Rules
	Round   int

	Rng      entropy.Source
	Reporter Reporter
	Human    HumanDecider   // Decisions for human seats
	Targets  TargetSelector // Build targets for human seats

	seq uint64
}

// NewGame creates a game from generated components. Player IDs are reset
// to their seat index.
func NewGame(board *world.Board, players []*agents.Player, rules Rules, rng entropy.Source) *Game {
	for i, p := range players {
		p.ID = agents.PlayerID(i)
	}
	return &Game{
		Board:   board,
		Players: players,
		Rules:   rules,
		Rng:     rng,
	}
}

// Player returns the player with the given ID, or nil.
func (g *Game) Player(id agents.PlayerID) *agents.Player {
	if int(id) >= 0 && int(id) < len(g.Players) && g.Players[id].ID == id {
		return g.Players[id]
	}
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName returns the first player with the given name, or nil.
func (g *Game) PlayerByName(name string) *agents.Player {
	for _, p := range g.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// DealStartingResources gives each player Rules.StartingResources random units.
func (g *Game) DealStartingResources() {
	for _, p := range g.Players {
		for i := 0; i < g.Rules.StartingResources; i++ {
			p.Resources.Add(economy.Resources[g.Rng.Intn(economy.NumResources)], 1)
		}
	}
}

// Winner returns the first player in seat order at or above the victory target.
func (g *Game) Winner() *agents.Player {
	if g.Rules.VictoryTarget <= 0 {
		return nil
	}
	for _, p := range g.Players {
		if p.VictoryPoints() >= g.Rules.VictoryTarget {
			return p
		}
	}
	return nil
}

// emit stamps and forwards an event.
func (g *Game) emit(e Event) {
	g.seq++
	e.Seq = g.seq
	e.Round = g.Round
	if g.Reporter != nil {
		g.Reporter.Report(e)
	}
}

// SetEventSeq restores the event counter when resuming a saved game.
func (g *Game) SetEventSeq(seq uint64) {
	g.seq = seq
}

// EventSeq returns the sequence number of the last emitted event.
func (g *Game) EventSeq() uint64 {
	return g.seq
}

// HexCount implements ProductionSource.
func (g *Game) HexCount() int {
	return g.Board.Len()
}

// HexYield implements ProductionSource.
func (g *Game) HexYield(i int) (economy.ResourceType, int, bool) {
	h := g.Board.Hex(i)
	if h == nil {
		return 0, 0, false
	}
	r, ok := h.Terrain.Resource()
	return r, h.Trigger, ok
}

// Holdings implements ProductionSource: owners in owner-list order with
// the structure each holds on the hex.
func (g *Game) Holdings(i int) []Holding {
	h := g.Board.Hex(i)
	if h == nil {
		return nil
	}
	out := make([]Holding, 0, len(h.Owners))
	for _, id := range h.Owners {
		p := g.Player(id)
		if p == nil {
			continue
		}
		out = append(out, Holding{Player: id, Kind: p.StructureAt(i)})
	}
	return out
}

// PlayerView is a read-only copy of one seat.
type PlayerView struct {
	ID            agents.PlayerID    `json:"id"`
	Name          string             `json:"name"`
	Human         bool               `json:"human"`
	Personality   agents.Personality `json:"personality"`
	Resources     economy.Bundle     `json:"resources"`
	Settlements   []int              `json:"settlements"`
	Cities        []int              `json:"cities"`
	Roads         int                `json:"roads"`
	VictoryPoints int                `json:"victory_points"`
}

// Snapshot is an immutable copy of the table, safe to hand to other goroutines.
type Snapshot struct {
	Round   int          `json:"round"`
	Winner  string       `json:"winner,omitempty"`
	Players []PlayerView `json:"players"`
	Board   []world.Hex  `json:"board"`
	Columns int          `json:"columns"`
}

// Snapshot copies the current state.
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		Round:   g.Round,
		Players: make([]PlayerView, 0, len(g.Players)),
		Board:   make([]world.Hex, 0, g.Board.Len()),
		Columns: g.Board.Columns,
	}
	if w := g.Winner(); w != nil {
		s.Winner = w.Name
	}
	for _, p := range g.Players {
		s.Players = append(s.Players, PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			Human:         p.Human,
			Personality:   p.Personality,
			Resources:     p.Balance(),
			Settlements:   append([]int(nil), p.Settlements...),
			Cities:        append([]int(nil), p.Cities...),
			Roads:         p.Roads,
			VictoryPoints: p.VictoryPoints(),
		})
	}
	for _, h := range g.Board.Hexes {
		cp := *h
		cp.Owners = append([]agents.PlayerID(nil), h.Owners...)
		s.Board = append(s.Board, cp)
	}
	return s
}
