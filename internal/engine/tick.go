package engine

import (
	"context"
	"log/slog"

	"github.com/talgya/hexbarter/internal/agents"
)

// Engine drives the game round by round, seats in order.
type Engine struct {
	Game      *Game
	MaxRounds int // 0 plays until someone wins

	// Callbacks, populated during setup.
	OnTurn  func(round int, p *agents.Player) // After every turn
	OnRound func(round int)                   // After every full round
}

// NewEngine creates an engine for g.
func NewEngine(g *Game) *Engine {
	return &Engine{Game: g}
}

// Run plays until a player reaches the victory target, the round cap is hit
// or ctx is cancelled. It returns the winner, or nil.
func (e *Engine) Run(ctx context.Context) *agents.Player {
	g := e.Game
	slog.Info("game started", "round", g.Round, "players", len(g.Players), "victory_target", g.Rules.VictoryTarget)

	if w := g.Winner(); w != nil {
		return w
	}
	for ctx.Err() == nil {
		if e.MaxRounds > 0 && g.Round >= e.MaxRounds {
			slog.Info("round cap reached", "round", g.Round)
			return nil
		}
		g.Round++
		for _, p := range g.Players {
			if ctx.Err() != nil {
				return nil
			}
			g.TakeTurn(ctx, p)
			if e.OnTurn != nil {
				e.OnTurn(g.Round, p)
			}
			if w := g.Winner(); w != nil {
				g.emit(Event{Category: CategoryTurn, Kind: "winner", Player: w.Name, Amount: w.VictoryPoints()})
				slog.Info("game over", "winner", w.Name, "round", g.Round, "victory_points", w.VictoryPoints())
				return w
			}
		}
		if e.OnRound != nil {
			e.OnRound(g.Round)
		}
	}
	slog.Info("game stopped", "round", g.Round)
	return nil
}
