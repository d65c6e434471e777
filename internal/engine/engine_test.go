package engine

import (
	"context"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/entropy"
	"github.com/talgya/hexbarter/internal/world"
)

// newTestGame builds a game over the given tiles with a recorder attached.
func newTestGame(tiles []world.Hex, players ...*agents.Player) (*Game, *Recorder) {
	b := world.NewBoard(4)
	for _, t := range tiles {
		b.Add(t.Terrain, t.Trigger)
	}
	g := NewGame(b, players, DefaultRules(), &entropy.Sequence{})
	rec := NewRecorder()
	g.Reporter = rec
	return g, rec
}

func seat(name string, human bool, p agents.Personality, balance economy.Bundle) *agents.Player {
	pl := agents.NewPlayer(0, name, human, p)
	pl.Resources = economy.NewLedger(balance)
	return pl
}

// place puts a structure on the board without spending.
func place(g *Game, p *agents.Player, hex int, city bool) {
	if err := p.PlaceSettlement(hex); err != nil {
		panic(err)
	}
	if city {
		if err := p.PromoteToCity(hex); err != nil {
			panic(err)
		}
	}
	g.Board.Hex(hex).AddOwner(p.ID)
}

// scriptedHuman answers every human prompt from fixed scripts.
type scriptedHuman struct {
	proposal   Proposal
	composeErr error
	responses  []Response
	counterOK  bool
	actions    []Action
	onRespond  func() // Runs before each offer answer

	offersSeen   []Terms
	countersSeen []Terms
}

func (h *scriptedHuman) ComposeOffer(context.Context, *agents.Player) (Proposal, error) {
	return h.proposal, h.composeErr
}

func (h *scriptedHuman) RespondToOffer(_ context.Context, _, _ *agents.Player, terms Terms) Response {
	h.offersSeen = append(h.offersSeen, terms)
	if h.onRespond != nil {
		h.onRespond()
	}
	if len(h.responses) == 0 {
		return Response{Verdict: agents.VerdictDecline}
	}
	r := h.responses[0]
	h.responses = h.responses[1:]
	return r
}

func (h *scriptedHuman) RespondToCounter(_ context.Context, _, _ *agents.Player, _, counter Terms) bool {
	h.countersSeen = append(h.countersSeen, counter)
	return h.counterOK
}

func (h *scriptedHuman) ChooseAction(context.Context, *Game, *agents.Player) Action {
	if len(h.actions) == 0 {
		return Action{Kind: ActionPass}
	}
	a := h.actions[0]
	h.actions = h.actions[1:]
	return a
}

func kinds(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}
