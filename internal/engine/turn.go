package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/entropy"
)

// ActionKind is what a human chooses to do next during their turn.
type ActionKind uint8

const (
	ActionPass ActionKind = iota
	ActionBuild
	ActionTrade
)

// Action is one human choice. Build is only read for ActionBuild.
type Action struct {
	Kind  ActionKind
	Build economy.BuildKind
}

// TargetSelector chooses the hex for a settlement or city build.
type TargetSelector interface {
	SelectTarget(ctx context.Context, kind economy.BuildKind, p *agents.Player, hexCount int) (int, error)
}

// RandomTargets picks build targets at random: a hex the player does not
// hold for settlements, one of the player's settlements for cities.
type RandomTargets struct {
	Rng entropy.Source
}

// ErrNoTarget is returned when no hex is eligible for the build.
var ErrNoTarget = errors.New("no eligible build target")

func (r RandomTargets) SelectTarget(_ context.Context, kind economy.BuildKind, p *agents.Player, hexCount int) (int, error) {
	var candidates []int
	switch kind {
	case economy.BuildSettlement:
		for i := 0; i < hexCount; i++ {
			if p.StructureAt(i) == agents.StructureNone {
				candidates = append(candidates, i)
			}
		}
	case economy.BuildCity:
		candidates = p.Settlements
	}
	hex, ok := entropy.Pick(r.Rng, candidates)
	if !ok {
		return 0, fmt.Errorf("%s %s: %w", p.Name, kind, ErrNoTarget)
	}
	return hex, nil
}

// TakeTurn plays one full turn for p: roll, produce, then act.
func (g *Game) TakeTurn(ctx context.Context, p *agents.Player) {
	g.RollAndProduce(p)
	if p.Human {
		g.humanTurn(ctx, p)
	} else {
		g.agentTurn(ctx, p)
	}
}

// humanTurn repeats the human's chosen action until a build succeeds or the
// human passes. Completed trades do not end the turn.
func (g *Game) humanTurn(ctx context.Context, p *agents.Player) {
	traded := false
	for ctx.Err() == nil {
		act := g.human().ChooseAction(ctx, g, p)
		switch act.Kind {
		case ActionBuild:
			err := g.humanBuild(ctx, p, act.Build)
			if err == nil {
				return
			}
			g.emit(Event{Category: CategoryBuild, Kind: "failed", Player: p.Name, Reason: err.Error()})
		case ActionTrade:
			if g.Negotiate(ctx, p, nil).Completed() {
				traded = true
			}
		default:
			if !traded {
				g.PassBonus(p)
			}
			return
		}
	}
}

func (g *Game) humanBuild(ctx context.Context, p *agents.Player, kind economy.BuildKind) error {
	if !p.Resources.CanAfford(economy.CostOf(kind)) {
		return fmt.Errorf("build %s: %w", kind, economy.ErrInsufficientResources)
	}
	if kind == economy.BuildRoad {
		return g.BuildRoad(p)
	}
	if kind == economy.BuildCity && len(p.Settlements) == 0 {
		return fmt.Errorf("%w: %s has no settlement to upgrade", ErrInvalidTarget, p.Name)
	}
	hex, err := g.targets().SelectTarget(ctx, kind, p, g.Board.Len())
	if err != nil {
		return err
	}
	return g.Build(p, kind, hex)
}

func (g *Game) targets() TargetSelector {
	if g.Targets == nil {
		return RandomTargets{Rng: g.Rng}
	}
	return g.Targets
}

// agentTurn builds the first affordable structure in priority order
// settlement, city, road. With nothing built it proposes a random trade
// half the time, and passes otherwise.
func (g *Game) agentTurn(ctx context.Context, p *agents.Player) {
	if g.agentBuild(ctx, p) {
		return
	}
	if g.Rng.Intn(2) == 0 && g.agentTrade(ctx, p) {
		return
	}
	g.PassBonus(p)
}

func (g *Game) agentBuild(ctx context.Context, p *agents.Player) bool {
	sel := RandomTargets{Rng: g.Rng}
	for _, kind := range []economy.BuildKind{economy.BuildSettlement, economy.BuildCity} {
		if !p.Resources.CanAfford(economy.CostOf(kind)) {
			continue
		}
		hex, err := sel.SelectTarget(ctx, kind, p, g.Board.Len())
		if err != nil {
			continue
		}
		if g.Build(p, kind, hex) == nil {
			return true
		}
	}
	return g.BuildRoad(p) == nil
}

// agentTrade offers one unit of a random held resource for one unit of a
// different random resource.
func (g *Game) agentTrade(ctx context.Context, p *agents.Player) bool {
	give := economy.Resources[g.Rng.Intn(economy.NumResources)]
	others := make([]economy.ResourceType, 0, economy.NumResources-1)
	for _, r := range economy.Resources {
		if r != give {
			others = append(others, r)
		}
	}
	want, _ := entropy.Pick(g.Rng, others)
	if p.Resources.Count(give) < 1 {
		return false
	}
	terms := Terms{Offer: economy.Single(give, 1), Request: economy.Single(want, 1)}
	return g.Negotiate(ctx, p, &terms).Completed()
}

// PassBonus grants Rules.PassBonus random units.
func (g *Game) PassBonus(p *agents.Player) {
	for i := 0; i < g.Rules.PassBonus; i++ {
		r := economy.Resources[g.Rng.Intn(economy.NumResources)]
		p.Resources.Add(r, 1)
		g.emit(Event{Category: CategoryTurn, Kind: "pass_bonus", Player: p.Name, Resource: r.String(), Amount: 1})
	}
}
