package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
)

// ErrInvalidTarget is returned when a build names a hex the player cannot build on.
var ErrInvalidTarget = errors.New("invalid build target")

// BuildSettlement spends the settlement cost and places a settlement on hex.
// The target is checked before anything is spent.
func (g *Game) BuildSettlement(p *agents.Player, hex int) error {
	h := g.Board.Hex(hex)
	if h == nil {
		return fmt.Errorf("%w: hex %d out of range", ErrInvalidTarget, hex)
	}
	if s := p.StructureAt(hex); s != agents.StructureNone {
		return fmt.Errorf("%w: %s already holds a %s on hex %d", ErrInvalidTarget, p.Name, s, hex)
	}
	if err := p.Resources.TrySpend(economy.SettlementCost); err != nil {
		return fmt.Errorf("build settlement: %w", err)
	}
	if err := p.PlaceSettlement(hex); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	h.AddOwner(p.ID)
	g.emitBuild(p, economy.BuildSettlement, &hex)
	return nil
}

// UpgradeCity spends the city cost and turns the settlement on hex into a city.
func (g *Game) UpgradeCity(p *agents.Player, hex int) error {
	if !p.HasSettlement(hex) {
		return fmt.Errorf("%w: %s has no settlement on hex %d", ErrInvalidTarget, p.Name, hex)
	}
	if err := p.Resources.TrySpend(economy.CityCost); err != nil {
		return fmt.Errorf("upgrade city: %w", err)
	}
	if err := p.PromoteToCity(hex); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	g.emitBuild(p, economy.BuildCity, &hex)
	return nil
}

// BuildRoad spends the road cost. Roads carry no location.
func (g *Game) BuildRoad(p *agents.Player) error {
	if err := p.Resources.TrySpend(economy.RoadCost); err != nil {
		return fmt.Errorf("build road: %w", err)
	}
	p.Roads++
	g.emitBuild(p, economy.BuildRoad, nil)
	return nil
}

// Build dispatches a build of the given kind. hex is ignored for roads.
func (g *Game) Build(p *agents.Player, kind economy.BuildKind, hex int) error {
	switch kind {
	case economy.BuildSettlement:
		return g.BuildSettlement(p, hex)
	case economy.BuildCity:
		return g.UpgradeCity(p, hex)
	case economy.BuildRoad:
		return g.BuildRoad(p)
	default:
		return fmt.Errorf("unknown build kind %d", kind)
	}
}

func (g *Game) emitBuild(p *agents.Player, kind economy.BuildKind, hex *int) {
	g.emit(Event{
		Category: CategoryBuild,
		Kind:     kind.String(),
		Player:   p.Name,
		Hex:      hex,
		Amount:   economy.CostOf(kind).Total(),
	})
}
