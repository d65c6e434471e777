package engine

import (
	"errors"
	"testing"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/world"
)

var threeTiles = []world.Hex{
	{Terrain: world.TerrainHills, Trigger: 5},
	{Terrain: world.TerrainFields, Trigger: 9},
	{Terrain: world.TerrainMountains, Trigger: 10},
}

func TestBuildSettlement(t *testing.T) {
	p := seat("ann", false, agents.PersonalityDefault, economy.SettlementCost.Plus(economy.SettlementCost))
	g, rec := newTestGame(threeTiles, p)

	if err := g.BuildSettlement(p, 1); err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Balance() != economy.SettlementCost {
		t.Fatalf("balance after build = %s", p.Balance())
	}
	if !p.HasSettlement(1) || !g.Board.Hex(1).HasOwner(p.ID) || p.VictoryPoints() != 1 {
		t.Fatal("settlement not recorded on player and board")
	}

	err := g.BuildSettlement(p, 1)
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("re-settling a held hex: err = %v, want ErrInvalidTarget", err)
	}
	if p.Balance() != economy.SettlementCost {
		t.Fatal("a rejected target must not spend")
	}

	if err := g.BuildSettlement(p, 3); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("out of range: err = %v", err)
	}

	builds := rec.Filter(CategoryBuild)
	if len(builds) != 1 || builds[0].Kind != "settlement" || *builds[0].Hex != 1 {
		t.Fatalf("unexpected build events %+v", builds)
	}
}

func TestBuildSettlementInsufficient(t *testing.T) {
	p := seat("ann", false, agents.PersonalityDefault, economy.Bundle{economy.Brick: 1, economy.Lumber: 1})
	g, _ := newTestGame(threeTiles, p)

	err := g.BuildSettlement(p, 0)
	if !errors.Is(err, economy.ErrInsufficientResources) {
		t.Fatalf("err = %v, want ErrInsufficientResources", err)
	}
	if p.Balance() != (economy.Bundle{economy.Brick: 1, economy.Lumber: 1}) || len(p.Settlements) != 0 {
		t.Fatal("failed build changed state")
	}
	if g.Board.Hex(0).HasOwner(p.ID) {
		t.Fatal("failed build claimed the hex")
	}
}

func TestUpgradeCity(t *testing.T) {
	p := seat("ann", false, agents.PersonalityDefault, economy.CityCost)
	g, _ := newTestGame(threeTiles, p)

	if err := g.UpgradeCity(p, 2); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("upgrade without settlement: err = %v", err)
	}
	if p.Balance() != economy.CityCost {
		t.Fatal("rejected upgrade spent resources")
	}

	place(g, p, 2, false)
	if err := g.UpgradeCity(p, 2); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if p.HasSettlement(2) || !p.HasCity(2) {
		t.Fatal("location must move from settlements to cities")
	}
	if p.VictoryPoints() != 2 || !p.Balance().IsEmpty() {
		t.Fatalf("vp = %d, balance = %s", p.VictoryPoints(), p.Balance())
	}
}

func TestBuildRoad(t *testing.T) {
	p := seat("ann", false, agents.PersonalityDefault, economy.RoadCost)
	g, _ := newTestGame(threeTiles, p)

	if err := g.Build(p, economy.BuildRoad, -1); err != nil {
		t.Fatalf("road: %v", err)
	}
	if p.Roads != 1 || !p.Balance().IsEmpty() {
		t.Fatalf("roads = %d, balance = %s", p.Roads, p.Balance())
	}
	if err := g.BuildRoad(p); !errors.Is(err, economy.ErrInsufficientResources) {
		t.Fatalf("second road: err = %v", err)
	}
	if p.VictoryPoints() != 0 {
		t.Fatal("roads carry no victory points")
	}
}
