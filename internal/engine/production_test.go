package engine

import (
	"reflect"
	"testing"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/entropy"
	"github.com/talgya/hexbarter/internal/world"
)

func productionTable() (*Game, *agents.Player, *agents.Player) {
	alice := seat("alice", false, agents.PersonalityDefault, economy.Bundle{})
	bob := seat("bob", false, agents.PersonalityDefault, economy.Bundle{})
	g, _ := newTestGame([]world.Hex{
		{Terrain: world.TerrainHills, Trigger: 6},
		{Terrain: world.TerrainForest, Trigger: 6},
		{Terrain: world.TerrainDesert, Trigger: 6},
		{Terrain: world.TerrainFields, Trigger: 8},
		{Terrain: world.TerrainPasture, Trigger: 7},
	}, alice, bob)
	place(g, alice, 0, false)
	place(g, bob, 0, true)
	place(g, bob, 1, true)
	place(g, alice, 2, false)
	place(g, alice, 3, false)
	place(g, alice, 4, false)
	return g, alice, bob
}

func TestProducePaysByStructure(t *testing.T) {
	g, alice, bob := productionTable()

	res := Produce(g, 6)
	want := []Payout{
		{Player: alice.ID, Hex: 0, Resource: economy.Brick, Amount: 1},
		{Player: bob.ID, Hex: 0, Resource: economy.Brick, Amount: 2},
		{Player: bob.ID, Hex: 1, Resource: economy.Lumber, Amount: 2},
	}
	if !reflect.DeepEqual(res.Payouts, want) {
		t.Fatalf("payouts = %+v, want %+v", res.Payouts, want)
	}
	if res.Robber {
		t.Fatal("roll 6 is not a robber roll")
	}

	totals := res.Totals()
	if totals[bob.ID][economy.Brick] != 2 || totals[bob.ID][economy.Lumber] != 2 {
		t.Fatalf("unexpected totals for bob: %v", totals[bob.ID])
	}
}

func TestProduceDeterministic(t *testing.T) {
	g, _, _ := productionTable()
	for roll := 2; roll <= 12; roll++ {
		a, b := Produce(g, roll), Produce(g, roll)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("roll %d: results differ between calls", roll)
		}
	}
}

func TestRobberRollProducesNothing(t *testing.T) {
	g, alice, bob := productionTable()
	before := []economy.Bundle{alice.Balance(), bob.Balance()}

	res := Produce(g, RobberRoll)
	if !res.Robber || len(res.Payouts) != 0 {
		t.Fatalf("roll 7 must produce nothing, got %+v", res)
	}
	g.ApplyProduction(res)
	if alice.Balance() != before[0] || bob.Balance() != before[1] {
		t.Fatal("balances changed on a robber roll")
	}
}

func TestApplyProductionCredits(t *testing.T) {
	g, alice, bob := productionTable()
	rec := g.Reporter.(*Recorder)

	g.ApplyProduction(Produce(g, 8))
	if alice.Resources.Count(economy.Grain) != 1 {
		t.Fatalf("alice grain = %d, want 1", alice.Resources.Count(economy.Grain))
	}
	if !bob.Balance().IsEmpty() {
		t.Fatalf("bob should receive nothing on 8, got %s", bob.Balance())
	}

	events := rec.Filter(CategoryProduction)
	if len(events) != 1 || events[0].Kind != "payout" || events[0].Resource != "grain" || *events[0].Hex != 3 {
		t.Fatalf("unexpected production events %+v", events)
	}
}

func TestRollDiceRange(t *testing.T) {
	rng := entropy.New(3)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		r := RollDice(rng)
		if r < 2 || r > 12 {
			t.Fatalf("roll %d out of range", r)
		}
		seen[r] = true
	}
	if len(seen) != 11 {
		t.Fatalf("expected every total 2..12, saw %d distinct", len(seen))
	}
}

type fakeSource struct {
	hexes    []world.Hex
	holdings map[int][]Holding
}

func (f fakeSource) HexCount() int { return len(f.hexes) }

func (f fakeSource) HexYield(i int) (economy.ResourceType, int, bool) {
	r, ok := f.hexes[i].Terrain.Resource()
	return r, f.hexes[i].Trigger, ok
}

func (f fakeSource) Holdings(i int) []Holding { return f.holdings[i] }

func TestProduceFromAnySource(t *testing.T) {
	src := fakeSource{
		hexes: []world.Hex{{Terrain: world.TerrainMountains, Trigger: 9}},
		holdings: map[int][]Holding{0: {
			{Player: 2, Kind: agents.StructureCity},
			{Player: 1, Kind: agents.StructureNone},
		}},
	}
	res := Produce(src, 9)
	if len(res.Payouts) != 1 || res.Payouts[0].Player != 2 || res.Payouts[0].Amount != 2 || res.Payouts[0].Resource != economy.Ore {
		t.Fatalf("unexpected payouts %+v", res.Payouts)
	}
}
