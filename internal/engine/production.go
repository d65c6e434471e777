// Dice-driven resource production. Every hex whose trigger matches the roll
// pays each owner by structure: 1 unit per settlement, 2 per city.
package engine

import (
	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/entropy"
)

// RobberRoll produces nothing anywhere.
const RobberRoll = 7

// Holding is one owner's structure on a hex.
type Holding struct {
	Player agents.PlayerID
	Kind   agents.Structure
}

// ProductionSource is the board as production sees it.
type ProductionSource interface {
	HexCount() int
	// HexYield returns the hex's resource and trigger. ok is false for
	// hexes that never produce.
	HexYield(i int) (r economy.ResourceType, trigger int, ok bool)
	Holdings(i int) []Holding
}

// Payout is one credit owed to one player.
type Payout struct {
	Player   agents.PlayerID      `json:"player"`
	Hex      int                  `json:"hex"`
	Resource economy.ResourceType `json:"resource"`
	Amount   int                  `json:"amount"`
}

// ProductionResult lists the payouts of one roll, in board then owner order.
type ProductionResult struct {
	Roll    int      `json:"roll"`
	Robber  bool     `json:"robber"`
	Payouts []Payout `json:"payouts"`
}

// Totals sums the payouts by player.
func (r ProductionResult) Totals() map[agents.PlayerID]economy.Bundle {
	out := make(map[agents.PlayerID]economy.Bundle)
	for _, p := range r.Payouts {
		b := out[p.Player]
		b[p.Resource] += p.Amount
		out[p.Player] = b
	}
	return out
}

// structureYield is units a structure earns per matching roll.
func structureYield(s agents.Structure) int {
	switch s {
	case agents.StructureSettlement:
		return 1
	case agents.StructureCity:
		return 2
	default:
		return 0
	}
}

// Produce computes the payouts for a roll without touching any balance.
// Identical board state and roll always give the identical result.
func Produce(src ProductionSource, roll int) ProductionResult {
	res := ProductionResult{Roll: roll}
	if roll == RobberRoll {
		res.Robber = true
		return res
	}
	for i := 0; i < src.HexCount(); i++ {
		r, trigger, ok := src.HexYield(i)
		if !ok || trigger != roll {
			continue
		}
		for _, h := range src.Holdings(i) {
			if amt := structureYield(h.Kind); amt > 0 {
				res.Payouts = append(res.Payouts, Payout{Player: h.Player, Hex: i, Resource: r, Amount: amt})
			}
		}
	}
	return res
}

// RollDice returns the total of two six-sided dice.
func RollDice(rng entropy.Source) int {
	return rng.Intn(6) + 1 + rng.Intn(6) + 1
}

// ApplyProduction credits every payout and reports it.
func (g *Game) ApplyProduction(res ProductionResult) {
	if res.Robber {
		g.emit(Event{Category: CategoryProduction, Kind: "robber", Roll: res.Roll})
		return
	}
	for _, pay := range res.Payouts {
		p := g.Player(pay.Player)
		if p == nil {
			continue
		}
		p.Resources.Add(pay.Resource, pay.Amount)
		hex := pay.Hex
		g.emit(Event{
			Category: CategoryProduction,
			Kind:     "payout",
			Player:   p.Name,
			Roll:     res.Roll,
			Hex:      &hex,
			Resource: pay.Resource.String(),
			Amount:   pay.Amount,
		})
	}
}

// RollAndProduce rolls the dice, reports the roll and applies production.
func (g *Game) RollAndProduce(roller *agents.Player) ProductionResult {
	roll := RollDice(g.Rng)
	g.emit(Event{Category: CategoryProduction, Kind: "roll", Player: roller.Name, Roll: roll})
	res := Produce(g, roll)
	g.ApplyProduction(res)
	return res
}
