// Package agents provides the player data model and the personality-driven
// trade negotiation policy used by AI seats.
package agents

import (
	"fmt"
	"slices"

	"github.com/talgya/hexbarter/internal/economy"
)

// PlayerID is a player's seat index at the table.
type PlayerID int

// Structure is the kind of building a player holds on a hex.
type Structure uint8

const (
	StructureNone Structure = iota
	StructureSettlement
	StructureCity
)

func (s Structure) String() string {
	switch s {
	case StructureSettlement:
		return "settlement"
	case StructureCity:
		return "city"
	default:
		return "none"
	}
}

// Player is a seat at the table, human or agent.
type Player struct {
	ID          PlayerID    `json:"id"`
	Name        string      `json:"name"`
	Human       bool        `json:"human"`
	Personality Personality `json:"personality"`

	Resources economy.Ledger `json:"-"`

	// Hex indices, in build order. A location is in exactly one of the two.
	Settlements []int `json:"settlements"`
	Cities      []int `json:"cities"`

	Roads int `json:"roads"`
}

// NewPlayer creates a player with an empty balance.
func NewPlayer(id PlayerID, name string, human bool, personality Personality) *Player {
	return &Player{
		ID:          id,
		Name:        name,
		Human:       human,
		Personality: personality,
	}
}

// Balance returns a copy of the player's resources.
func (p *Player) Balance() economy.Bundle {
	return p.Resources.Balance()
}

// VictoryPoints is derived: 1 per settlement, 2 per city.
func (p *Player) VictoryPoints() int {
	return len(p.Settlements) + 2*len(p.Cities)
}

func (p *Player) HasSettlement(hex int) bool { return slices.Contains(p.Settlements, hex) }
func (p *Player) HasCity(hex int) bool       { return slices.Contains(p.Cities, hex) }

// StructureAt returns what the player holds on hex.
func (p *Player) StructureAt(hex int) Structure {
	switch {
	case p.HasCity(hex):
		return StructureCity
	case p.HasSettlement(hex):
		return StructureSettlement
	default:
		return StructureNone
	}
}

// PlaceSettlement records a new settlement location.
// Fails if the player already holds a structure there.
func (p *Player) PlaceSettlement(hex int) error {
	if p.StructureAt(hex) != StructureNone {
		return fmt.Errorf("hex %d already held by %s", hex, p.Name)
	}
	p.Settlements = append(p.Settlements, hex)
	return nil
}

// PromoteToCity moves a location from the settlement set to the city set.
func (p *Player) PromoteToCity(hex int) error {
	i := slices.Index(p.Settlements, hex)
	if i < 0 {
		return fmt.Errorf("%s has no settlement on hex %d", p.Name, hex)
	}
	p.Settlements = slices.Delete(p.Settlements, i, i+1)
	p.Cities = append(p.Cities, hex)
	return nil
}

func (p *Player) String() string {
	return p.Name
}
