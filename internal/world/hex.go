// Package world provides the hex board: terrain, triggers and structure ownership.
// Tiles are laid out in rows and addressed by index; axial coordinates
// (q, r) are kept for layout and noise sampling.
package world

import (
	"slices"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
)

// HexCoord represents a position on the hex grid using axial coordinates.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainHills     Terrain = iota // Brick
	TerrainForest                   // Lumber
	TerrainMountains                // Ore
	TerrainFields                   // Grain
	TerrainPasture                  // Wool
	TerrainDesert                   // Never produces
)

// NumTerrains is the number of terrain kinds, desert included.
const NumTerrains = 6

var terrainNames = [NumTerrains]string{"hills", "forest", "mountains", "fields", "pasture", "desert"}

// TerrainName returns a display name for a terrain type.
func TerrainName(t Terrain) string {
	if int(t) >= NumTerrains {
		return "unknown"
	}
	return terrainNames[t]
}

func (t Terrain) String() string { return TerrainName(t) }

// Resource returns what the terrain produces. ok is false for desert.
func (t Terrain) Resource() (r economy.ResourceType, ok bool) {
	switch t {
	case TerrainHills:
		return economy.Brick, true
	case TerrainForest:
		return economy.Lumber, true
	case TerrainMountains:
		return economy.Ore, true
	case TerrainFields:
		return economy.Grain, true
	case TerrainPasture:
		return economy.Wool, true
	default:
		return 0, false
	}
}

// Hex represents a single tile on the board.
type Hex struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`
	Trigger int      `json:"trigger"` // Dice total that activates the tile, 2–12

	// Players holding a structure here, in arrival order. One entry per player.
	Owners []agents.PlayerID `json:"owners"`
}

// Produces reports whether the hex yields anything when its trigger is rolled.
func (h *Hex) Produces() bool {
	_, ok := h.Terrain.Resource()
	return ok
}

// HasOwner reports whether id holds a structure on the hex.
func (h *Hex) HasOwner(id agents.PlayerID) bool {
	return slices.Contains(h.Owners, id)
}

// AddOwner appends id to the owner list unless already present.
func (h *Hex) AddOwner(id agents.PlayerID) {
	if h.HasOwner(id) {
		return
	}
	h.Owners = append(h.Owners, id)
}
