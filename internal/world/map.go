package world

import "fmt"

// Board holds the hex tiles in board order.
type Board struct {
	Hexes   []*Hex `json:"hexes"`
	Columns int    `json:"columns"` // Tiles per display row
}

// NewBoard creates an empty board laid out in rows of columns tiles.
func NewBoard(columns int) *Board {
	if columns <= 0 {
		columns = 1
	}
	return &Board{Columns: columns}
}

// Add appends a tile, placing it at the next row/column slot.
func (b *Board) Add(terrain Terrain, trigger int) *Hex {
	i := len(b.Hexes)
	h := &Hex{
		Coord:   HexCoord{Q: i % b.Columns, R: i / b.Columns},
		Terrain: terrain,
		Trigger: trigger,
	}
	b.Hexes = append(b.Hexes, h)
	return h
}

// Len returns the number of hexes on the board.
func (b *Board) Len() int {
	return len(b.Hexes)
}

// InBounds reports whether i is a valid hex index.
func (b *Board) InBounds(i int) bool {
	return i >= 0 && i < len(b.Hexes)
}

// Hex returns the tile at index i, or nil if out of bounds.
func (b *Board) Hex(i int) *Hex {
	if !b.InBounds(i) {
		return nil
	}
	return b.Hexes[i]
}

// TerrainCounts returns how many tiles of each terrain the board holds.
func TerrainCounts(b *Board) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, h := range b.Hexes {
		counts[h.Terrain]++
	}
	return counts
}

// String returns a summary of the board.
func (b *Board) String() string {
	return fmt.Sprintf("Board(hexes=%d, columns=%d)", b.Len(), b.Columns)
}
