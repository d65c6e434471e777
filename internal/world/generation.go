// Board generation. Every terrain (desert included) is dealt `Copies` times and
// every trigger 2–12 is dealt `Copies` times, both shuffled, then zipped in
// order until one pile runs out. The noise layout reorders the dealt terrains
// so like terrain clusters along a simplex noise field.
package world

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Layout selects how dealt terrains are placed on the board.
type Layout string

const (
	LayoutShuffle Layout = "shuffle" // Uniform shuffle
	LayoutNoise   Layout = "noise"   // Terrains clustered by simplex noise
)

// Lowest and highest dice totals a tile can carry.
const (
	MinTrigger = 2
	MaxTrigger = 12
)

// GenConfig holds board generation parameters.
type GenConfig struct {
	Seed    int64  `yaml:"seed"`    // Random seed
	Copies  int    `yaml:"copies"`  // Copies of each terrain and trigger
	Columns int    `yaml:"columns"` // Tiles per display row
	Layout  Layout `yaml:"layout"`
}

// DefaultGenConfig returns the classic 18-tile board: 6 terrains × 3.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Copies:  3,
		Columns: 4,
		Layout:  LayoutShuffle,
	}
}

// Validate reports configuration errors.
func (c GenConfig) Validate() error {
	if c.Copies <= 0 {
		return fmt.Errorf("board copies must be > 0, got %d", c.Copies)
	}
	if c.Columns <= 0 {
		return fmt.Errorf("board columns must be > 0, got %d", c.Columns)
	}
	switch c.Layout {
	case "", LayoutShuffle, LayoutNoise:
		return nil
	default:
		return fmt.Errorf("unknown board layout %q", c.Layout)
	}
}

// Generate creates a board. Identical configs yield identical boards.
func Generate(cfg GenConfig) *Board {
	if cfg.Copies <= 0 {
		cfg.Copies = 1
	}
	if cfg.Columns <= 0 {
		cfg.Columns = 1
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	terrains := make([]Terrain, 0, NumTerrains*cfg.Copies)
	for c := 0; c < cfg.Copies; c++ {
		for t := Terrain(0); t < NumTerrains; t++ {
			terrains = append(terrains, t)
		}
	}
	rng.Shuffle(len(terrains), func(i, j int) { terrains[i], terrains[j] = terrains[j], terrains[i] })

	triggers := make([]int, 0, (MaxTrigger-MinTrigger+1)*cfg.Copies)
	for c := 0; c < cfg.Copies; c++ {
		for n := MinTrigger; n <= MaxTrigger; n++ {
			triggers = append(triggers, n)
		}
	}
	rng.Shuffle(len(triggers), func(i, j int) { triggers[i], triggers[j] = triggers[j], triggers[i] })

	count := min(len(terrains), len(triggers))
	terrains = terrains[:count]

	b := NewBoard(cfg.Columns)
	if cfg.Layout == LayoutNoise {
		terrains = clusterByNoise(terrains, cfg.Columns, cfg.Seed)
	}
	for i := 0; i < count; i++ {
		b.Add(terrains[i], triggers[i])
	}
	return b
}

// clusterByNoise assigns terrains, grouped by kind, to slots ordered by
// their noise value, so neighbouring slots with similar noise share terrain.
func clusterByNoise(terrains []Terrain, columns int, seed int64) []Terrain {
	noise := opensimplex.NewNormalized(seed)

	type slot struct {
		index int
		value float64
	}
	slots := make([]slot, len(terrains))
	for i := range slots {
		q, r := i%columns, i/columns
		// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
		x := float64(q) + float64(r)*0.5
		y := float64(r) * math.Sqrt(3.0) / 2.0
		slots[i] = slot{index: i, value: noise.Eval2(x*0.35, y*0.35)}
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].value < slots[j].value })

	grouped := append([]Terrain(nil), terrains...)
	sort.SliceStable(grouped, func(i, j int) bool { return grouped[i] < grouped[j] })

	out := make([]Terrain, len(terrains))
	for k, s := range slots {
		out[s.index] = grouped[k]
	}
	return out
}
