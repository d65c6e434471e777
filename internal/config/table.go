package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/engine"
	"github.com/talgya/hexbarter/internal/world"
)

// Seat describes one player at the table.
type Seat struct {
	Name        string `yaml:"name"`
	Human       bool   `yaml:"human"`
	Personality string `yaml:"personality"` // generous, fair, greedy or empty
}

// Table is the game setup: rules, board generation and seats.
type Table struct {
	Rules engine.Rules    `yaml:",inline"`
	Board world.GenConfig `yaml:"board"`
	Seats []Seat          `yaml:"seats"`
}

// DefaultTable is one human against a generous, a greedy and a fair agent
// on the 18-tile board.
func DefaultTable() Table {
	return Table{
		Rules: engine.DefaultRules(),
		Board: world.DefaultGenConfig(),
		Seats: []Seat{
			{Name: "You", Human: true},
			{Name: "AI Player 1", Personality: "generous"},
			{Name: "AI Player 2", Personality: "greedy"},
			{Name: "AI Player 3", Personality: "fair"},
		},
	}
}

// LoadTable reads a YAML table file over DefaultTable. An empty path
// returns the default. Keys missing from the file keep their default value;
// a seats list replaces the default seats entirely.
func LoadTable(path string) (Table, error) {
	t := DefaultTable()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read table: %w", err)
	}
	t.Seats = nil
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(t.Seats) == 0 {
		t.Seats = DefaultTable().Seats
	}
	if err := t.Validate(); err != nil {
		return Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate reports setup errors.
func (t Table) Validate() error {
	if t.Rules.VictoryTarget <= 0 {
		return fmt.Errorf("victory_target must be > 0, got %d", t.Rules.VictoryTarget)
	}
	if t.Rules.StartingResources < 0 {
		return fmt.Errorf("starting_resources must be >= 0, got %d", t.Rules.StartingResources)
	}
	if t.Rules.PassBonus < 0 {
		return fmt.Errorf("pass_bonus must be >= 0, got %d", t.Rules.PassBonus)
	}
	if err := t.Board.Validate(); err != nil {
		return err
	}
	if len(t.Seats) < 2 {
		return errors.New("a table needs at least 2 seats")
	}
	names := make(map[string]bool, len(t.Seats))
	for i, s := range t.Seats {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("seat %d has no name", i)
		}
		if names[name] {
			return fmt.Errorf("duplicate seat name %q", name)
		}
		names[name] = true
		if _, err := agents.ParsePersonality(s.Personality); err != nil {
			return fmt.Errorf("seat %q: %w", name, err)
		}
	}
	return nil
}

// Players creates the seated players in table order. With humans false every
// seat is played by an agent.
func (t Table) Players(humans bool) ([]*agents.Player, error) {
	players := make([]*agents.Player, 0, len(t.Seats))
	for i, s := range t.Seats {
		p, err := agents.ParsePersonality(s.Personality)
		if err != nil {
			return nil, fmt.Errorf("seat %q: %w", s.Name, err)
		}
		players = append(players, agents.NewPlayer(agents.PlayerID(i), strings.TrimSpace(s.Name), s.Human && humans, p))
	}
	return players, nil
}
