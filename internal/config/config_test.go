package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/world"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "data/hexbarter.db" || cfg.LogLevel != "info" || !cfg.Human {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.APIPort != 0 || cfg.MaxRounds != 0 || cfg.Seed != 0 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HEXBARTER_SEED", "99")
	t.Setenv("HEXBARTER_API_PORT", "8080")
	t.Setenv("HEXBARTER_HUMAN", "false")
	t.Setenv("HEXBARTER_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 99 || cfg.APIPort != 8080 || cfg.Human {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"bad int", "HEXBARTER_SEED", "abc", "parse env:"},
		{"bad level", "HEXBARTER_LOG_LEVEL", "loud", "unknown log level"},
		{"bad port", "HEXBARTER_API_PORT", "70000", "api port"},
		{"negative rounds", "HEXBARTER_MAX_ROUNDS", "-1", "max rounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDefaultTable(t *testing.T) {
	table, err := LoadTable("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}
	players, err := table.Players(true)
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	if len(players) != 4 || !players[0].Human {
		t.Fatalf("expected one human and three agents, got %v", players)
	}
	want := []agents.Personality{agents.PersonalityDefault, agents.PersonalityGenerous, agents.PersonalityGreedy, agents.PersonalityFair}
	for i, p := range players {
		if p.Personality != want[i] {
			t.Fatalf("seat %d personality = %s, want %s", i, p.Personality, want[i])
		}
	}
	if table.Rules.VictoryTarget != 10 || table.Rules.StartingResources != 5 {
		t.Fatalf("unexpected rules %+v", table.Rules)
	}
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	raw := `victory_target: 6
board:
  copies: 2
  layout: noise
seats:
  - name: Ada
    human: true
  - name: Bo
    personality: greedy
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Rules.VictoryTarget != 6 || table.Rules.StartingResources != 5 {
		t.Fatalf("rules = %+v", table.Rules)
	}
	if table.Board.Copies != 2 || table.Board.Columns != 4 || table.Board.Layout != world.LayoutNoise {
		t.Fatalf("board = %+v", table.Board)
	}

	players, err := table.Players(false)
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	if len(players) != 2 || players[0].Human || players[1].Personality != agents.PersonalityGreedy {
		t.Fatalf("unexpected players %v", players)
	}
}

func TestLoadTableRejects(t *testing.T) {
	tests := []struct {
		name, raw, want string
	}{
		{"one seat", "seats:\n  - name: Solo\n", "at least 2 seats"},
		{"duplicate", "seats:\n  - name: A\n  - name: A\n", "duplicate seat"},
		{"personality", "seats:\n  - name: A\n  - name: B\n    personality: sly\n", "seat \"B\""},
		{"layout", "board:\n  layout: spiral\n", "unknown board layout"},
		{"victory", "victory_target: 0\n", "victory_target"},
		{"yaml", "seats: [\n", "table.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "table.yaml")
			if err := os.WriteFile(path, []byte(tt.raw), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadTable(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}
