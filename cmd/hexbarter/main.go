// Command hexbarter runs a hex-board trading game: one human seat at the
// terminal against personality-driven agents.
//
// Usage:
//
//	hexbarter                 play (settings from HEXBARTER_* variables)
//	hexbarter journal <file>  print a compressed event journal
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/api"
	"github.com/talgya/hexbarter/internal/config"
	"github.com/talgya/hexbarter/internal/engine"
	"github.com/talgya/hexbarter/internal/entropy"
	"github.com/talgya/hexbarter/internal/persistence"
	"github.com/talgya/hexbarter/internal/world"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "journal" {
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: hexbarter journal <file>")
			os.Exit(2)
		}
		if err := printJournal(os.Args[2]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg); err != nil {
		slog.Error("hexbarter failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	table, err := config.LoadTable(cfg.TablePath)
	if err != nil {
		return err
	}

	seed := entropy.SeedOrRandom(cfg.Seed)
	rng := entropy.New(seed)

	// ── Database ──────────────────────────────────────────────────────
	var db *persistence.DB
	if cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		db, err = persistence.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		slog.Info("database opened", "path", cfg.DBPath)
	}

	// ── Load or Deal ─────────────────────────────────────────────────
	g, resumed, err := loadOrDeal(db, table, cfg, seed, rng)
	if err != nil {
		return err
	}

	// ── Reporters ────────────────────────────────────────────────────
	reporters := []engine.Reporter{engine.LogReporter{Logger: slog.Default()}}
	if db != nil {
		reporters = append(reporters, db)
	}
	if cfg.JournalDir != "" {
		journal := persistence.NewJournal(cfg.JournalDir, "events")
		defer func() {
			if err := journal.Close(); err != nil {
				slog.Warn("journal close failed", "error", err)
			}
		}()
		reporters = append(reporters, journal)
	}

	var apiServer *api.Server
	if cfg.APIPort > 0 {
		apiServer = api.NewServer(cfg.APIPort)
		apiServer.DB = db
		apiServer.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := apiServer.Shutdown(ctx); err != nil {
				slog.Warn("api shutdown failed", "error", err)
			}
		}()
		reporters = append(reporters, apiServer)
		apiServer.Publish(g.Snapshot())
	}
	g.Reporter = engine.Reporters(reporters...)

	console := NewConsole(os.Stdin, os.Stdout)
	g.Human = console
	g.Targets = console

	// ── Engine ───────────────────────────────────────────────────────
	eng := engine.NewEngine(g)
	eng.MaxRounds = cfg.MaxRounds
	eng.OnTurn = func(int, *agents.Player) {
		if apiServer != nil {
			apiServer.Publish(g.Snapshot())
		}
	}
	eng.OnRound = func(round int) {
		if db == nil {
			return
		}
		if err := db.SaveGameState(g); err != nil {
			slog.Error("round save failed", "round", round, "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nhexbarter: %d players on %d hexes, first to %d points wins.\n",
		len(g.Players), g.Board.Len(), g.Rules.VictoryTarget)
	if resumed {
		fmt.Printf("Resuming after the %s round.\n", humanize.Ordinal(g.Round))
	}
	if apiServer != nil {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	}

	winner := eng.Run(ctx)

	if db != nil {
		slog.Info("final save...")
		if err := db.SaveGameState(g); err != nil {
			slog.Error("final save failed", "error", err)
		}
	}
	printSummary(os.Stdout, g, winner, db != nil)
	return nil
}

// loadOrDeal resumes an unfinished saved game or deals a new one.
func loadOrDeal(db *persistence.DB, table config.Table, cfg config.Config, seed int64, rng entropy.Source) (*engine.Game, bool, error) {
	if db != nil && db.HasGameState() {
		g, err := db.LoadGame(table.Rules, rng)
		if err != nil {
			return nil, false, fmt.Errorf("load game: %w", err)
		}
		if g.Winner() == nil {
			slog.Info("saved game restored", "round", g.Round, "players", len(g.Players))
			return g, true, nil
		}
		slog.Info("saved game already finished, dealing a new one", "winner", g.Winner().Name)
	}

	players, err := table.Players(cfg.Human)
	if err != nil {
		return nil, false, err
	}
	gen := table.Board
	if gen.Seed == 0 {
		gen.Seed = seed
	}
	board := world.Generate(gen)
	for t, c := range world.TerrainCounts(board) {
		slog.Debug("terrain", "type", world.TerrainName(t), "count", c)
	}

	g := engine.NewGame(board, players, table.Rules, rng)
	g.DealStartingResources()
	if db != nil {
		if err := db.SaveMeta(persistence.MetaSeed, strconv.FormatInt(seed, 10)); err != nil {
			return nil, false, err
		}
		if err := db.SaveGameState(g); err != nil {
			return nil, false, fmt.Errorf("initial save: %w", err)
		}
	}
	slog.Info("new game dealt", "seed", seed, "hexes", board.Len(), "players", len(players))
	return g, false, nil
}

func printSummary(w io.Writer, g *engine.Game, winner *agents.Player, saved bool) {
	fmt.Fprintln(w)
	if winner != nil {
		fmt.Fprintf(w, "%s wins in the %s round with %d points.\n", winner.Name, humanize.Ordinal(g.Round), winner.VictoryPoints())
	} else {
		fmt.Fprintf(w, "Stopped after %s rounds.\n", humanize.Comma(int64(g.Round)))
	}
	if saved {
		fmt.Fprintln(w, "Game state saved.")
	}
	for _, p := range g.Players {
		fmt.Fprintf(w, "  %-12s %2d VP  %s\n", p.Name, p.VictoryPoints(), p.Balance())
	}
	fmt.Fprintf(w, "%s events reported.\n", humanize.Comma(int64(g.EventSeq())))
}

func printJournal(path string) error {
	events, err := persistence.ReadJournal(path)
	if err != nil {
		return err
	}
	for _, e := range events {
		line := fmt.Sprintf("#%d r%d %s/%s %s", e.Seq, e.Round, e.Category, e.Kind, e.Player)
		if e.Partner != "" {
			line += " <-> " + e.Partner
		}
		if e.Offer != nil && e.Request != nil {
			line += fmt.Sprintf(" offer %s for %s", e.Offer, e.Request)
		}
		if e.Reason != "" {
			line += " (" + e.Reason + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("%s events\n", humanize.Comma(int64(len(events))))
	return nil
}
