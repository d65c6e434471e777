package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/engine"
	"github.com/talgya/hexbarter/internal/world"
)

// Console answers human decisions from line-based terminal input. End of
// input counts as pass or decline.
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{in: bufio.NewScanner(r), out: w}
}

func (c *Console) ask(q string) (string, bool) {
	fmt.Fprint(c.out, q)
	if !c.in.Scan() {
		fmt.Fprintln(c.out)
		return "", false
	}
	return strings.TrimSpace(strings.ToLower(c.in.Text())), true
}

func (c *Console) ChooseAction(_ context.Context, g *engine.Game, p *agents.Player) engine.Action {
	c.printTable(g, p)
	for {
		ans, ok := c.ask("Action? [b]uild, [t]rade, [p]ass: ")
		if !ok {
			return engine.Action{Kind: engine.ActionPass}
		}
		switch ans {
		case "b", "build":
			kind, ok := c.askBuild()
			if !ok {
				continue
			}
			return engine.Action{Kind: engine.ActionBuild, Build: kind}
		case "t", "trade":
			return engine.Action{Kind: engine.ActionTrade}
		case "p", "pass", "":
			return engine.Action{Kind: engine.ActionPass}
		default:
			fmt.Fprintln(c.out, "Please answer b, t or p.")
		}
	}
}

func (c *Console) askBuild() (economy.BuildKind, bool) {
	ans, ok := c.ask("Build what? [s]ettlement, [r]oad, [c]ity: ")
	if !ok {
		return 0, false
	}
	switch ans {
	case "s", "settlement":
		return economy.BuildSettlement, true
	case "r", "road":
		return economy.BuildRoad, true
	case "c", "city":
		return economy.BuildCity, true
	default:
		fmt.Fprintln(c.out, "Unknown build.")
		return 0, false
	}
}

// SelectTarget implements engine.TargetSelector.
func (c *Console) SelectTarget(_ context.Context, kind economy.BuildKind, p *agents.Player, hexCount int) (int, error) {
	if kind == economy.BuildCity {
		fmt.Fprintf(c.out, "Your settlements: %v\n", p.Settlements)
	}
	ans, ok := c.ask(fmt.Sprintf("Hex for the %s (0-%d): ", kind, hexCount-1))
	if !ok {
		return 0, io.EOF
	}
	hex, err := strconv.Atoi(ans)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a hex number", engine.ErrInvalidTarget, ans)
	}
	return hex, nil
}

func (c *Console) ComposeOffer(_ context.Context, p *agents.Player) (engine.Proposal, error) {
	fmt.Fprintf(c.out, "You hold %s. Enter resources as name:count, e.g. \"brick:1 wool:2\".\n", p.Balance())
	offer, ok := c.ask("You give: ")
	if !ok {
		return engine.Proposal{}, io.EOF
	}
	request, ok := c.ask("You want: ")
	if !ok {
		return engine.Proposal{}, io.EOF
	}
	o, err := parseCounts(offer)
	if err != nil {
		return engine.Proposal{}, err
	}
	r, err := parseCounts(request)
	if err != nil {
		return engine.Proposal{}, err
	}
	return engine.Proposal{Offer: o, Request: r}, nil
}

func (c *Console) RespondToOffer(_ context.Context, partner, initiator *agents.Player, terms engine.Terms) engine.Response {
	fmt.Fprintf(c.out, "%s offers %s for your %s. You hold %s.\n", initiator.Name, terms.Offer, terms.Request, partner.Balance())
	for {
		ans, ok := c.ask("Accept? [y]es, [n]o, [c]ounter: ")
		if !ok {
			return engine.Response{Verdict: agents.VerdictDecline}
		}
		switch ans {
		case "y", "yes":
			return engine.Response{Verdict: agents.VerdictAccept}
		case "n", "no", "":
			return engine.Response{Verdict: agents.VerdictDecline}
		case "c", "counter":
			extra, ok := c.ask("Additional units you want from them (name:count): ")
			if !ok {
				return engine.Response{Verdict: agents.VerdictDecline}
			}
			counts, err := parseCounts(extra)
			if err != nil {
				fmt.Fprintln(c.out, err)
				continue
			}
			b, err := economy.ParseBundle(counts)
			if err != nil {
				fmt.Fprintln(c.out, err)
				continue
			}
			return engine.Response{Verdict: agents.VerdictCounter, Extra: b}
		default:
			fmt.Fprintln(c.out, "Please answer y, n or c.")
		}
	}
}

func (c *Console) RespondToCounter(_ context.Context, initiator, partner *agents.Player, original, counter engine.Terms) bool {
	fmt.Fprintf(c.out, "%s counters: give %s (instead of %s) for %s.\n", partner.Name, counter.Offer, original.Offer, counter.Request)
	ans, ok := c.ask("Accept the counter? [y/n]: ")
	return ok && (ans == "y" || ans == "yes")
}

func (c *Console) printTable(g *engine.Game, p *agents.Player) {
	fmt.Fprintf(c.out, "\n== Round %d: your turn, %s ==\n", g.Round, p.Name)
	for i, h := range g.Board.Hexes {
		owners := make([]string, 0, len(h.Owners))
		for _, id := range h.Owners {
			if o := g.Player(id); o != nil {
				owners = append(owners, fmt.Sprintf("%s(%s)", o.Name, o.StructureAt(i)))
			}
		}
		fmt.Fprintf(c.out, "[%2d] %-9s %2d  %s\n", i, world.TerrainName(h.Terrain), h.Trigger, strings.Join(owners, ", "))
	}
	for _, o := range g.Players {
		fmt.Fprintf(c.out, "%-12s VP %d  roads %d  %s\n", o.Name, o.VictoryPoints(), o.Roads, o.Balance())
	}
}

// parseCounts reads "brick:1 wool:2" (commas also separate entries).
func parseCounts(s string) (map[string]int, error) {
	out := make(map[string]int)
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' }) {
		name, count, found := strings.Cut(field, ":")
		n := 1
		if found {
			v, err := strconv.Atoi(count)
			if err != nil {
				return nil, fmt.Errorf("bad count in %q", field)
			}
			n = v
		}
		out[name] += n
	}
	return out, nil
}
