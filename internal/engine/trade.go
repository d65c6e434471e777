// Trade negotiation sessions. An initiator proposes terms to each other seat
// in turn; a partner may accept, decline or make a single counter. The first
// completed exchange ends the session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/hexbarter/internal/agents"
	"github.com/talgya/hexbarter/internal/economy"
)

// Terms is a proposal from the initiator's side: the initiator gives Offer
// and receives Request.
type Terms struct {
	Offer   economy.Bundle `json:"offer"`
	Request economy.Bundle `json:"request"`
}

// Proposal is terms as a human enters them, keyed by resource name.
type Proposal struct {
	Offer   map[string]int `json:"offer"`
	Request map[string]int `json:"request"`
}

// ParseTerms validates resource names and counts. The offer must hold at
// least one unit; an empty request asks for nothing back.
func ParseTerms(p Proposal) (Terms, error) {
	offer, err := economy.ParseBundle(p.Offer)
	if err != nil {
		return Terms{}, fmt.Errorf("offer: %w", err)
	}
	request, err := economy.ParseBundle(p.Request)
	if err != nil {
		return Terms{}, fmt.Errorf("request: %w", err)
	}
	if offer.IsEmpty() {
		return Terms{}, errors.New("offer is empty")
	}
	return Terms{Offer: offer, Request: request}, nil
}

// Session states, used as trade event kinds.
const (
	StateInitiated       = "initiated"
	StateProposed        = "proposed"
	StateAccepted        = "accepted"
	StateDeclined        = "declined"
	StateCounterProposed = "counter_proposed"
	StateCompleted       = "completed"
	StateNoAcceptance    = "no_acceptance"
	StateInvalid         = "invalid"
)

// Outcome is how a session ended.
type Outcome uint8

const (
	OutcomeNoAcceptance Outcome = iota
	OutcomeCompleted
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return StateCompleted
	case OutcomeInvalid:
		return StateInvalid
	default:
		return StateNoAcceptance
	}
}

// TradeResult reports a finished session. Terms are the executed terms when
// completed, otherwise the original proposal.
type TradeResult struct {
	SessionID string
	Outcome   Outcome
	Partner   *agents.Player
	Terms     Terms
	Countered bool // Completed on a counter
	Scarcity  bool // Exactly one other seat could fill the request
	Err       error
}

func (r TradeResult) Completed() bool { return r.Outcome == OutcomeCompleted }

// Response is a human partner's answer to a proposal. For a counter, Extra
// holds the additional units demanded on top of the offer.
type Response struct {
	Verdict agents.Verdict
	Extra   economy.Bundle
}

// HumanDecider supplies every decision for human seats. Calls may block.
type HumanDecider interface {
	ComposeOffer(ctx context.Context, initiator *agents.Player) (Proposal, error)
	RespondToOffer(ctx context.Context, partner, initiator *agents.Player, terms Terms) Response
	RespondToCounter(ctx context.Context, initiator, partner *agents.Player, original, counter Terms) bool
	ChooseAction(ctx context.Context, g *Game, p *agents.Player) Action
}

// declineAll answers for human seats when no decider is attached.
type declineAll struct{}

func (declineAll) ComposeOffer(context.Context, *agents.Player) (Proposal, error) {
	return Proposal{}, errors.New("no human decider attached")
}

func (declineAll) RespondToOffer(context.Context, *agents.Player, *agents.Player, Terms) Response {
	return Response{Verdict: agents.VerdictDecline}
}

func (declineAll) RespondToCounter(context.Context, *agents.Player, *agents.Player, Terms, Terms) bool {
	return false
}

func (declineAll) ChooseAction(context.Context, *Game, *agents.Player) Action {
	return Action{Kind: ActionPass}
}

func (g *Game) human() HumanDecider {
	if g.Human == nil {
		return declineAll{}
	}
	return g.Human
}

// Scarcity reports whether exactly one seat other than initiator can fill request.
func (g *Game) Scarcity(initiator *agents.Player, request economy.Bundle) bool {
	n := 0
	for _, p := range g.Players {
		if p.ID != initiator.ID && p.Resources.CanAfford(request) {
			n++
		}
	}
	return n == 1
}

type session struct {
	g         *Game
	id        string
	initiator *agents.Player
	terms     Terms
	scarcity  bool
}

// Negotiate runs one trade session for initiator. With nil terms the human
// decider composes the proposal. Balances change only on a completed exchange.
func (g *Game) Negotiate(ctx context.Context, initiator *agents.Player, terms *Terms) TradeResult {
	s := &session{g: g, id: uuid.NewString(), initiator: initiator}

	if terms == nil {
		t, err := g.composeTerms(ctx, initiator)
		if err != nil {
			return s.invalid(err)
		}
		s.terms = t
	} else {
		s.terms = *terms
	}
	if !s.terms.Offer.Valid() || !s.terms.Request.Valid() {
		return s.invalid(economy.ErrNegativeAmount)
	}
	if !initiator.Resources.CanAfford(s.terms.Offer) {
		return s.invalid(fmt.Errorf("%s cannot cover offer %s: %w", initiator.Name, s.terms.Offer, economy.ErrInsufficientResources))
	}

	s.scarcity = g.Scarcity(initiator, s.terms.Request)
	s.emit(StateInitiated, nil, s.terms, "")

	for _, partner := range g.Players {
		if partner.ID == initiator.ID {
			continue
		}
		if res, done := s.propose(ctx, partner); done {
			return res
		}
	}

	s.emit(StateNoAcceptance, nil, s.terms, "")
	return TradeResult{SessionID: s.id, Outcome: OutcomeNoAcceptance, Terms: s.terms, Scarcity: s.scarcity}
}

func (g *Game) composeTerms(ctx context.Context, initiator *agents.Player) (Terms, error) {
	prop, err := g.human().ComposeOffer(ctx, initiator)
	if err != nil {
		return Terms{}, fmt.Errorf("compose offer: %w", err)
	}
	return ParseTerms(prop)
}

func (s *session) invalid(err error) TradeResult {
	s.g.emit(Event{
		Category: CategoryTrade,
		Kind:     StateInvalid,
		Player:   s.initiator.Name,
		Session:  s.id,
		Reason:   err.Error(),
	})
	slog.Debug("trade proposal rejected", "session", s.id, "initiator", s.initiator.Name, "err", err)
	return TradeResult{SessionID: s.id, Outcome: OutcomeInvalid, Terms: s.terms, Err: err}
}

// propose puts the original terms to one partner. done is true when the
// session completed.
func (s *session) propose(ctx context.Context, partner *agents.Player) (TradeResult, bool) {
	s.emit(StateProposed, partner, s.terms, "")

	var d agents.Decision
	if partner.Human {
		d = counterFromResponse(s.g.human().RespondToOffer(ctx, partner, s.initiator, s.terms), s.terms.Offer)
	} else {
		d = agents.Evaluate(partner, s.terms.Offer, s.terms.Request, s.scarcity, s.g.Rng)
	}

	switch d.Verdict {
	case agents.VerdictAccept:
		s.emit(StateAccepted, partner, s.terms, "")
		return s.execute(partner, s.terms, false)
	case agents.VerdictCounter:
		counter := Terms{Offer: d.Counter, Request: s.terms.Request}
		s.emit(StateCounterProposed, partner, counter, "")
		if !s.initiatorAccepts(ctx, partner, counter) {
			s.emit(StateDeclined, partner, counter, "counter declined by initiator")
			return TradeResult{}, false
		}
		s.emit(StateAccepted, partner, counter, "")
		return s.execute(partner, counter, true)
	default:
		s.emit(StateDeclined, partner, s.terms, "")
		return TradeResult{}, false
	}
}

// counterFromResponse turns a human answer into a decision with the full
// counter offer. A counter must demand at least one extra unit.
func counterFromResponse(r Response, offer economy.Bundle) agents.Decision {
	switch r.Verdict {
	case agents.VerdictAccept:
		return agents.Accept()
	case agents.VerdictCounter:
		if !r.Extra.Valid() || r.Extra.Total() <= 0 {
			return agents.Decline()
		}
		return agents.Decision{Verdict: agents.VerdictCounter, Counter: offer.Plus(r.Extra)}
	default:
		return agents.Decline()
	}
}

// initiatorAccepts asks the initiator about a counter. Agents judge the
// counter offer against the original request with their own template.
func (s *session) initiatorAccepts(ctx context.Context, partner *agents.Player, counter Terms) bool {
	if s.initiator.Human {
		return s.g.human().RespondToCounter(ctx, s.initiator, partner, s.terms, counter)
	}
	d := agents.Evaluate(s.initiator, counter.Offer, counter.Request, s.scarcity, s.g.Rng)
	return d.Verdict == agents.VerdictAccept
}

// execute moves the goods. A side that can no longer pay turns the
// acceptance into a decline and the session moves on.
func (s *session) execute(partner *agents.Player, terms Terms, countered bool) (TradeResult, bool) {
	if err := economy.Exchange(&s.initiator.Resources, terms.Offer, &partner.Resources, terms.Request); err != nil {
		s.emit(StateDeclined, partner, terms, err.Error())
		return TradeResult{}, false
	}
	s.emit(StateCompleted, partner, terms, "")
	slog.Debug("trade completed",
		"session", s.id,
		"initiator", s.initiator.Name,
		"partner", partner.Name,
		"offer", terms.Offer.String(),
		"request", terms.Request.String(),
	)
	return TradeResult{
		SessionID: s.id,
		Outcome:   OutcomeCompleted,
		Partner:   partner,
		Terms:     terms,
		Countered: countered,
		Scarcity:  s.scarcity,
	}, true
}

func (s *session) emit(state string, partner *agents.Player, terms Terms, reason string) {
	offer, request := terms.Offer, terms.Request
	e := Event{
		Category: CategoryTrade,
		Kind:     state,
		Player:   s.initiator.Name,
		Session:  s.id,
		Offer:    &offer,
		Request:  &request,
		Reason:   reason,
	}
	if partner != nil {
		e.Partner = partner.Name
	}
	s.g.emit(e)
}
