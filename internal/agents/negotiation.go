package agents

import (
	"math"

	"github.com/talgya/hexbarter/internal/economy"
	"github.com/talgya/hexbarter/internal/entropy"
)

// Verdict is the outcome of evaluating a proposed trade.
type Verdict uint8

const (
	VerdictDecline Verdict = iota
	VerdictAccept
	VerdictCounter
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccept:
		return "accept"
	case VerdictCounter:
		return "counter"
	default:
		return "decline"
	}
}

// Decision is a verdict plus, for VerdictCounter, the revised offer.
// The revised offer is the full give-side bundle, not a delta.
type Decision struct {
	Verdict Verdict
	Counter economy.Bundle
}

func Accept() Decision  { return Decision{Verdict: VerdictAccept} }
func Decline() Decision { return Decision{Verdict: VerdictDecline} }

// Assessment records whether a trade moves the decider toward a build.
type Assessment struct {
	HelpsSettlement bool
	HelpsCity       bool
}

// Helps reports whether the trade helps either build goal.
func (a Assessment) Helps() bool {
	return a.HelpsSettlement || a.HelpsCity
}

// Assess simulates the decider's balance after giving request and receiving
// offer, and reports which build shortfalls strictly shrink.
func Assess(balance, offer, request economy.Bundle) Assessment {
	after := balance.Minus(request).Plus(offer)
	return Assessment{
		HelpsSettlement: after.Shortfall(economy.SettlementCost) < balance.Shortfall(economy.SettlementCost),
		HelpsCity:       after.Shortfall(economy.CityCost) < balance.Shortfall(economy.CityCost),
	}
}

// Ratio is total offered over total requested. An empty request is +Inf.
func Ratio(offer, request economy.Bundle) float64 {
	req := request.Total()
	if req <= 0 {
		return math.Inf(1)
	}
	return float64(offer.Total()) / float64(req)
}

// Decide applies the personality's trade template to a proposal.
// The decider receives offer and gives request. scarcity is carried for
// callers' benefit; no template branches on it.
func Decide(p Personality, balance, offer, request economy.Bundle, assessment Assessment, scarcity bool, rng entropy.Source) Decision {
	if !balance.Covers(request) {
		return Decline()
	}

	sumOffer := offer.Total()
	sumReq := request.Total()
	if sumReq <= 0 {
		return Accept()
	}

	tmpl := Template(p)

	if meetsRatio(sumOffer, sumReq, tmpl.AcceptPct, tmpl.StrictAccept) {
		return Accept()
	}

	helps := assessment.Helps()
	if helps && tmpl.HelpAcceptPct != noHelpAccept && meetsRatio(sumOffer, sumReq, tmpl.HelpAcceptPct, false) {
		return Accept()
	}

	targetPct := tmpl.CounterPct
	if helps {
		targetPct = tmpl.HelpCounterPct
	}
	return proposeCounter(offer, counterIncrease(sumOffer, sumReq, targetPct), rng)
}

// Evaluate checks the decider can fill the request, assesses build help
// and decides.
func Evaluate(decider *Player, offer, request economy.Bundle, scarcity bool, rng entropy.Source) Decision {
	balance := decider.Balance()
	if !balance.Covers(request) {
		return Decline()
	}
	return Decide(decider.Personality, balance, offer, request, Assess(balance, offer, request), scarcity, rng)
}

// meetsRatio compares offer/request against pct percent without floats.
func meetsRatio(sumOffer, sumReq, pct int, strict bool) bool {
	lhs := 100 * sumOffer
	rhs := pct * sumReq
	if strict {
		return lhs > rhs
	}
	return lhs >= rhs
}

// counterIncrease is max(1, ceil(pct/100*sumReq - sumOffer)).
func counterIncrease(sumOffer, sumReq, pct int) int {
	gap := pct*sumReq - 100*sumOffer
	inc := 0
	if gap > 0 {
		inc = (gap + 99) / 100
	}
	if inc < 1 {
		inc = 1
	}
	return inc
}

// proposeCounter adds increase to one resource already present in the offer.
// An empty offer cannot be countered.
func proposeCounter(offer economy.Bundle, increase int, rng entropy.Source) Decision {
	extra, ok := entropy.Pick(rng, offer.Present())
	if !ok {
		return Decline()
	}
	counter := offer
	counter[extra] += increase
	return Decision{Verdict: VerdictCounter, Counter: counter}
}
