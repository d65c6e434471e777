// Personality templates for AI trade negotiation. Each personality sets the
// ratio it accepts outright, how much a build-helping trade relaxes that, and
// how hard it counters when it refuses.
package agents

import (
	"fmt"
	"strings"
)

// Personality is a closed set with an explicit default variant.
type Personality uint8

const (
	PersonalityDefault Personality = iota
	PersonalityGenerous
	PersonalityFair
	PersonalityGreedy
)

var personalityNames = [...]string{"default", "generous", "fair", "greedy"}

func (p Personality) String() string {
	if int(p) >= len(personalityNames) {
		return fmt.Sprintf("personality(%d)", uint8(p))
	}
	return personalityNames[p]
}

// ParsePersonality maps a name to a personality. The empty string and
// "none" select the default.
func ParsePersonality(name string) (Personality, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "none":
		return PersonalityDefault, nil
	}
	for i, n := range personalityNames {
		if n == name {
			return Personality(i), nil
		}
	}
	return PersonalityDefault, fmt.Errorf("unknown personality %q", name)
}

func (p Personality) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Personality) UnmarshalText(text []byte) error {
	parsed, err := ParsePersonality(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// noHelpAccept marks a template where build help never unlocks acceptance.
const noHelpAccept = -1

// TradeTemplate holds one personality's thresholds, all as percent ratios
// (offer total * 100 vs request total * pct).
type TradeTemplate struct {
	// AcceptPct is the ratio accepted without any build help.
	AcceptPct int
	// StrictAccept requires the ratio to exceed AcceptPct rather than meet it.
	StrictAccept bool
	// HelpAcceptPct is the ratio accepted when the trade helps a build goal.
	HelpAcceptPct int
	// CounterPct is the ratio a counter aims for when the trade does not help.
	CounterPct int
	// HelpCounterPct is the ratio a counter aims for when the trade helps.
	HelpCounterPct int
}

var tradeTemplates = map[Personality]TradeTemplate{
	PersonalityGenerous: {
		AcceptPct:      100,
		HelpAcceptPct:  0, // Any trade that helps a build
		CounterPct:     100,
		HelpCounterPct: 100,
	},
	PersonalityFair: {
		AcceptPct:      100,
		HelpAcceptPct:  90,
		CounterPct:     100,
		HelpCounterPct: 90,
	},
	PersonalityGreedy: {
		AcceptPct:      100,
		StrictAccept:   true,
		HelpAcceptPct:  100,
		CounterPct:     110,
		HelpCounterPct: 100,
	},
	PersonalityDefault: {
		AcceptPct:      100,
		HelpAcceptPct:  noHelpAccept,
		CounterPct:     100,
		HelpCounterPct: 100,
	},
}

// Template returns the trade template for p, falling back to the default.
func Template(p Personality) TradeTemplate {
	if t, ok := tradeTemplates[p]; ok {
		return t
	}
	return tradeTemplates[PersonalityDefault]
}
