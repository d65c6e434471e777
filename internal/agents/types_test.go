package agents

import "testing"

func TestVictoryPointsDerived(t *testing.T) {
	p := NewPlayer(0, "Ada", true, PersonalityDefault)
	if err := p.PlaceSettlement(3); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := p.PlaceSettlement(7); err != nil {
		t.Fatalf("place: %v", err)
	}
	if got := p.VictoryPoints(); got != 2 {
		t.Fatalf("expected 2 VP, got %d", got)
	}

	if err := p.PromoteToCity(3); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if got := p.VictoryPoints(); got != 3 {
		t.Fatalf("expected 3 VP after upgrade, got %d", got)
	}
	if p.HasSettlement(3) || !p.HasCity(3) {
		t.Fatal("upgraded location must be a city and not a settlement")
	}
	if p.StructureAt(3) != StructureCity || p.StructureAt(7) != StructureSettlement || p.StructureAt(1) != StructureNone {
		t.Fatal("unexpected structure lookup")
	}
}

func TestPlacementRules(t *testing.T) {
	p := NewPlayer(0, "Ada", false, PersonalityFair)
	if err := p.PromoteToCity(2); err == nil {
		t.Fatal("expected upgrade without settlement to fail")
	}
	if err := p.PlaceSettlement(2); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := p.PlaceSettlement(2); err == nil {
		t.Fatal("expected second settlement on same hex to fail")
	}
	if err := p.PromoteToCity(2); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := p.PlaceSettlement(2); err == nil {
		t.Fatal("expected settlement on own city hex to fail")
	}
}

func TestParsePersonality(t *testing.T) {
	tests := map[string]Personality{
		"":         PersonalityDefault,
		"none":     PersonalityDefault,
		"Generous": PersonalityGenerous,
		" fair ":   PersonalityFair,
		"greedy":   PersonalityGreedy,
	}
	for in, want := range tests {
		got, err := ParsePersonality(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q = %v, want %v", in, got, want)
		}
	}
	if _, err := ParsePersonality("shrewd"); err == nil {
		t.Fatal("expected unknown personality error")
	}
}
