package query

import (
	"testing"

	"github.com/Toolenaar/decky/internal/domain/card"
	"github.com/Toolenaar/decky/internal/domain/search/request"
	"github.com/Toolenaar/decky/internal/domain/search/result"
)

func hit(score float64, d *card.Document) result.Hit {
	return result.Hit{Document: d, Score: score}
}

func TestRank_TieBreakOrder(t *testing.T) {
	byScore := &card.Document{UUID: "a", Name: "High Score"}
	byPopularity := &card.Document{UUID: "b", Name: "Popular", PopularityScore: 90}
	lessPopular := &card.Document{UUID: "c", Name: "Less Popular", PopularityScore: 40}
	byRank := &card.Document{UUID: "d", Name: "Low Rank", PopularityScore: 40, EdhrecRank: 10}
	byRankWorse := &card.Document{UUID: "e", Name: "High Rank", PopularityScore: 40, EdhrecRank: 5000}

	hits := []result.Hit{
		hit(1, byRankWorse),
		hit(1, lessPopular),
		hit(1, byPopularity),
		hit(2, byScore),
		hit(1, byRank),
	}

	out := Rank(hits, &request.Suggestion{Format: "commander"})

	got := make([]string, len(out))
	for i, s := range out {
		got[i] = s.Card.UUID
	}

	// Relevance first, then popularity, then community rank; a card with
	// no rank sorts after any ranked card.
	want := []string{"a", "b", "d", "e", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestRank_ReasonsCoOccur(t *testing.T) {
	d := &card.Document{
		UUID:           "a",
		SynergyThemes:  []string{"counters"},
		DeckArchetypes: []string{"control"},
		EdhrecRank:     500,
	}
	ctx := &request.Suggestion{Format: "commander", Theme: "counters", Strategy: "control"}

	out := Rank([]result.Hit{hit(1, d)}, ctx)
	if len(out) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(out))
	}

	reasons := out[0].Reasons
	if len(reasons) != 3 {
		t.Fatalf("expected 3 reasons, got %v", reasons)
	}
	if reasons[0] != "Synergizes with counters theme" {
		t.Errorf("reasons[0] = %q", reasons[0])
	}
	if reasons[1] != "Popular card (EDHRec rank: 500)" {
		t.Errorf("reasons[1] = %q", reasons[1])
	}
	if reasons[2] != "Fits control strategy" {
		t.Errorf("reasons[2] = %q", reasons[2])
	}
}

func TestSynergyScore(t *testing.T) {
	d := &card.Document{
		UUID:           "a",
		SynergyThemes:  []string{"tokens"},
		DeckArchetypes: []string{"aggro"},
		EdhrecRank:     1000,
	}
	ctx := &request.Suggestion{Format: "commander", Theme: "tokens", Strategy: "aggro"}

	out := Rank([]result.Hit{hit(1, d)}, ctx)
	// 30 theme + 20 archetype + (20 - 1000/500) rank bonus.
	if out[0].SynergyScore != 68 {
		t.Errorf("SynergyScore = %v, want 68", out[0].SynergyScore)
	}

	// Clamped at 100 once popularity kicks in.
	d.PopularityScore = 95
	out = Rank([]result.Hit{hit(1, d)}, ctx)
	if out[0].SynergyScore != 100 {
		t.Errorf("SynergyScore = %v, want 100", out[0].SynergyScore)
	}
}

func TestRank_BudgetFit(t *testing.T) {
	cheap := &card.Document{UUID: "a", Prices: &card.Prices{USD: 5}}
	pricey := &card.Document{UUID: "b", Prices: &card.Prices{USD: 50}}
	unknown := &card.Document{UUID: "c"}

	ctx := &request.Suggestion{Format: "commander", Budget: 10}
	out := Rank([]result.Hit{hit(3, cheap), hit(2, pricey), hit(1, unknown)}, ctx)

	if !out[0].BudgetFit {
		t.Error("cheap card should fit budget")
	}
	if out[1].BudgetFit {
		t.Error("pricey card should not fit budget")
	}
	if !out[2].BudgetFit {
		t.Error("unknown price counts as within budget")
	}

	// No budget means everything fits.
	out = Rank([]result.Hit{hit(1, pricey)}, &request.Suggestion{Format: "commander"})
	if !out[0].BudgetFit {
		t.Error("no budget set, everything fits")
	}
}

func TestDeckRole_FirstMatchWins(t *testing.T) {
	tests := []struct {
		name string
		doc  card.Document
		want string
	}{
		{"land outranks text", card.Document{Types: []string{"Land"}, OracleText: "Draw a card."}, "Mana Base"},
		{"draw outranks removal", card.Document{OracleText: "Draw a card, then destroy target creature."}, "Card Draw"},
		{"removal", card.Document{OracleText: "Destroy target creature."}, "Removal"},
		{"exile is removal", card.Document{OracleText: "Exile target permanent."}, "Removal"},
		{"big creature is threat", card.Document{Types: []string{"Creature"}, Power: "6", ManaValue: 6}, "Threat"},
		{"efficient creature is threat", card.Document{Types: []string{"Creature"}, Power: "4", ManaValue: 2}, "Threat"},
		{"small creature", card.Document{Types: []string{"Creature"}, Power: "1", ManaValue: 2}, "Creature"},
		{"counterspell", card.Document{OracleText: "Counter target spell."}, "Counterspell"},
		{"tutor", card.Document{OracleText: "Search your library for a card."}, "Tutor"},
		{"ramp", card.Document{OracleText: "Add {G}{G} to your mana pool."}, "Ramp"},
		{"utility fallback", card.Document{OracleText: "Prevent all combat damage this turn."}, "Utility"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deckRole(&tt.doc); got != tt.want {
				t.Errorf("deckRole = %q, want %q", got, tt.want)
			}
		})
	}
}
