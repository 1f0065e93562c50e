package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Toolenaar/decky/internal/domain/card"
	"github.com/Toolenaar/decky/internal/domain/search/request"
	"github.com/Toolenaar/decky/internal/domain/search/result"
)

// Synergy score weights.
const (
	synergyThemeWeight     = 30
	synergyArchetypeWeight = 20
	synergyRankCeiling     = 20
	synergyPopularityScale = 10

	popularRankThreshold = 1000
)

// Rank orders raw suggestion hits deterministically and enriches each with
// reasons, synergy score, budget fit and deck role. The tie-break is
// relevance desc, then popularity desc, then community rank asc; it is
// applied here rather than trusted to the index service.
func Rank(hits []result.Hit, ctx *request.Suggestion) []result.Suggestion {
	ordered := make([]result.Hit, len(hits))
	copy(ordered, hits)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Document.PopularityScore != b.Document.PopularityScore {
			return a.Document.PopularityScore > b.Document.PopularityScore
		}
		return rankOrdinal(a.Document) < rankOrdinal(b.Document)
	})

	suggestions := make([]result.Suggestion, 0, len(ordered))
	for _, hit := range ordered {
		suggestions = append(suggestions, result.Suggestion{
			Card:         hit.Document,
			Score:        hit.Score,
			SynergyScore: synergyScore(hit.Document, ctx),
			Reasons:      suggestionReasons(hit.Document, ctx),
			BudgetFit:    ctx.Budget == 0 || hit.Document.PriceUSD() <= ctx.Budget,
			RoleInDeck:   deckRole(hit.Document),
		})
	}
	return suggestions
}

// rankOrdinal treats an absent community rank as worst.
func rankOrdinal(d *card.Document) int {
	if d.EdhrecRank <= 0 {
		return int(^uint(0) >> 1)
	}
	return d.EdhrecRank
}

// suggestionReasons tests each qualifying signal independently; several can
// co-occur on one card.
func suggestionReasons(d *card.Document, ctx *request.Suggestion) []string {
	reasons := []string{}

	if ctx.Theme != "" && d.HasTheme(ctx.Theme) {
		reasons = append(reasons, fmt.Sprintf("Synergizes with %s theme", ctx.Theme))
	}
	if d.EdhrecRank > 0 && d.EdhrecRank < popularRankThreshold {
		reasons = append(reasons, fmt.Sprintf("Popular card (EDHRec rank: %d)", d.EdhrecRank))
	}
	if ctx.Strategy != "" && d.HasArchetype(ctx.Strategy) {
		reasons = append(reasons, fmt.Sprintf("Fits %s strategy", ctx.Strategy))
	}

	return reasons
}

// synergyScore is the additive 0-100 deck-fit score, separate from the
// index relevance score but computed from the same signals.
func synergyScore(d *card.Document, ctx *request.Suggestion) float64 {
	var score float64

	if ctx.Theme != "" && d.HasTheme(ctx.Theme) {
		score += synergyThemeWeight
	}
	if ctx.Strategy != "" && d.HasArchetype(ctx.Strategy) {
		score += synergyArchetypeWeight
	}
	if d.EdhrecRank > 0 {
		score += max(0, synergyRankCeiling-float64(d.EdhrecRank)/500)
	}
	if d.PopularityScore > 0 {
		score += d.PopularityScore * synergyPopularityScale
	}

	if score > 100 {
		return 100
	}
	return score
}

// deckRole classifies the card's role with a first-match rule list; order
// matters because several rules can match.
func deckRole(d *card.Document) string {
	text := strings.ToLower(d.OracleText)

	if d.HasType("Land") {
		return "Mana Base"
	}
	if strings.Contains(text, "draw") {
		return "Card Draw"
	}
	if strings.Contains(text, "destroy") || strings.Contains(text, "exile") {
		return "Removal"
	}
	if d.HasType("Creature") {
		power, _ := strconv.ParseFloat(d.Power, 64)
		if power >= 5 || power/d.ManaValue > 1.5 {
			return "Threat"
		}
		return "Creature"
	}
	if strings.Contains(text, "counter") {
		return "Counterspell"
	}
	if strings.Contains(text, "search your library") {
		return "Tutor"
	}
	if strings.Contains(text, "add") && strings.Contains(text, "mana") {
		return "Ramp"
	}
	return "Utility"
}
