package index

import "github.com/Toolenaar/decky/internal/db"

// KeyPrefix is the document key namespace in the index store.
const KeyPrefix = "card:"

// SuggestDict is the autocomplete dictionary for card names.
const SuggestDict = "cards:suggest"

// legalityFormats get a dedicated TAG field each so format legality can be
// filtered without dynamic map access.
var legalityFormats = []string{
	"standard", "modern", "legacy", "vintage", "commander", "pioneer", "pauper",
}

// cardIndexDefinition builds the card search index schema. vectorDim sizes
// the similarity field; zero disables it.
func cardIndexDefinition(name string, vectorDim int) *db.IndexDefinition {
	b := db.NewIndex(name).
		Prefix(KeyPrefix).
		Tag("$.uuid", "uuid").
		SortableText("$.name", "name").
		Text("$.oracle_text", "oracle_text").
		Tag("$.colors[*]", "colors").
		Tag("$.color_identity[*]", "color_identity").
		Tag("$.types[*]", "types").
		Tag("$.subtypes[*]", "subtypes").
		Tag("$.keywords[*]", "keywords").
		Tag("$.rarity", "rarity").
		Tag("$.set_code", "set_code").
		Tag("$.synergy_themes[*]", "synergy_themes").
		Tag("$.deck_archetypes[*]", "deck_archetypes").
		Tag("$.mechanic_categories[*]", "mechanic_categories").
		SortableNumeric("$.mana_value", "mana_value").
		SortableNumeric("$.edhrec_rank", "edhrec_rank").
		SortableNumeric("$.popularity_score", "popularity_score").
		SortableText("$.release_date", "release_date").
		Numeric("$.prices.usd", "price_usd").
		Numeric("$.prices.eur", "price_eur").
		Numeric("$.prices.tix", "price_tix")

	for _, format := range legalityFormats {
		b.Tag("$.legalities."+format, "legality_"+format)
	}

	if vectorDim > 0 {
		b.VectorFlat("$.ai_embedding", "ai_embedding", vectorDim, "COSINE")
	}

	return b.MustBuild()
}
