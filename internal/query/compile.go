// Package query compiles search and suggestion requests into index query
// descriptors and ranks raw suggestion hits. Compilation and ranking are
// pure; the index connection never appears here.
package query

import (
	"fmt"
	"strings"

	"github.com/Toolenaar/decky/internal/db"
	"github.com/Toolenaar/decky/internal/domain"
	"github.com/Toolenaar/decky/internal/domain/search/filter"
	"github.com/Toolenaar/decky/internal/domain/search/request"
)

// Fixed boost factors for suggestion scoring clauses. Tag matches on the
// derived theme field outweigh free-text matches.
const (
	boostCommanderText  = 2.0
	boostCommanderTheme = 1.5
	boostThemeText      = 1.5
	boostThemeTag       = 2.0
	boostThemeMechanic  = 1.5
	boostStrategy       = 1.5
)

// indexedFormats are the formats carried as dedicated legality fields in
// the index schema.
var indexedFormats = map[string]bool{
	"standard": true, "modern": true, "legacy": true, "vintage": true,
	"commander": true, "pioneer": true, "pauper": true,
}

var allColors = []string{"W", "U", "B", "R", "G"}

// CompileSearch compiles a validated search request against the given index.
func CompileSearch(index string, req *request.Search) (*db.Query, error) {
	q := &db.Query{
		Index:  index,
		Offset: req.Pagination.From,
		Limit:  req.Pagination.Size,
	}

	if f := req.Filters; f != nil {
		if f.Name != "" {
			q.Scoring = append(q.Scoring, db.ScoringClause{
				Kind: db.ClauseText, Field: "name", Terms: []string{f.Name},
			})
		}
		if f.Text != "" {
			q.Scoring = append(q.Scoring, db.ScoringClause{
				Kind: db.ClauseText, Field: "oracle_text", Terms: []string{f.Text},
			})
		}

		must, err := compileRestrictive(f)
		if err != nil {
			return nil, err
		}
		expr, err := filter.NewExpression(must, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		q.Filters = expr
	}

	if req.Vector != nil && len(req.Vector.Embedding) > 0 {
		q.KNN = &db.KNNClause{
			Field:  "ai_embedding",
			Vector: req.Vector.Embedding,
			K:      req.Pagination.From + req.Pagination.Size,
		}
	}

	if len(req.Sort) > 0 {
		q.SortBy = req.Sort[0].Field
		q.SortAsc = req.Sort[0].Order == "asc"
	}

	return q, nil
}

func compileRestrictive(f *request.Filters) ([]filter.Condition, error) {
	var must []filter.Condition

	anyOf := func(key string, values []string) error {
		if len(values) == 0 {
			return nil
		}
		c, err := filter.NewAnyOf(key, values)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		must = append(must, c)
		return nil
	}

	if err := anyOf("colors", f.Colors); err != nil {
		return nil, err
	}
	if err := anyOf("color_identity", f.ColorIdentity); err != nil {
		return nil, err
	}
	if err := anyOf("types", f.Types); err != nil {
		return nil, err
	}
	if err := anyOf("subtypes", f.Subtypes); err != nil {
		return nil, err
	}
	if err := anyOf("keywords", f.Keywords); err != nil {
		return nil, err
	}
	if err := anyOf("rarity", f.Rarity); err != nil {
		return nil, err
	}
	if err := anyOf("set_code", f.Sets); err != nil {
		return nil, err
	}
	if err := anyOf("synergy_themes", f.SynergyThemes); err != nil {
		return nil, err
	}
	if err := anyOf("deck_archetypes", f.DeckArchetypes); err != nil {
		return nil, err
	}

	for format, status := range f.Formats {
		field, err := legalityField(format)
		if err != nil {
			return nil, err
		}
		c, err := filter.NewMatch(field, strings.ToLower(status))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		must = append(must, c)
	}

	if f.ManaValue != nil {
		c, err := rangeCondition("mana_value", f.ManaValue.Min, f.ManaValue.Max)
		if err != nil {
			return nil, err
		}
		must = append(must, c)
	}
	if f.Price != nil {
		currency := f.Price.Currency
		if currency == "" {
			currency = "usd"
		}
		c, err := rangeCondition("price_"+currency, f.Price.Min, f.Price.Max)
		if err != nil {
			return nil, err
		}
		must = append(must, c)
	}

	return must, nil
}

// CompileSuggestions compiles a deck-building context into a suggestion
// query. Format legality and color identity are mandatory restrictive
// clauses; commander, theme and strategy contribute score only.
func CompileSuggestions(index string, ctx *request.Suggestion) (*db.Query, error) {
	field, err := legalityField(strings.ToLower(ctx.Format))
	if err != nil {
		return nil, err
	}
	legal, err := filter.NewMatch(field, "legal")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	expr, err := filter.NewExpression([]filter.Condition{legal}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	// Subset semantics: the card must carry no identity color outside the
	// requested set, expressed by excluding every other color.
	if len(ctx.ColorIdentity) > 0 {
		requested := make(map[string]bool, len(ctx.ColorIdentity))
		for _, c := range ctx.ColorIdentity {
			requested[strings.ToUpper(c)] = true
		}
		for _, color := range allColors {
			if requested[color] {
				continue
			}
			c, err := filter.NewMatch("color_identity", color)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
			}
			expr = expr.AndNot(c)
		}
	}

	if ctx.Budget > 0 {
		c, err := filter.NewRange("price_usd", filter.AtMost(ctx.Budget))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		expr = expr.And(c)
	}

	if len(ctx.ExistingCards) > 0 {
		c, err := filter.NewAnyOf("uuid", ctx.ExistingCards)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		expr = expr.AndNot(c)
	}

	var scoring []db.ScoringClause
	if ctx.Commander != "" {
		scoring = append(scoring,
			db.ScoringClause{Kind: db.ClauseText, Field: "oracle_text", Terms: []string{ctx.Commander}, Boost: boostCommanderText, Optional: true},
			db.ScoringClause{Kind: db.ClauseTag, Field: "synergy_themes", Terms: []string{"commander-synergy"}, Boost: boostCommanderTheme, Optional: true},
		)
	}
	if ctx.Theme != "" {
		scoring = append(scoring,
			db.ScoringClause{Kind: db.ClauseText, Field: "oracle_text", Terms: []string{ctx.Theme}, Boost: boostThemeText, Optional: true},
			db.ScoringClause{Kind: db.ClauseTag, Field: "synergy_themes", Terms: []string{ctx.Theme}, Boost: boostThemeTag, Optional: true},
			db.ScoringClause{Kind: db.ClauseTag, Field: "mechanic_categories", Terms: []string{ctx.Theme}, Boost: boostThemeMechanic, Optional: true},
		)
	}
	if ctx.Strategy != "" {
		scoring = append(scoring, db.ScoringClause{
			Kind: db.ClauseTag, Field: "deck_archetypes", Terms: []string{ctx.Strategy}, Boost: boostStrategy, Optional: true,
		})
	}

	return &db.Query{
		Index:   index,
		Scoring: scoring,
		Filters: expr,
		Limit:   request.SuggestionPoolSize,
	}, nil
}

func legalityField(format string) (string, error) {
	if !indexedFormats[format] {
		return "", fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidRequest, format)
	}
	return "legality_" + format, nil
}

func rangeCondition(key string, min, max *float64) (filter.Condition, error) {
	r, err := filter.Between(min, max)
	if err != nil {
		return filter.Condition{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	c, err := filter.NewRange(key, r)
	if err != nil {
		return filter.Condition{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return c, nil
}
