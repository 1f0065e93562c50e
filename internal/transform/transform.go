// Package transform derives the enriched search document from a catalog
// record. Transform is a pure function: the same input always produces the
// same output, and missing optional fields degrade to defaults instead of
// errors. Only an unresolvable identity fails.
package transform

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Toolenaar/decky/internal/domain"
	"github.com/Toolenaar/decky/internal/domain/card"
)

const baselineScore = 50

// Transform maps a catalog record into its indexed document. idHint, when
// non-empty, is recorded as the secondary catalog reference and serves as
// the identity fallback for legacy records without a uuid.
func Transform(src *card.SourceRecord, idHint string) (*card.Document, error) {
	uuid := src.Identity()
	if uuid == "" {
		uuid = idHint
	}
	if uuid == "" {
		return nil, domain.ErrMissingIdentity
	}

	catalogID := idHint
	if catalogID == "" {
		catalogID = src.ID
	}

	manaValue := src.ManaValue
	if manaValue == 0 {
		manaValue = src.ConvertedManaCost
	}
	converted := src.ConvertedManaCost
	if converted == 0 {
		converted = src.ManaValue
	}

	doc := &card.Document{
		UUID:      uuid,
		CatalogID: catalogID,
		Name:      src.Name,
		AsciiName: src.AsciiName,

		ManaCost:          src.ManaCost,
		ManaValue:         manaValue,
		ConvertedManaCost: converted,

		Colors:         orEmpty(src.Colors),
		ColorIdentity:  orEmpty(src.ColorIdentity),
		ColorIndicator: src.ColorIndicator,

		TypeLine:   src.Type,
		Types:      orEmpty(src.Types),
		Subtypes:   orEmpty(src.Subtypes),
		Supertypes: orEmpty(src.Supertypes),

		OracleText: src.Text,
		Keywords:   src.Keywords,
		Power:      src.Power,
		Toughness:  src.Toughness,
		Loyalty:    src.Loyalty,
		Defense:    src.Defense,

		Rarity:          src.Rarity,
		SetCode:         src.SetCode,
		CollectorNumber: src.Number,

		Legalities: normalizeLegalities(src.Legalities),

		EdhrecRank:      src.EdhrecRank,
		EdhrecSaltiness: src.EdhrecSaltiness,

		Layout:       src.Layout,
		BorderColor:  src.BorderColor,
		FrameVersion: src.FrameVersion,
		FrameEffects: src.FrameEffects,
		Finishes:     orEmpty(src.Finishes),
		HasFoil:      src.HasFoil,
		HasNonFoil:   src.HasNonFoil,

		IsReserved:    src.IsReserved,
		IsFullArt:     src.IsFullArt,
		IsPromo:       src.IsPromo,
		IsReprint:     src.IsReprint,
		IsAlternative: src.IsAlternative,
		IsTextless:    src.IsTextless,
		IsOversized:   src.IsOversized,
		IsFunny:       src.IsFunny,

		ReleaseDate:         src.ReleaseDate,
		OriginalReleaseDate: src.OriginalReleaseDate,

		Artist:     src.Artist,
		ArtistIDs:  src.ArtistIDs,
		FlavorText: src.FlavorText,
		Language:   src.Language,

		RulingsCount: len(src.Rulings),
		OtherFaceIDs: src.OtherFaceIDs,
		Variations:   src.Variations,
	}

	if src.PurchaseURLs != nil {
		doc.PurchaseURLs = &card.PurchaseLinks{
			Tcgplayer:   src.PurchaseURLs.Tcgplayer,
			Cardmarket:  src.PurchaseURLs.Cardmarket,
			Cardkingdom: src.PurchaseURLs.CardKingdom,
		}
		doc.Prices = pricesFromPurchaseURLs(src.PurchaseURLs)
	}
	if src.ScryfallData != nil && src.ScryfallData.Prices != nil {
		doc.Prices = mergeScryfallPrices(doc.Prices, src.ScryfallData.Prices)
	}

	doc.ImageURIs, doc.PreviewImage = selectImages(src)

	if src.Identifiers != nil {
		doc.ScryfallID = src.Identifiers.ScryfallID
		doc.ScryfallOracleID = src.Identifiers.ScryfallOracleID
		doc.ScryfallIllustrationID = src.Identifiers.ScryfallIllustrationID
		doc.Identifiers = &card.Identifiers{
			MtgoID:       src.Identifiers.MtgoID,
			ArenaID:      src.Identifiers.MtgArenaID,
			TcgplayerID:  src.Identifiers.TcgplayerProductID,
			CardmarketID: src.Identifiers.McmID,
			MultiverseID: src.Identifiers.MultiverseID,
		}
	}

	if src.FaceName != "" {
		doc.CardFaces = []card.Face{{
			Name:       src.FaceName,
			ManaCost:   src.ManaCost,
			TypeLine:   src.Type,
			OracleText: src.Text,
			Power:      src.Power,
			Toughness:  src.Toughness,
			Loyalty:    src.Loyalty,
			Defense:    src.Defense,
		}}
	}

	if src.RelatedCards != nil {
		doc.RelatedCards = relatedCardIDs(src.RelatedCards)
	}

	text := strings.ToLower(src.Text)
	types := lowerAll(src.Types)
	subtypes := lowerAll(src.Subtypes)

	doc.SynergyThemes = detectSynergyThemes(text, types, subtypes)
	doc.DeckArchetypes = detectDeckArchetypes(manaValue, types, text)
	doc.ComboPotential = comboPotential(text)
	doc.PopularityScore = popularityScore(src)
	doc.TribalTypes = tribalTypes(subtypes, text)
	doc.MechanicCategories = mechanicCategories(src.Keywords, text)
	doc.ColorWeight = colorWeight(src.ManaCost, src.Colors)
	doc.FormatPlayability = formatPlayability(src, doc.Legalities)

	return doc, nil
}

func detectSynergyThemes(text string, types, subtypes []string) []string {
	themes := newTagSet()
	for _, r := range themeTextRules {
		if r.matches(text) {
			themes.add(r.tag)
		}
	}
	for _, st := range subtypeThemes {
		if hasString(subtypes, st.subtype) {
			themes.add(st.tag)
		}
	}
	for _, tt := range typeThemes {
		if hasString(types, tt.cardType) {
			themes.add(tt.tag)
		}
	}
	return themes.tags
}

func detectDeckArchetypes(manaValue float64, types []string, text string) []string {
	archetypes := newTagSet()
	for _, r := range archetypeRules {
		if r.matches(manaValue, types, text) {
			archetypes.add(r.tag)
		}
	}
	return archetypes.tags
}

func comboPotential(text string) float64 {
	var score float64
	for _, p := range comboPatterns {
		if p.rule.matches(text) {
			score += p.points
		}
	}
	return clamp(score)
}

func popularityScore(src *card.SourceRecord) float64 {
	score := float64(baselineScore)
	if src.EdhrecRank > 0 {
		score = max(0, 100-float64(src.EdhrecRank)/200)
	}
	if src.IsReserved {
		score += 10
	}
	if src.IsPromo {
		score += 5
	}
	score += rarityBonus(src.Rarity)
	return clamp(score)
}

func rarityBonus(rarity string) float64 {
	switch rarity {
	case "mythic":
		return 10
	case "rare":
		return 5
	}
	return 0
}

func tribalTypes(subtypes []string, text string) []string {
	found := newTagSet()
	for _, tribe := range tribes {
		if hasString(subtypes, tribe) || contains(text, tribe) {
			found.add(tribe)
		}
	}
	return found.tags
}

func mechanicCategories(keywords []string, text string) []string {
	mechanics := newTagSet()
	for _, kw := range keywords {
		if category, ok := keywordCategories[strings.ToLower(kw)]; ok {
			mechanics.add(category)
		}
	}
	for _, r := range mechanicTextRules {
		if r.matches(text) {
			mechanics.add(r.tag)
		}
	}
	return mechanics.tags
}

var pipPattern = regexp.MustCompile(`\{([WUBRGC\d]+)\}`)

func colorWeight(manaCost string, colors []string) card.ColorWeight {
	var w card.ColorWeight
	var totalPips float64

	for _, m := range pipPattern.FindAllStringSubmatch(manaCost, -1) {
		switch pip := m[1]; {
		case pip == "W":
			w.White++
			totalPips++
		case pip == "U":
			w.Blue++
			totalPips++
		case pip == "B":
			w.Black++
			totalPips++
		case pip == "R":
			w.Red++
			totalPips++
		case pip == "G":
			w.Green++
			totalPips++
		case pip == "C" || isDigits(pip):
			w.Colorless++
			totalPips++
		}
	}

	if totalPips > 0 {
		w.White /= totalPips
		w.Blue /= totalPips
		w.Black /= totalPips
		w.Red /= totalPips
		w.Green /= totalPips
		w.Colorless /= totalPips
	} else if len(colors) == 0 {
		w.Colorless = 1
	}

	return w
}

// formatPlayability scores each format the card is legal in; formats the
// card is not legal in are omitted entirely.
func formatPlayability(src *card.SourceRecord, legalities map[string]string) map[string]float64 {
	playability := make(map[string]float64, len(trackedFormats))
	for _, format := range trackedFormats {
		if legalities[format] != "legal" {
			continue
		}
		score := float64(baselineScore)
		if src.EdhrecRank > 0 && format == "commander" {
			score = max(0, 100-float64(src.EdhrecRank)/200)
		}
		score += rarityBonus(src.Rarity)
		playability[format] = clamp(score)
	}
	return playability
}

func normalizeLegalities(legalities map[string]string) map[string]string {
	out := make(map[string]string, len(legalities))
	for format, status := range legalities {
		if status == "" {
			continue
		}
		out[strings.ToLower(format)] = strings.ToLower(status)
	}
	return out
}

var urlPricePattern = regexp.MustCompile(`price=(\d+\.?\d*)`)

func pricesFromPurchaseURLs(urls *card.PurchaseURLs) *card.Prices {
	prices := &card.Prices{}
	if m := urlPricePattern.FindStringSubmatch(urls.Tcgplayer); m != nil {
		prices.USD, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := urlPricePattern.FindStringSubmatch(urls.Cardmarket); m != nil {
		prices.EUR, _ = strconv.ParseFloat(m[1], 64)
	}
	return prices
}

// mergeScryfallPrices overlays third-party quotes on top of any url-derived
// ones. Absent quotes never clobber a present value.
func mergeScryfallPrices(base *card.Prices, sp *card.ScryfallPrices) *card.Prices {
	if base == nil {
		base = &card.Prices{}
	}
	if v, ok := parsePrice(sp.USD); ok {
		base.USD = v
	}
	if v, ok := parsePrice(sp.USDFoil); ok {
		base.USDFoil = v
	}
	if v, ok := parsePrice(sp.EUR); ok {
		base.EUR = v
	}
	if v, ok := parsePrice(sp.EURFoil); ok {
		base.EURFoil = v
	}
	if v, ok := parsePrice(sp.Tix); ok {
		base.Tix = v
	}
	return base
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// selectImages prefers the owned storage mirror over third-party images and
// picks the preview from whichever map was selected.
func selectImages(src *card.SourceRecord) (map[string]string, string) {
	var uris map[string]string
	if len(src.StorageImageURIs) > 0 {
		uris = normalizeImageKeys(src.StorageImageURIs)
	} else if src.ScryfallData != nil && len(src.ScryfallData.ImageURIs) > 0 {
		uris = normalizeImageKeys(src.ScryfallData.ImageURIs)
	}
	if uris == nil {
		return nil, ""
	}

	preview := uris["small"]
	if preview == "" {
		preview = uris["normal"]
	}
	if preview == "" {
		preview = uris["large"]
	}
	return uris, preview
}

// imageKeyAliases translates catalog-side camelCase image keys to the index
// schema's snake_case keys.
var imageKeyAliases = map[string]string{
	"small":       "small",
	"normal":      "normal",
	"large":       "large",
	"png":         "png",
	"artCrop":     "art_crop",
	"art_crop":    "art_crop",
	"borderCrop":  "border_crop",
	"border_crop": "border_crop",
}

func normalizeImageKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, url := range in {
		if url == "" {
			continue
		}
		if normalized, ok := imageKeyAliases[key]; ok {
			out[normalized] = url
		}
	}
	return out
}

func relatedCardIDs(rc *card.RelatedCards) []string {
	ids := make([]string, 0, len(rc.Tokens)+len(rc.ReverseRelated)+len(rc.Spellbook))
	ids = append(ids, rc.Tokens...)
	ids = append(ids, rc.ReverseRelated...)
	ids = append(ids, rc.Spellbook...)
	return ids
}

// tagSet accumulates tags preserving first-insertion order.
type tagSet struct {
	tags []string
	seen map[string]struct{}
}

func newTagSet() *tagSet {
	return &tagSet{tags: []string{}, seen: map[string]struct{}{}}
}

func (s *tagSet) add(tag string) {
	if _, ok := s.seen[tag]; ok {
		return
	}
	s.seen[tag] = struct{}{}
	s.tags = append(s.tags, tag)
}

func contains(text, term string) bool {
	return strings.Contains(text, term)
}

func hasString(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
