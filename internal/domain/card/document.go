package card

import "strings"

// Document is the search replica of a card: direct fields copied from the
// SourceRecord plus derived analytical fields computed by the transform
// package. Field names are snake_cased to match the index schema. The uuid
// is the identity key; catalog_id is a secondary reference only.
type Document struct {
	UUID      string `json:"uuid"`
	CatalogID string `json:"catalog_id,omitempty"`
	Name      string `json:"name"`
	AsciiName string `json:"ascii_name,omitempty"`

	ManaCost          string  `json:"mana_cost,omitempty"`
	ManaValue         float64 `json:"mana_value"`
	ConvertedManaCost float64 `json:"converted_mana_cost"`

	Colors         []string `json:"colors"`
	ColorIdentity  []string `json:"color_identity"`
	ColorIndicator []string `json:"color_indicator,omitempty"`

	TypeLine   string   `json:"type_line,omitempty"`
	Types      []string `json:"types"`
	Subtypes   []string `json:"subtypes"`
	Supertypes []string `json:"supertypes"`

	OracleText string   `json:"oracle_text,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Power      string   `json:"power,omitempty"`
	Toughness  string   `json:"toughness,omitempty"`
	Loyalty    string   `json:"loyalty,omitempty"`
	Defense    string   `json:"defense,omitempty"`

	Rarity          string `json:"rarity,omitempty"`
	SetCode         string `json:"set_code,omitempty"`
	CollectorNumber string `json:"collector_number,omitempty"`

	// Legalities is keyed by lower-cased format, values lower-cased status.
	Legalities map[string]string `json:"legalities"`

	Prices       *Prices        `json:"prices,omitempty"`
	PurchaseURLs *PurchaseLinks `json:"purchase_urls,omitempty"`

	EdhrecRank      int     `json:"edhrec_rank,omitempty"`
	EdhrecSaltiness float64 `json:"edhrec_saltiness,omitempty"`

	Layout       string   `json:"layout,omitempty"`
	BorderColor  string   `json:"border_color,omitempty"`
	FrameVersion string   `json:"frame_version,omitempty"`
	FrameEffects []string `json:"frame_effects,omitempty"`
	Finishes     []string `json:"finishes"`
	HasFoil      bool     `json:"has_foil"`
	HasNonFoil   bool     `json:"has_non_foil"`

	IsReserved    bool `json:"is_reserved,omitempty"`
	IsFullArt     bool `json:"is_full_art,omitempty"`
	IsPromo       bool `json:"is_promo,omitempty"`
	IsReprint     bool `json:"is_reprint,omitempty"`
	IsAlternative bool `json:"is_alternative,omitempty"`
	IsTextless    bool `json:"is_textless,omitempty"`
	IsOversized   bool `json:"is_oversized,omitempty"`
	IsFunny       bool `json:"is_funny,omitempty"`

	ReleaseDate         string `json:"release_date,omitempty"`
	OriginalReleaseDate string `json:"original_release_date,omitempty"`

	Artist     string   `json:"artist,omitempty"`
	ArtistIDs  []string `json:"artist_ids,omitempty"`
	FlavorText string   `json:"flavor_text,omitempty"`
	Language   string   `json:"language,omitempty"`

	ImageURIs    map[string]string `json:"image_uris,omitempty"`
	PreviewImage string            `json:"preview_image,omitempty"`

	ScryfallID             string       `json:"scryfall_id,omitempty"`
	ScryfallOracleID       string       `json:"scryfall_oracle_id,omitempty"`
	ScryfallIllustrationID string       `json:"scryfall_illustration_id,omitempty"`
	Identifiers            *Identifiers `json:"identifiers,omitempty"`

	RulingsCount int      `json:"rulings_count,omitempty"`
	CardFaces    []Face   `json:"card_faces,omitempty"`
	OtherFaceIDs []string `json:"other_face_ids,omitempty"`
	Variations   []string `json:"variations,omitempty"`
	RelatedCards []string `json:"related_cards,omitempty"`

	// AIEmbedding is populated by an out-of-band enrichment job; the
	// transform never sets it. Present documents participate in
	// vector-similarity scoring.
	AIEmbedding []float32 `json:"ai_embedding,omitempty"`

	// Derived analytical fields.
	SynergyThemes      []string           `json:"synergy_themes"`
	DeckArchetypes     []string           `json:"deck_archetypes"`
	ComboPotential     float64            `json:"combo_potential"`
	PopularityScore    float64            `json:"popularity_score"`
	TribalTypes        []string           `json:"tribal_types"`
	MechanicCategories []string           `json:"mechanic_categories"`
	ColorWeight        ColorWeight        `json:"color_weight"`
	FormatPlayability  map[string]float64 `json:"format_playability"`
}

// Prices holds normalized numeric price quotes.
type Prices struct {
	USD     float64 `json:"usd,omitempty"`
	USDFoil float64 `json:"usd_foil,omitempty"`
	EUR     float64 `json:"eur,omitempty"`
	EURFoil float64 `json:"eur_foil,omitempty"`
	Tix     float64 `json:"tix,omitempty"`
}

// PurchaseLinks holds store links on the index side.
type PurchaseLinks struct {
	Tcgplayer   string `json:"tcgplayer,omitempty"`
	Cardmarket  string `json:"cardmarket,omitempty"`
	Cardkingdom string `json:"cardkingdom,omitempty"`
}

// Identifiers holds cross-reference ids on the index side.
type Identifiers struct {
	MtgoID       string `json:"mtgo_id,omitempty"`
	ArenaID      string `json:"arena_id,omitempty"`
	TcgplayerID  string `json:"tcgplayer_id,omitempty"`
	CardmarketID string `json:"cardmarket_id,omitempty"`
	MultiverseID string `json:"multiverse_id,omitempty"`
}

// Face is one face of a multi-face card.
type Face struct {
	Name       string `json:"name"`
	ManaCost   string `json:"mana_cost,omitempty"`
	TypeLine   string `json:"type_line,omitempty"`
	OracleText string `json:"oracle_text,omitempty"`
	Power      string `json:"power,omitempty"`
	Toughness  string `json:"toughness,omitempty"`
	Loyalty    string `json:"loyalty,omitempty"`
	Defense    string `json:"defense,omitempty"`
}

// ColorWeight is a normalized pip distribution over the six color buckets.
// For any card with at least one pip the values sum to 1.0; a card with no
// cost and no declared colors gets Colorless=1.
type ColorWeight struct {
	White     float64 `json:"white"`
	Blue      float64 `json:"blue"`
	Black     float64 `json:"black"`
	Red       float64 `json:"red"`
	Green     float64 `json:"green"`
	Colorless float64 `json:"colorless"`
}

// Sum returns the total weight across all buckets.
func (w ColorWeight) Sum() float64 {
	return w.White + w.Blue + w.Black + w.Red + w.Green + w.Colorless
}

// HasTheme reports whether the document carries the given synergy theme,
// matching by substring the way suggestion scoring does.
func (d *Document) HasTheme(theme string) bool {
	if theme == "" {
		return false
	}
	needle := strings.ToLower(theme)
	for _, t := range d.SynergyThemes {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// HasArchetype reports whether the document carries the given archetype tag.
func (d *Document) HasArchetype(archetype string) bool {
	for _, a := range d.DeckArchetypes {
		if a == archetype {
			return true
		}
	}
	return false
}

// HasType reports whether the document's card types include t (exact match).
func (d *Document) HasType(t string) bool {
	for _, ct := range d.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// PriceUSD returns the USD price, or 0 when unknown.
func (d *Document) PriceUSD() float64 {
	if d.Prices == nil {
		return 0
	}
	return d.Prices.USD
}
