// Package card holds the catalog-side and index-side card representations.
package card

// SourceRecord is a card as stored in the canonical catalog. The catalog is
// loosely typed: every field beyond the identity may be absent, and several
// carry legacy aliases (id vs uuid, manaValue vs convertedManaCost). All
// normalization happens in the transform package, not here.
type SourceRecord struct {
	UUID      string `json:"uuid,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	AsciiName string `json:"asciiName,omitempty"`

	ManaCost          string  `json:"manaCost,omitempty"`
	ManaValue         float64 `json:"manaValue,omitempty"`
	ConvertedManaCost float64 `json:"convertedManaCost,omitempty"`

	Colors         []string `json:"colors,omitempty"`
	ColorIdentity  []string `json:"colorIdentity,omitempty"`
	ColorIndicator []string `json:"colorIndicator,omitempty"`

	Type       string   `json:"type,omitempty"`
	Types      []string `json:"types,omitempty"`
	Subtypes   []string `json:"subtypes,omitempty"`
	Supertypes []string `json:"supertypes,omitempty"`

	Text      string   `json:"text,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Power     string   `json:"power,omitempty"`
	Toughness string   `json:"toughness,omitempty"`
	Loyalty   string   `json:"loyalty,omitempty"`
	Defense   string   `json:"defense,omitempty"`

	Rarity  string `json:"rarity,omitempty"`
	SetCode string `json:"setCode,omitempty"`
	Number  string `json:"number,omitempty"`

	// Legality status keyed by format name, e.g. "commander" -> "Legal".
	// Keys and values arrive in mixed case.
	Legalities map[string]string `json:"legalities,omitempty"`

	EdhrecRank      int     `json:"edhrecRank,omitempty"`
	EdhrecSaltiness float64 `json:"edhrecSaltiness,omitempty"`

	Layout       string   `json:"layout,omitempty"`
	BorderColor  string   `json:"borderColor,omitempty"`
	FrameVersion string   `json:"frameVersion,omitempty"`
	FrameEffects []string `json:"frameEffects,omitempty"`
	Finishes     []string `json:"finishes,omitempty"`
	HasFoil      bool     `json:"hasFoil,omitempty"`
	HasNonFoil   bool     `json:"hasNonFoil,omitempty"`

	IsReserved    bool `json:"isReserved,omitempty"`
	IsFullArt     bool `json:"isFullArt,omitempty"`
	IsPromo       bool `json:"isPromo,omitempty"`
	IsReprint     bool `json:"isReprint,omitempty"`
	IsAlternative bool `json:"isAlternative,omitempty"`
	IsTextless    bool `json:"isTextless,omitempty"`
	IsOversized   bool `json:"isOversized,omitempty"`
	IsFunny       bool `json:"isFunny,omitempty"`

	ReleaseDate         string `json:"releaseDate,omitempty"`
	OriginalReleaseDate string `json:"originalReleaseDate,omitempty"`

	Artist     string   `json:"artist,omitempty"`
	ArtistIDs  []string `json:"artistIds,omitempty"`
	FlavorText string   `json:"flavorText,omitempty"`
	Language   string   `json:"language,omitempty"`

	Rulings      []Ruling `json:"rulings,omitempty"`
	FaceName     string   `json:"faceName,omitempty"`
	OtherFaceIDs []string `json:"otherFaceIds,omitempty"`
	Variations   []string `json:"variations,omitempty"`

	Identifiers  *SourceIdentifiers `json:"identifiers,omitempty"`
	PurchaseURLs *PurchaseURLs      `json:"purchaseUrls,omitempty"`
	RelatedCards *RelatedCards      `json:"relatedCards,omitempty"`

	// StorageImageURIs is the owned-storage image mirror, keyed by format
	// (small, normal, large, png, artCrop, borderCrop). Preferred over the
	// third-party images under ScryfallData when both exist.
	StorageImageURIs map[string]string `json:"storageImageUris,omitempty"`

	// ScryfallData carries third-party enrichment attached by the updater.
	ScryfallData *ScryfallData `json:"scryfallData,omitempty"`
}

// Ruling is a single oracle ruling attached to a card.
type Ruling struct {
	Date string `json:"date,omitempty"`
	Text string `json:"text,omitempty"`
}

// SourceIdentifiers holds cross-reference ids from the catalog.
type SourceIdentifiers struct {
	ScryfallID             string `json:"scryfallId,omitempty"`
	ScryfallOracleID       string `json:"scryfallOracleId,omitempty"`
	ScryfallIllustrationID string `json:"scryfallIllustrationId,omitempty"`
	MtgoID                 string `json:"mtgoId,omitempty"`
	MtgArenaID             string `json:"mtgArenaId,omitempty"`
	TcgplayerProductID     string `json:"tcgplayerProductId,omitempty"`
	McmID                  string `json:"mcmId,omitempty"`
	MultiverseID           string `json:"multiverseId,omitempty"`
}

// PurchaseURLs holds store links from the catalog.
type PurchaseURLs struct {
	Tcgplayer   string `json:"tcgplayer,omitempty"`
	Cardmarket  string `json:"cardmarket,omitempty"`
	CardKingdom string `json:"cardKingdom,omitempty"`
}

// RelatedCards groups ids of mechanically related cards.
type RelatedCards struct {
	Tokens         []string `json:"tokens,omitempty"`
	ReverseRelated []string `json:"reverseRelated,omitempty"`
	Spellbook      []string `json:"spellbook,omitempty"`
}

// ScryfallData is the third-party enrichment blob. Prices arrive as strings.
type ScryfallData struct {
	Prices    *ScryfallPrices   `json:"prices,omitempty"`
	ImageURIs map[string]string `json:"image_uris,omitempty"`
}

// ScryfallPrices holds third-party price quotes as decimal strings.
type ScryfallPrices struct {
	USD     string `json:"usd,omitempty"`
	USDFoil string `json:"usd_foil,omitempty"`
	EUR     string `json:"eur,omitempty"`
	EURFoil string `json:"eur_foil,omitempty"`
	Tix     string `json:"tix,omitempty"`
}

// Identity resolves the record's stable id: uuid first, legacy id second.
func (s *SourceRecord) Identity() string {
	if s.UUID != "" {
		return s.UUID
	}
	return s.ID
}
