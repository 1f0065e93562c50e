package sync

import "github.com/Toolenaar/decky/internal/domain/card"

// imageKeyForIndex translates the catalog's camelCase image keys to the
// snake_case keys used in the index.
func imageKeyForIndex(key string) string {
	switch key {
	case "artCrop":
		return "art_crop"
	case "borderCrop":
		return "border_crop"
	}
	return key
}

// inSync compares a freshly transformed document against the indexed one
// over a fixed scalar field subset plus the owned image map. Intentionally
// partial: anything outside this subset is not checked.
func inSync(expected, actual *card.Document, src *card.SourceRecord) bool {
	if actual == nil {
		return false
	}

	if expected.Name != actual.Name ||
		expected.ManaCost != actual.ManaCost ||
		expected.ManaValue != actual.ManaValue ||
		expected.OracleText != actual.OracleText ||
		expected.TypeLine != actual.TypeLine ||
		expected.Power != actual.Power ||
		expected.Toughness != actual.Toughness ||
		expected.Rarity != actual.Rarity ||
		expected.SetCode != actual.SetCode ||
		expected.CollectorNumber != actual.CollectorNumber {
		return false
	}

	// The owned image mirror is the primary drift concern.
	if len(src.StorageImageURIs) > 0 {
		if len(actual.ImageURIs) != len(src.StorageImageURIs) {
			return false
		}
		for key, url := range src.StorageImageURIs {
			if actual.ImageURIs[imageKeyForIndex(key)] != url {
				return false
			}
		}
	}

	return true
}
