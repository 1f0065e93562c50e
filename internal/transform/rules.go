package transform

// Heuristic rule tables. Each table is an ordered list so that output tag
// order is deterministic; evaluation order never changes a tag's presence,
// only its position.

// textRule tags a card when its rules text contains every term in all and
// at least one term in any (an empty list is vacuously satisfied).
type textRule struct {
	tag string
	any []string
	all []string
}

func (r textRule) matches(text string) bool {
	for _, term := range r.all {
		if !contains(text, term) {
			return false
		}
	}
	if len(r.any) == 0 {
		return true
	}
	for _, term := range r.any {
		if contains(text, term) {
			return true
		}
	}
	return false
}

var themeTextRules = []textRule{
	{tag: "graveyard", any: []string{"graveyard"}},
	{tag: "discard", any: []string{"discard"}},
	{tag: "counters", any: []string{"+1/+1 counter"}},
	{tag: "artifacts", any: []string{"artifact"}},
	{tag: "enchantments", any: []string{"enchantment"}},
	{tag: "spellslinger", all: []string{"instant", "sorcery"}},
	{tag: "sacrifice", any: []string{"sacrifice"}},
	{tag: "tokens", any: []string{"token"}},
	{tag: "lifegain", any: []string{"lifegain", "gain life"}},
	{tag: "card-draw", any: []string{"draw"}},
	{tag: "landfall", any: []string{"landfall"}},
	{tag: "flying", any: []string{"flying"}},
	{tag: "etb", any: []string{"enters the battlefield"}},
	{tag: "death-triggers", any: []string{"dies"}},
	{tag: "storm", any: []string{"storm"}},
	{tag: "cascade", any: []string{"cascade"}},
}

// subtypeThemes maps a creature subtype to its tribal theme tag.
var subtypeThemes = []struct {
	subtype string
	tag     string
}{
	{"elf", "tribal-elves"},
	{"goblin", "tribal-goblins"},
	{"zombie", "tribal-zombies"},
	{"vampire", "tribal-vampires"},
	{"dragon", "tribal-dragons"},
	{"angel", "tribal-angels"},
	{"demon", "tribal-demons"},
	{"merfolk", "tribal-merfolk"},
}

// typeThemes maps a card type to a theme tag.
var typeThemes = []struct {
	cardType string
	tag      string
}{
	{"planeswalker", "superfriends"},
	{"equipment", "equipment"},
	{"aura", "auras"},
}

// archetypeRule tags a card from its mana value, types and rules text.
// Rules are independent: a card may collect several archetype tags.
type archetypeRule struct {
	tag     string
	matches func(manaValue float64, types []string, text string) bool
}

var archetypeRules = []archetypeRule{
	{"aggro", func(mv float64, types []string, _ string) bool {
		return mv <= 2 && hasString(types, "creature")
	}},
	{"control", func(mv float64, _ []string, text string) bool {
		return contains(text, "counter") || contains(text, "draw") || mv >= 4
	}},
	{"combo", func(_ float64, _ []string, text string) bool {
		return contains(text, "search your library") || contains(text, "win the game")
	}},
	{"midrange", func(mv float64, types []string, _ string) bool {
		return mv >= 3 && mv <= 5 && hasString(types, "creature")
	}},
	{"ramp", func(_ float64, _ []string, text string) bool {
		return contains(text, "add") && contains(text, "mana")
	}},
	{"mill", func(_ float64, _ []string, text string) bool {
		return contains(text, "mill") || contains(text, "library")
	}},
	{"burn", func(_ float64, types []string, text string) bool {
		return contains(text, "damage") && !hasString(types, "creature")
	}},
}

// comboPatterns award additive points for high-leverage text patterns.
var comboPatterns = []struct {
	points float64
	rule   textRule
}{
	{100, textRule{any: []string{"win the game"}}},
	{80, textRule{any: []string{"extra turn"}}},
	{60, textRule{any: []string{"search your library"}}},
	{40, textRule{any: []string{"untap"}}},
	{40, textRule{any: []string{"copy"}}},
	{70, textRule{any: []string{"storm"}}},
	{50, textRule{any: []string{"cascade"}}},
	{30, textRule{all: []string{"whenever", "cast"}}},
	{20, textRule{any: []string{"enters the battlefield"}}},
	{20, textRule{any: []string{"dies"}}},
}

// tribes are the creature types tracked for tribal_types, matched against
// subtypes and rules text.
var tribes = []string{
	"elf", "goblin", "zombie", "vampire", "dragon", "angel", "demon",
	"merfolk", "wizard", "warrior", "knight", "soldier", "human",
	"beast", "elemental", "spirit", "faerie", "giant", "treefolk",
	"shaman", "cleric", "rogue", "artifact creature", "sliver",
}

// keywordCategories buckets evergreen keyword abilities into mechanic
// categories.
var keywordCategories = map[string]string{
	"flying":         "evasion",
	"trample":        "evasion",
	"menace":         "evasion",
	"unblockable":    "evasion",
	"first strike":   "combat",
	"double strike":  "combat",
	"deathtouch":     "combat",
	"lifelink":       "combat",
	"vigilance":      "combat",
	"haste":          "tempo",
	"flash":          "tempo",
	"hexproof":       "protection",
	"shroud":         "protection",
	"indestructible": "protection",
	"protection":     "protection",
	"regenerate":     "protection",
}

var mechanicTextRules = []textRule{
	{tag: "card-advantage", any: []string{"draw"}},
	{tag: "disruption", any: []string{"discard"}},
	{tag: "removal", any: []string{"destroy"}},
	{tag: "removal", any: []string{"exile"}},
	{tag: "permission", any: []string{"counter"}},
	{tag: "bounce", all: []string{"return", "hand"}},
	{tag: "control", all: []string{"tap", "doesn't untap"}},
	{tag: "sacrifice", any: []string{"sacrifice"}},
	{tag: "token-generation", any: []string{"token"}},
}

// trackedFormats are the formats scored in format_playability.
var trackedFormats = []string{
	"standard", "modern", "legacy", "vintage", "commander", "pioneer", "pauper",
}
