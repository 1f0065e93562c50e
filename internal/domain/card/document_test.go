package card

import "testing"

func TestHasThemeCaseFolding(t *testing.T) {
	doc := &Document{SynergyThemes: []string{"Token Generation", "Séance Combo"}}

	if !doc.HasTheme("token") {
		t.Error("substring match must ignore case")
	}
	if !doc.HasTheme("TOKEN GENERATION") {
		t.Error("full-theme match must ignore case")
	}
	// Non-ASCII letters fold too.
	if !doc.HasTheme("SÉANCE") {
		t.Error("case folding must cover non-ASCII letters")
	}
	if doc.HasTheme("") {
		t.Error("empty theme never matches")
	}
	if doc.HasTheme("lifegain") {
		t.Error("absent theme must not match")
	}
}
