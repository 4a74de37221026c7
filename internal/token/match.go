package token

// Pattern is what Matches compares a token against. Build one with Literal,
// Kind or Exact.
type Pattern struct {
	text    string
	cat     Category
	hasText bool
	hasCat  bool
}

// Literal matches on text only, whatever the token's category.
func Literal(text string) Pattern {
	return Pattern{text: text, hasText: true}
}

// Kind matches items tagged with cat, whatever their text.
func Kind(cat Category) Pattern {
	return Pattern{cat: cat, hasCat: true}
}

// Exact matches items tagged with cat whose text is exactly text.
func Exact(cat Category, text string) Pattern {
	return Pattern{text: text, cat: cat, hasText: true, hasCat: true}
}

// Matches reports whether tok satisfies p. Comparison is exact, never
// case-folded.
func Matches(tok Token, p Pattern) bool {
	if tok == nil {
		return false
	}
	if p.hasCat {
		cat, ok := tok.Category()
		if !ok || cat != p.cat {
			return false
		}
	}
	if p.hasText && tok.Text() != p.text {
		return false
	}
	return p.hasCat || p.hasText
}

// MatchesAny reports whether tok satisfies at least one of patterns.
func MatchesAny(tok Token, patterns ...Pattern) bool {
	for _, p := range patterns {
		if Matches(tok, p) {
			return true
		}
	}
	return false
}
