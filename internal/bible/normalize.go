package bible

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize canonicalizes Korean/Latin text for comparison and pattern
// matching: NFC composition, width folding (fullwidth Latin and halfwidth
// jamo to their canonical forms), and non-breaking spaces mapped to plain
// spaces. Line breaks and spacing are otherwise preserved so inline verse
// markers keep their positions. Pure and total: Normalize("") == "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)
	text = width.Fold.String(text)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '　' {
			return ' '
		}
		return r
	}, text)
}

// Compact returns the normalized text lowercased with all whitespace
// removed. Used wherever two spellings of the same phrase must compare
// equal regardless of spacing ("요 3:16" vs "요3:16").
func Compact(text string) string {
	folded := strings.ToLower(Normalize(text))
	return strings.Join(strings.Fields(folded), "")
}
