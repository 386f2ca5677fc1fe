package bible

import (
	"fmt"
	"regexp"
	"strings"
)

// nextMarkerPattern locates the start of the following inline verse marker
// inside a multi-verse chunk ("눅 10:3", "요3:16"), which bounds the body of
// the verse being extracted.
var nextMarkerPattern = regexp.MustCompile(`\n?\s*[가-힣]{1,5}\s*\d+\s*:\s*\d+\s*`)

// ExtractExactVerseText recovers a single verse from a chunk that stores
// several consecutive verses. For each known abbreviation of book it looks
// for the inline marker "{abbrev}{chapter}:{verse}"; on a hit the verse body
// runs from just after the marker to the next reference-shaped marker, or to
// the end of the chunk when the target is its last verse. Returns the
// reconstructed "{abbrev}{chapter}:{verse} {body}" string, or "" when no
// abbreviation matches.
func ExtractExactVerseText(book string, chapter, verse int, document string) string {
	docNorm := Normalize(document)
	for _, abbrev := range Abbreviations(book) {
		startPattern := regexp.MustCompile(fmt.Sprintf(
			`%s\s*%d\s*:\s*%d\s*`, regexp.QuoteMeta(abbrev), chapter, verse))
		start := startPattern.FindStringIndex(docNorm)
		if start == nil {
			continue
		}

		rest := docNorm[start[1]:]
		end := len(rest)
		if next := nextMarkerPattern.FindStringIndex(rest); next != nil {
			end = next[0]
		}
		body := strings.TrimSpace(rest[:end])
		return strings.TrimSpace(fmt.Sprintf("%s%d:%d %s", abbrev, chapter, verse, body))
	}
	return ""
}

// DocumentHasMarker reports whether the whitespace-collapsed document
// contains an inline marker for the exact {book}{chapter}:{verse}
// combination, under any known abbreviation or the full book name.
func DocumentHasMarker(book string, chapter, verse int, document string) bool {
	compact := Compact(document)
	if compact == "" {
		return false
	}
	markers := make([]string, 0, len(Abbreviations(book))+1)
	for _, abbrev := range Abbreviations(book) {
		markers = append(markers, fmt.Sprintf("%s%d:%d", abbrev, chapter, verse))
	}
	markers = append(markers, Compact(fmt.Sprintf("%s %d:%d", book, chapter, verse)))
	for _, marker := range markers {
		if marker != "" && strings.Contains(compact, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
