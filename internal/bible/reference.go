package bible

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParsedReference is a successfully parsed scripture citation.
type ParsedReference struct {
	Book     string // canonical Korean book name
	Chapter  int
	Verse    int
	VerseEnd int // 0 when the citation has no range
}

// Label renders the parsed reference as the canonical human-readable form.
func (p ParsedReference) Label() string {
	return fmt.Sprintf("%s %d:%d", p.Book, p.Chapter, p.Verse)
}

// VerseMeta is the typed view of corpus document metadata. Every field is
// optional in the corpus; PopularityOrDefault fills the gap at scoring time.
type VerseMeta struct {
	Reference         string `json:"reference,omitempty"`
	Source            string `json:"source,omitempty"`
	Popularity        int    `json:"popularity,omitempty"`
	HasPopularity     bool   `json:"-"`
	ReferenceOverride string `json:"_reference_override,omitempty"`
}

// PopularityOrDefault returns the popularity prior, defaulting to fallback
// when the corpus document carries none.
func (m VerseMeta) PopularityOrDefault(fallback int) int {
	if m.HasPopularity {
		return m.Popularity
	}
	return fallback
}

var (
	// referenceInputPattern accepts free-form citations: optional numeric
	// book prefix, book token, chapter, ":" or "장", verse, optional range
	// suffix, optional "절". Anchored so garbage never partially matches.
	referenceInputPattern = regexp.MustCompile(
		`^\s*(\d?\s*[가-힣A-Za-z]{1,30})\s*(\d{1,3})\s*(?::|장)\s*(\d{1,3})\s*(?:[-–—~]\s*(\d{1,3}))?\s*절?\s*$`)

	// referenceSplitPattern splits a reference label into the book part and
	// the first digit run containing a colon ("시편 34:18-19 (개역)").
	referenceSplitPattern = regexp.MustCompile(`^(\d?\s*\D{1,30}?)\s*(\d{1,3}\s*:\s*\d{1,3}.*)$`)

	// chapterVersePattern finds the first chapter:verse shaped number pair
	// inside raw verse text.
	chapterVersePattern = regexp.MustCompile(`(\d{1,3})\s*:\s*(\d{1,3})`)

	// Inline citation markers embedded in chunk text, in both observed
	// shapes: "약5:15" and "약5장15절".
	inlineColonPattern    = regexp.MustCompile(`([가-힣]{1,3})\s*(\d{1,3})\s*:\s*(\d{1,3})`)
	inlineJangJeolPattern = regexp.MustCompile(`([가-힣]{1,3})\s*(\d{1,3})\s*장\s*(\d{1,3})\s*절`)

	rangeSeparators = []string{"-", "–", "—", "~"}
)

// ParseReferenceInput parses a human-entered citation ("마 10:5",
// "Matthew 10:5", "마10장5절") into a ParsedReference. Returns nil when the
// input does not match the grammar or the book token is not a known book.
func ParseReferenceInput(text string) *ParsedReference {
	m := referenceInputPattern.FindStringSubmatch(Normalize(text))
	if m == nil {
		return nil
	}
	book := CanonicalBookName(m[1])
	if !IsKnownBook(book) {
		return nil
	}
	chapter, _ := strconv.Atoi(m[2])
	verse, _ := strconv.Atoi(m[3])
	if chapter < 1 || verse < 1 {
		return nil
	}
	parsed := &ParsedReference{Book: book, Chapter: chapter, Verse: verse}
	if m[4] != "" {
		if end, err := strconv.Atoi(m[4]); err == nil && end >= verse {
			parsed.VerseEnd = end
		}
	}
	return parsed
}

// SplitReference breaks a reference label into its canonical book name and
// the numeric remainder, stripping parenthetical suffixes and collapsing a
// verse range to its starting verse.
func SplitReference(reference string) (book, remainder string) {
	reference = strings.TrimSpace(Normalize(reference))
	if i := strings.Index(reference, "("); i >= 0 {
		reference = strings.TrimSpace(reference[:i])
	}
	if reference == "" {
		return "", ""
	}

	var bookRaw string
	if m := referenceSplitPattern.FindStringSubmatch(reference); m != nil {
		bookRaw = strings.TrimSpace(m[1])
		remainder = strings.TrimSpace(m[2])
	} else {
		bookRaw = reference
	}
	book = CanonicalBookName(bookRaw)

	if remainder != "" {
		for _, sep := range rangeSeparators {
			if i := strings.Index(remainder, sep); i >= 0 {
				remainder = strings.TrimSpace(remainder[:i])
				break
			}
		}
	}
	return book, remainder
}

// NormalizeReference derives the canonical comparison key for a reference
// label. Two labels denoting the same verse normalize to the same key no
// matter how the book is spelled or spaced.
func NormalizeReference(reference string) string {
	book, remainder := SplitReference(reference)
	var base string
	switch {
	case book != "" && remainder != "":
		base = book + " " + remainder
	case book != "":
		base = book
	default:
		base = remainder
	}
	return strings.Join(strings.Fields(base), "")
}

// UnknownVerseLabel is the sentinel label when no reference can be derived
// from a corpus document at all.
const UnknownVerseLabel = "알 수 없는 구절"

// inlineScanWindow bounds how far into a document the inline citation scan
// looks for a leading marker.
const inlineScanWindow = 80

// BuildReferenceLabel derives the best-effort human-readable reference for a
// corpus document whose metadata may be incomplete. It degrades through:
// explicit reference metadata, book from the source field, chapter:verse from
// the raw text, then an inline citation scan over the head of the document.
// Never fails; the worst case is the unknown-verse sentinel.
func BuildReferenceLabel(meta VerseMeta, document string) string {
	refBook, refNumbers := SplitReference(meta.Reference)

	book := refBook
	if book == "" && meta.Source != "" {
		if src := CanonicalBookName(meta.Source); IsKnownBook(src) {
			book = src
		}
	}

	chapterVerse := ExtractChapterVerse(document)
	if chapterVerse == "" {
		chapterVerse = refNumbers
	}

	if book == "" || chapterVerse == "" {
		if b, cv := scanInlineCitation(document); b != "" {
			if book == "" {
				book = b
			}
			if chapterVerse == "" {
				chapterVerse = cv
			}
		}
	}

	switch {
	case book != "" && chapterVerse != "":
		return book + " " + chapterVerse
	case book != "":
		return book
	case chapterVerse != "":
		return chapterVerse
	}
	return UnknownVerseLabel
}

// ExtractChapterVerse returns the first "chapter:verse" pair found in the
// document text, or "" when there is none.
func ExtractChapterVerse(document string) string {
	if document == "" {
		return ""
	}
	m := chapterVersePattern.FindStringSubmatch(Normalize(document))
	if m == nil {
		return ""
	}
	return m[1] + ":" + m[2]
}

// scanInlineCitation looks at the head of the normalized document for an
// inline marker whose abbreviation resolves to a known book. Both the
// "약5:15" and the "약5장15절" families are recognized.
func scanInlineCitation(document string) (book, chapterVerse string) {
	head := Normalize(document)
	if runes := []rune(head); len(runes) > inlineScanWindow {
		head = string(runes[:inlineScanWindow])
	}
	for _, pattern := range []*regexp.Regexp{inlineJangJeolPattern, inlineColonPattern} {
		for _, m := range pattern.FindAllStringSubmatch(head, -1) {
			candidate := CanonicalBookName(m[1])
			if IsKnownBook(candidate) {
				return candidate, m[2] + ":" + m[3]
			}
		}
	}
	return "", ""
}
