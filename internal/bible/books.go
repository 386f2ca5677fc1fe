package bible

import "strings"

// Book describes one canonical book of the Bible together with the aliases
// under which users and corpus metadata spell it. The canonical name is the
// full Korean title, matching the corpus `source` field.
type Book struct {
	Korean         string
	English        string
	KoreanAbbrevs  []string
	EnglishAbbrevs []string
}

var books = []Book{
	{"창세기", "Genesis", []string{"창"}, []string{"gen", "ge"}},
	{"출애굽기", "Exodus", []string{"출"}, []string{"exo", "ex"}},
	{"레위기", "Leviticus", []string{"레"}, []string{"lev"}},
	{"민수기", "Numbers", []string{"민"}, []string{"num"}},
	{"신명기", "Deuteronomy", []string{"신"}, []string{"deut", "deu"}},
	{"여호수아", "Joshua", []string{"수"}, []string{"josh", "jos"}},
	{"사사기", "Judges", []string{"삿"}, []string{"judg", "jdg"}},
	{"룻기", "Ruth", []string{"룻"}, []string{"rut"}},
	{"사무엘상", "1 Samuel", []string{"삼상"}, []string{"1sam", "1sa"}},
	{"사무엘하", "2 Samuel", []string{"삼하"}, []string{"2sam", "2sa"}},
	{"열왕기상", "1 Kings", []string{"왕상"}, []string{"1kgs", "1ki"}},
	{"열왕기하", "2 Kings", []string{"왕하"}, []string{"2kgs", "2ki"}},
	{"역대상", "1 Chronicles", []string{"대상"}, []string{"1chr", "1ch"}},
	{"역대하", "2 Chronicles", []string{"대하"}, []string{"2chr", "2ch"}},
	{"에스라", "Ezra", []string{"스"}, []string{"ezr"}},
	{"느헤미야", "Nehemiah", []string{"느"}, []string{"neh"}},
	{"에스더", "Esther", []string{"에"}, []string{"est"}},
	{"욥기", "Job", []string{"욥"}, []string{"job"}},
	{"시편", "Psalms", []string{"시"}, []string{"ps", "psa", "psalm"}},
	{"잠언", "Proverbs", []string{"잠"}, []string{"prov", "pro", "pr"}},
	{"전도서", "Ecclesiastes", []string{"전"}, []string{"eccl", "ecc"}},
	{"아가", "Song of Songs", []string{"아"}, []string{"song", "sos"}},
	{"이사야", "Isaiah", []string{"사"}, []string{"isa", "is"}},
	{"예레미야", "Jeremiah", []string{"렘"}, []string{"jer"}},
	{"예레미야애가", "Lamentations", []string{"애"}, []string{"lam"}},
	{"에스겔", "Ezekiel", []string{"겔"}, []string{"ezek", "eze"}},
	{"다니엘", "Daniel", []string{"단"}, []string{"dan"}},
	{"호세아", "Hosea", []string{"호"}, []string{"hos"}},
	{"요엘", "Joel", []string{"욜"}, []string{"joe"}},
	{"아모스", "Amos", []string{"암"}, []string{"amo", "am"}},
	{"오바댜", "Obadiah", []string{"옵"}, []string{"obad", "oba"}},
	{"요나", "Jonah", []string{"욘"}, []string{"jon"}},
	{"미가", "Micah", []string{"미"}, []string{"mic"}},
	{"나훔", "Nahum", []string{"나"}, []string{"nah", "na"}},
	{"하박국", "Habakkuk", []string{"합"}, []string{"hab"}},
	{"스바냐", "Zephaniah", []string{"습"}, []string{"zeph", "zep"}},
	{"학개", "Haggai", []string{"학"}, []string{"hag"}},
	{"스가랴", "Zechariah", []string{"슥"}, []string{"zech", "zec"}},
	{"말라기", "Malachi", []string{"말"}, []string{"mal"}},
	{"마태복음", "Matthew", []string{"마"}, []string{"matt", "mat", "mt"}},
	{"마가복음", "Mark", []string{"막"}, []string{"mk", "mrk"}},
	{"누가복음", "Luke", []string{"눅"}, []string{"lk", "luk"}},
	{"요한복음", "John", []string{"요"}, []string{"jn", "joh"}},
	{"사도행전", "Acts", []string{"행"}, []string{"act", "ac"}},
	{"로마서", "Romans", []string{"롬"}, []string{"rom", "ro"}},
	{"고린도전서", "1 Corinthians", []string{"고전"}, []string{"1cor", "1co"}},
	{"고린도후서", "2 Corinthians", []string{"고후"}, []string{"2cor", "2co"}},
	{"갈라디아서", "Galatians", []string{"갈"}, []string{"gal", "ga"}},
	{"에베소서", "Ephesians", []string{"엡"}, []string{"eph"}},
	{"빌립보서", "Philippians", []string{"빌"}, []string{"phil", "php"}},
	{"골로새서", "Colossians", []string{"골"}, []string{"col"}},
	{"데살로니가전서", "1 Thessalonians", []string{"살전"}, []string{"1thess", "1th"}},
	{"데살로니가후서", "2 Thessalonians", []string{"살후"}, []string{"2thess", "2th"}},
	{"디모데전서", "1 Timothy", []string{"딤전"}, []string{"1tim", "1ti"}},
	{"디모데후서", "2 Timothy", []string{"딤후"}, []string{"2tim", "2ti"}},
	{"디도서", "Titus", []string{"딛"}, []string{"tit"}},
	{"빌레몬서", "Philemon", []string{"몬"}, []string{"phlm", "phm"}},
	{"히브리서", "Hebrews", []string{"히"}, []string{"heb"}},
	{"야고보서", "James", []string{"약"}, []string{"jas", "jam"}},
	{"베드로전서", "1 Peter", []string{"벧전"}, []string{"1pet", "1pe"}},
	{"베드로후서", "2 Peter", []string{"벧후"}, []string{"2pet", "2pe"}},
	{"요한일서", "1 John", []string{"요일"}, []string{"1jn", "1jo"}},
	{"요한이서", "2 John", []string{"요이"}, []string{"2jn"}},
	{"요한삼서", "3 John", []string{"요삼"}, []string{"3jn"}},
	{"유다서", "Jude", []string{"유"}, []string{"jud"}},
	{"요한계시록", "Revelation", []string{"계"}, []string{"rev", "re"}},
}

var (
	// lowerAliases maps lowercased, space-free aliases to the canonical
	// Korean book name. Covers Korean abbreviations, English abbreviations,
	// and lowercased English names.
	lowerAliases = map[string]string{}
	// mixedAliases preserves alias case for exact-case lookups.
	mixedAliases = map[string]string{}
	// generalNames maps full names in either language (space-free) to the
	// canonical Korean name.
	generalNames = map[string]string{}

	knownBooks      = map[string]bool{}
	bookAbbrevs     = map[string][]string{}
	koreanToEnglish = map[string]string{}
)

func init() {
	for _, b := range books {
		knownBooks[b.Korean] = true
		bookAbbrevs[b.Korean] = b.KoreanAbbrevs
		koreanToEnglish[b.Korean] = b.English

		for _, a := range b.KoreanAbbrevs {
			lowerAliases[a] = b.Korean
		}
		for _, a := range b.EnglishAbbrevs {
			lowerAliases[a] = b.Korean
			mixedAliases[strings.ToUpper(a)] = b.Korean
		}
		englishKey := strings.ToLower(strings.ReplaceAll(b.English, " ", ""))
		lowerAliases[englishKey] = b.Korean

		generalNames[b.Korean] = b.Korean
		generalNames[strings.ReplaceAll(b.English, " ", "")] = b.Korean
	}
}

// CanonicalBookName resolves a raw book spelling to the canonical Korean
// book name. Lookup order: lowercase alias table, exact-case alias table,
// full-name map. Unknown but plausible names round-trip unchanged (cleaned),
// so they still compare equal to themselves without ever matching a key
// built from a known book.
func CanonicalBookName(raw string) string {
	key := strings.ReplaceAll(Normalize(raw), " ", "")
	if key == "" {
		return ""
	}
	if canonical, ok := lowerAliases[strings.ToLower(key)]; ok {
		return canonical
	}
	if canonical, ok := mixedAliases[key]; ok {
		return canonical
	}
	if canonical, ok := generalNames[key]; ok {
		return canonical
	}
	return key
}

// IsKnownBook reports whether name is a member of the canonical book set.
func IsKnownBook(name string) bool {
	return knownBooks[name]
}

// Abbreviations returns the Korean abbreviations for a canonical book name,
// the forms used by inline verse markers ("약5:15").
func Abbreviations(book string) []string {
	return bookAbbrevs[book]
}

// EnglishName returns the English book name for a canonical Korean name, or
// "" when the book is unknown.
func EnglishName(book string) string {
	return koreanToEnglish[book]
}
