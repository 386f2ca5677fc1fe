package bible

import "strings"

// ThemeRule maps trigger keywords to a richer search context and a fixed
// list of curated anchor verses for the theme. Rules are static
// configuration; they are never mutated after startup.
type ThemeRule struct {
	Tokens            []string
	Description       string
	CuratedReferences []string
}

// DefaultContextDescription is used when no theme rule matches the query.
const DefaultContextDescription = "삶의 고민과 감정 속에서 하나님의 뜻과 인도하심을 구하는 상황"

var themeRules = []ThemeRule{
	{
		Tokens:      []string{"위로", "슬픔", "슬퍼", "눈물", "아픔", "상처", "괴로", "comfort", "grief", "sad"},
		Description: "마음이 상하고 지쳐서 하나님의 위로와 치유가 필요한 상황",
		CuratedReferences: []string{
			"시편 34:18", "마태복음 11:28", "고린도후서 1:3-4", "시편 147:3", "이사야 41:10",
		},
	},
	{
		Tokens:      []string{"불안", "걱정", "염려", "두려", "초조", "anxiety", "worry", "fear"},
		Description: "앞날이 불안하고 염려가 많아 마음의 평안을 구하는 상황",
		CuratedReferences: []string{
			"빌립보서 4:6-7", "베드로전서 5:7", "마태복음 6:34", "이사야 41:10", "요한복음 14:27",
		},
	},
	{
		Tokens:      []string{"사랑", "연애", "애정", "love"},
		Description: "사랑을 주고받는 기쁨과 책임에 대해 성경의 가르침을 구하는 상황",
		CuratedReferences: []string{
			"고린도전서 13:4-7", "요한일서 4:19", "요한복음 3:16", "로마서 8:38-39",
		},
	},
	{
		Tokens:      []string{"감사", "감격", "은혜", "thank", "grace"},
		Description: "받은 은혜를 기억하며 감사로 반응하고 싶은 상황",
		CuratedReferences: []string{
			"데살로니가전서 5:16-18", "시편 136:1", "골로새서 3:17",
		},
	},
	{
		Tokens:      []string{"용기", "도전", "새로운 시작", "시작", "결심", "courage", "start"},
		Description: "새로운 일 앞에서 용기와 담대함이 필요한 상황",
		CuratedReferences: []string{
			"여호수아 1:9", "빌립보서 4:13", "이사야 40:31", "디모데후서 1:7",
		},
	},
	{
		Tokens:      []string{"소망", "희망", "절망", "포기", "hope"},
		Description: "절망 가운데서도 하나님이 주시는 소망을 붙들고 싶은 상황",
		CuratedReferences: []string{
			"예레미야 29:11", "로마서 15:13", "시편 42:11", "예레미야애가 3:22-23",
		},
	},
	{
		Tokens:      []string{"외로", "고독", "혼자", "lonely", "alone"},
		Description: "홀로 남겨진 것 같은 외로움 속에서 동행하시는 하나님을 찾는 상황",
		CuratedReferences: []string{
			"신명기 31:6", "시편 23:4", "마태복음 28:20", "이사야 43:2",
		},
	},
	{
		Tokens:      []string{"기쁨", "즐거", "행복", "joy", "happy"},
		Description: "주님 안에서 누리는 기쁨과 즐거움을 나누고 싶은 상황",
		CuratedReferences: []string{
			"빌립보서 4:4", "시편 16:11", "느헤미야 8:10",
		},
	},
	{
		Tokens:      []string{"지혜", "결정", "선택", "진로", "고민", "wisdom", "decision"},
		Description: "중요한 결정 앞에서 하나님의 지혜와 분별을 구하는 상황",
		CuratedReferences: []string{
			"야고보서 1:5", "잠언 3:5-6", "잠언 16:9", "시편 32:8",
		},
	},
	{
		Tokens:      []string{"평안", "안식", "쉼", "피곤", "지침", "peace", "rest"},
		Description: "분주함과 피로 속에서 참된 안식과 평안을 구하는 상황",
		CuratedReferences: []string{
			"마태복음 11:28", "요한복음 14:27", "시편 23:1-3", "빌립보서 4:7",
		},
	},
	{
		Tokens:      []string{"용서", "화해", "미움", "분노", "forgive"},
		Description: "용서하기 어려운 마음을 내려놓고 화해를 구하는 상황",
		CuratedReferences: []string{
			"에베소서 4:32", "마태복음 6:14", "골로새서 3:13",
		},
	},
	{
		Tokens:      []string{"믿음", "신앙", "의심", "확신", "faith"},
		Description: "흔들리는 믿음을 붙들고 확신을 구하는 상황",
		CuratedReferences: []string{
			"히브리서 11:1", "마가복음 9:23", "로마서 10:17", "하박국 2:4",
		},
	},
}

// ThemeRules returns the static theme rule set.
func ThemeRules() []ThemeRule {
	return themeRules
}

// AllCuratedReferences returns every curated reference across all theme
// rules, deduplicated preserving first-seen order and cleaned through
// normalization.
func AllCuratedReferences() []string {
	seen := make(map[string]struct{})
	var refs []string
	for _, rule := range themeRules {
		for _, ref := range rule.CuratedReferences {
			cleaned := strings.TrimSpace(Normalize(ref))
			if cleaned == "" {
				continue
			}
			if _, ok := seen[cleaned]; ok {
				continue
			}
			seen[cleaned] = struct{}{}
			refs = append(refs, cleaned)
		}
	}
	return refs
}

// BuildContextualQuery expands a short colloquial keyword into a fuller
// semantic search phrase and collects the curated anchor references of every
// matching theme rule. Matching is substring containment of any rule token
// in the raw keyword or its lowercase form. Short queries embed poorly on
// their own; the expansion supplies the situation/emotion context the
// embedder needs.
func BuildContextualQuery(keyword string) (string, []string) {
	keyword = strings.TrimSpace(keyword)
	lowered := strings.ToLower(keyword)

	var contexts []string
	var curated []string
	for _, rule := range themeRules {
		for _, token := range rule.Tokens {
			if strings.Contains(keyword, token) || strings.Contains(lowered, token) {
				contexts = append(contexts, rule.Description)
				curated = append(curated, rule.CuratedReferences...)
				break
			}
		}
	}
	if len(contexts) == 0 {
		contexts = append(contexts, DefaultContextDescription)
	}

	contexts = dedupeOrdered(contexts)
	curated = dedupeOrdered(curated)

	var b strings.Builder
	b.WriteString("query: ")
	b.WriteString(keyword)
	b.WriteString(". 상황과 감정: ")
	b.WriteString(strings.Join(contexts, " / "))
	b.WriteString(".")
	if terms := GreedyTerms(keyword); len(terms) > 0 {
		b.WriteString(" 핵심 단어: ")
		b.WriteString(strings.Join(terms, ", "))
		b.WriteString(".")
	}
	b.WriteString(" 주제와 맞닿은 성경의 약속, 위로, 격려, 도전, 하나님의 성품과 계획을 찾는다.")
	return b.String(), curated
}

func dedupeOrdered(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := items[:0:0]
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}
