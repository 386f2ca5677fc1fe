package bible

import (
	"regexp"
	"strings"
)

const maxGreedyTerms = 6

// termPattern tokenizes on runs of at least two Hangul or two lowercase
// Latin characters; single characters are too noisy to match on.
var termPattern = regexp.MustCompile(`[가-힣]{2,}|[a-z]{2,}`)

// koreanStopwords drops particles, pronouns, and filler that carry no
// lexical signal for verse matching.
var koreanStopwords = map[string]struct{}{
	"나는": {}, "내가": {}, "나의": {}, "나를": {}, "저는": {}, "제가": {}, "저의": {},
	"우리": {}, "우리는": {}, "우리가": {}, "당신": {}, "너무": {}, "정말": {}, "진짜": {},
	"그냥": {}, "조금": {}, "많이": {}, "요즘": {}, "오늘": {}, "지금": {}, "계속": {},
	"그리고": {}, "그래서": {}, "하지만": {}, "그런데": {}, "있는": {}, "없는": {}, "같아": {},
	"같아요": {}, "싶어": {}, "싶어요": {}, "싶다": {}, "해요": {}, "합니다": {}, "입니다": {},
	"있어요": {}, "없어요": {}, "때문에": {}, "대해": {}, "관련": {}, "주세요": {},
}

// GreedyTerms extracts up to six salient keywords from a query for lexical
// coverage bonuses, dropping stopwords and deduplicating while preserving
// first-seen order.
func GreedyTerms(query string) []string {
	lowered := strings.ToLower(Normalize(query))
	var terms []string
	seen := make(map[string]struct{})
	for _, token := range termPattern.FindAllString(lowered, -1) {
		if _, stop := koreanStopwords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
		if len(terms) == maxGreedyTerms {
			break
		}
	}
	return terms
}

// GreedyMatchCount counts how many of the terms appear as substrings of the
// whitespace-collapsed, lowercased document.
func GreedyMatchCount(terms []string, document string) int {
	if len(terms) == 0 || document == "" {
		return 0
	}
	compact := Compact(document)
	count := 0
	for _, term := range terms {
		if strings.Contains(compact, strings.Join(strings.Fields(term), "")) {
			count++
		}
	}
	return count
}
