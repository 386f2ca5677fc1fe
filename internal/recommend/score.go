package recommend

import (
	"strings"

	"versebox/internal/bible"
)

// Weights holds the scoring constants for general-search candidates. The
// semantic/popularity split and the lexical bonus caps are tunable
// configuration, not hard law; DefaultWeights is the pair this service
// ships with.
type Weights struct {
	// Semantic scales the cosine similarity reported by the vector index.
	Semantic float64
	// Popularity scales the 0-1 normalized popularity prior.
	Popularity float64
	// GreedyPerTerm is the bonus per matched greedy term, capped at
	// GreedyCap.
	GreedyPerTerm float64
	GreedyCap     float64
	// Coverage scales the matched-terms ratio inside the phrase bonus.
	Coverage float64
	// FullCoverage is added when every greedy term matches.
	FullCoverage float64
	// PhraseContain is added when the whole compacted query appears
	// contiguously in the document.
	PhraseContain float64
	// PhraseCap bounds the total phrase bonus.
	PhraseCap float64
}

// DefaultWeights favors semantic similarity 60/40 over popularity with
// small additive lexical bonuses.
func DefaultWeights() Weights {
	return Weights{
		Semantic:      0.6,
		Popularity:    0.4,
		GreedyPerTerm: 0.06,
		GreedyCap:     0.18,
		Coverage:      0.10,
		FullCoverage:  0.08,
		PhraseContain: 0.06,
		PhraseCap:     0.24,
	}
}

const (
	// exactScore is the sentinel for an exact-reference hit; that path
	// short-circuits, so nothing ever competes with it.
	exactScore = 1.0
	// curatedScore sits strictly above any attainable general score
	// (similarity + popularity + capped bonuses < 1.42).
	curatedScore = 1.8
	// defaultPopularity is the neutral prior for documents without a
	// popularity field.
	defaultPopularity = 30
	// curatedPopularity is the display prior for curated verses missing a
	// popularity field.
	curatedPopularity = 85
)

// scoreCandidate computes the fused relevance score for one general-search
// candidate. similarity is cosine similarity from the vector index (higher
// is better; Qdrant reports similarity directly, so no distance transform
// is applied).
func (w Weights) scoreCandidate(similarity float64, popularity int, terms []string, compactQuery, document string) float64 {
	greedyHits := bible.GreedyMatchCount(terms, document)

	greedyBonus := float64(greedyHits) * w.GreedyPerTerm
	if greedyBonus > w.GreedyCap {
		greedyBonus = w.GreedyCap
	}

	var phraseBonus float64
	if len(terms) > 0 {
		coverage := float64(greedyHits) / float64(len(terms))
		phraseBonus = coverage * w.Coverage
		if coverage >= 0.99 {
			phraseBonus += w.FullCoverage
		}
	}
	if compactQuery != "" && strings.Contains(bible.Compact(document), compactQuery) {
		phraseBonus += w.PhraseContain
	}
	if phraseBonus > w.PhraseCap {
		phraseBonus = w.PhraseCap
	}

	return similarity*w.Semantic + float64(popularity)/100.0*w.Popularity + phraseBonus + greedyBonus
}
