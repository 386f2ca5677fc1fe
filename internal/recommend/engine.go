package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"versebox/internal/bible"
	"versebox/internal/contextutil"
	"versebox/internal/corpus"
	"versebox/internal/llm"
	"versebox/internal/service"
	"versebox/internal/vectorstore"
)

const (
	// defaultPageSize is the number of verses per result page.
	defaultPageSize = 5
	// narrowSearchK / broadSearchK size the general vector search. Long or
	// multi-term queries get the broad set so lexical reranking has recall
	// to work with.
	narrowSearchK = 50
	broadSearchK  = 200
	// broadQueryRunes is the query length at which the broad set kicks in
	// even without extractable terms or spaces.
	broadQueryRunes = 6
)

// Engine produces ranked verse recommendations for free-text queries and
// resolves exact scripture references.
type Engine interface {
	// Recommend resolves req.Query: an exact reference returns a single
	// terminal entry, anything else a ranked, paginated blend of curated
	// theme verses and scored semantic candidates.
	Recommend(ctx context.Context, req Request) (Response, error)
}

type engine struct {
	embedder   llm.Embedder
	store      vectorstore.VectorStore
	collection string
	index      *corpus.Index
	resolver   *corpus.Resolver
	weights    Weights
	pageSize   int
	logger     *slog.Logger
}

// NewEngine creates the recommendation engine.
func NewEngine(
	embedder llm.Embedder,
	store vectorstore.VectorStore,
	collection string,
	index *corpus.Index,
	resolver *corpus.Resolver,
) Engine {
	return &engine{
		embedder:   embedder,
		store:      store,
		collection: collection,
		index:      index,
		resolver:   resolver,
		weights:    DefaultWeights(),
		pageSize:   defaultPageSize,
		logger:     slog.Default(),
	}
}

func (e *engine) getLogger(ctx context.Context) *slog.Logger {
	if logger := contextutil.LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return e.logger
}

// Recommend implements the Engine interface.
func (e *engine) Recommend(ctx context.Context, req Request) (Response, error) {
	logger := e.getLogger(ctx)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, fmt.Errorf("%w: query is required", service.ErrInvalidInput)
	}
	page := req.Page
	if page < 0 {
		page = 0
	}

	logger.InfoContext(ctx, "recommendation query started", "query", query, "page", page)

	// Index build failures degrade: the resolver and general search can
	// still answer from the live collection.
	if err := e.index.EnsureLoaded(ctx); err != nil {
		logger.WarnContext(ctx, "verse lookup index build failed", "error", err)
	}
	if err := e.index.EnsureCurated(ctx); err != nil {
		logger.WarnContext(ctx, "curated index build failed", "error", err)
	}

	// 1) Exact reference match wins outright.
	if entry := e.resolver.ExactVerse(ctx, query); entry != nil {
		reference := entry.Meta.ReferenceOverride
		if reference == "" {
			reference = bible.BuildReferenceLabel(entry.Meta, entry.Text)
		}
		logger.InfoContext(ctx, "exact reference matched", "reference", reference)
		return Response{
			Verses: []Verse{{
				Reference: reference,
				Text:      entry.Text,
				Meta:      entry.Meta,
				Score:     exactScore,
				Priority:  PriorityExact,
			}},
			Exact: true,
		}, nil
	}

	// 2) Theme expansion and curated injection.
	expandedQuery, curatedRefs := bible.BuildContextualQuery(query)
	curatedKeys := make(map[string]struct{})
	var curatedItems []Verse
	for _, ref := range curatedRefs {
		key := bible.NormalizeReference(ref)
		if key == "" {
			continue
		}
		if _, seen := curatedKeys[key]; seen {
			continue
		}
		curatedKeys[key] = struct{}{}

		entry := e.resolver.CuratedEntry(ctx, key, ref)
		if entry == nil {
			logger.WarnContext(ctx, "curated verse unresolved", "reference", ref)
			continue
		}
		meta := entry.Meta
		if !meta.HasPopularity {
			meta.Popularity = curatedPopularity
			meta.HasPopularity = true
		}
		curatedItems = append(curatedItems, Verse{
			Reference: bible.BuildReferenceLabel(entry.Meta, entry.Text),
			Text:      entry.Text,
			Meta:      meta,
			Score:     curatedScore,
			Priority:  PriorityThemeTop,
		})
	}
	if len(curatedItems) > 0 {
		logger.InfoContext(ctx, "curated theme verses injected", "count", len(curatedItems))
	}

	// 3) General semantic search over the expanded query.
	terms := bible.GreedyTerms(query)
	compactQuery := bible.Compact(query)

	k := narrowSearchK
	if strings.Contains(query, " ") || len(terms) > 0 || utf8.RuneCountInString(query) >= broadQueryRunes {
		k = broadSearchK
	}

	vector, err := e.embedder.Embed(ctx, expandedQuery)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return Response{}, fmt.Errorf("%w: failed to embed query: %v", service.ErrExternalService, err)
	}

	candidates, err := e.store.Query(ctx, e.collection, vector, k)
	if err != nil {
		logger.ErrorContext(ctx, "vector search failed", "error", err)
		return Response{}, fmt.Errorf("%w: vector search failed: %v", service.ErrSearchUnavailable, err)
	}
	logger.InfoContext(ctx, "vector search completed", "k", k, "results", len(candidates), "terms", terms)

	scored := make([]Verse, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Content == "" {
			continue
		}
		meta := corpus.MetaFromMap(candidate.Meta)
		reference := meta.Reference
		if reference == "" {
			reference = bible.BuildReferenceLabel(meta, candidate.Content)
		}
		if _, curated := curatedKeys[bible.NormalizeReference(reference)]; curated {
			continue
		}

		score := e.weights.scoreCandidate(
			float64(candidate.Score),
			meta.PopularityOrDefault(defaultPopularity),
			terms,
			compactQuery,
			candidate.Content,
		)
		scored = append(scored, Verse{
			Reference: reference,
			Text:      candidate.Content,
			Meta:      meta,
			Score:     score,
			Priority:  PriorityGeneral,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	// A coarse chunking can surface the same reference from several
	// candidates; keep only the best-scored one.
	seenKeys := make(map[string]struct{}, len(scored))
	deduped := scored[:0]
	for _, verse := range scored {
		key := bible.NormalizeReference(verse.Reference)
		if key != "" {
			if _, dup := seenKeys[key]; dup {
				continue
			}
			seenKeys[key] = struct{}{}
		}
		deduped = append(deduped, verse)
	}

	// 4) Merge and paginate: curated first in rule-match order, then
	// general candidates best-first.
	merged := append(curatedItems, deduped...)
	return e.paginate(ctx, merged, page), nil
}

func (e *engine) paginate(ctx context.Context, merged []Verse, page int) Response {
	logger := e.getLogger(ctx)

	total := len(merged)
	totalPages := 0
	if total > 0 {
		totalPages = (total + e.pageSize - 1) / e.pageSize
	}

	start := page * e.pageSize
	end := start + e.pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pageSlice := merged[start:end]
	for _, verse := range pageSlice {
		logger.DebugContext(ctx, "result entry", "reference", verse.Reference, "score", verse.Score, "priority", verse.Priority)
	}

	return Response{
		Verses:     pageSlice,
		HasMore:    end < total,
		TotalPages: totalPages,
		Page:       page,
	}
}
