package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"versebox/internal/bible"
	"versebox/internal/llm"
	"versebox/internal/vectorstore"
)

// fallbackSearchK is the breadth of the vector search used as the last
// resolution strategy. The corpus chunking is coarse, so the target verse
// may hide inside a chunk whose embedding is only loosely related to the
// bare reference label.
const fallbackSearchK = 200

// Resolver finds the precise corpus entry for an exactly cited verse, even
// when the backing chunk holds several consecutive verses. Every miss is
// soft: callers fall through to semantic search.
type Resolver struct {
	index      *Index
	store      vectorstore.VectorStore
	embedder   llm.Embedder
	collection string
	logger     *slog.Logger
}

// NewResolver creates a Resolver sharing the given index.
func NewResolver(index *Index, store vectorstore.VectorStore, embedder llm.Embedder, collection string) *Resolver {
	return &Resolver{
		index:      index,
		store:      store,
		embedder:   embedder,
		collection: collection,
		logger:     slog.Default(),
	}
}

type resolveTarget struct {
	parsed bible.ParsedReference
	label  string
	key    string
}

// ExactVerse resolves a free-form citation to its corpus entry. Returns nil
// when the input does not parse as a reference or no strategy finds the
// verse; backend failures inside a strategy degrade to the next strategy
// with a logged warning rather than failing the request.
func (r *Resolver) ExactVerse(ctx context.Context, input string) *Entry {
	parsed := bible.ParseReferenceInput(input)
	if parsed == nil {
		return nil
	}

	target := resolveTarget{
		parsed: *parsed,
		label:  parsed.Label(),
	}
	target.key = bible.NormalizeReference(target.label)

	strategies := []func(context.Context, resolveTarget) *Entry{
		r.fromIndex,
		r.fromSourceScan,
		r.fromVectorSearch,
	}
	for _, strategy := range strategies {
		if entry := strategy(ctx, target); entry != nil {
			return entry
		}
	}
	return nil
}

// CuratedEntry resolves a curated theme reference: curated index first, then
// the full exact-resolution chain, caching any late hit back into the index.
func (r *Resolver) CuratedEntry(ctx context.Context, key, label string) *Entry {
	if key == "" {
		return nil
	}
	if err := r.index.EnsureCurated(ctx); err != nil {
		r.logger.WarnContext(ctx, "curated index unavailable", "error", err)
	}
	if entry, ok := r.index.CuratedEntry(key); ok {
		return &entry
	}
	if entry := r.ExactVerse(ctx, label); entry != nil {
		r.index.StoreCurated(key, *entry)
		return entry
	}
	return nil
}

func (r *Resolver) fromIndex(ctx context.Context, target resolveTarget) *Entry {
	if err := r.index.EnsureLoaded(ctx); err != nil {
		r.logger.WarnContext(ctx, "verse lookup index unavailable", "error", err)
		return nil
	}
	if entry, ok := r.index.Lookup(target.key); ok {
		return &entry
	}
	return nil
}

// fromSourceScan walks only the documents whose source field names the
// target book (in either language), matching first on the derived label and
// then on inline markers inside multi-verse chunks.
func (r *Resolver) fromSourceScan(ctx context.Context, target resolveTarget) *Entry {
	sources := []string{target.parsed.Book}
	if english := bible.EnglishName(target.parsed.Book); english != "" {
		sources = append(sources, english)
	}

	for _, source := range sources {
		var hit *Entry
		err := r.store.Scroll(ctx, r.collection, map[string]string{"source": source}, defaultScanBatchSize, func(doc vectorstore.Document) bool {
			if entry := r.matchDocument(target, doc); entry != nil {
				hit = entry
				return false
			}
			return true
		})
		if err != nil {
			r.logger.WarnContext(ctx, "source-filtered scan failed", "source", source, "error", err)
			continue
		}
		if hit != nil {
			return hit
		}
	}
	return nil
}

// fromVectorSearch embeds the bare reference label and hunts through a broad
// candidate set, preferring the closest match since candidates arrive in
// ascending-distance order.
func (r *Resolver) fromVectorSearch(ctx context.Context, target resolveTarget) *Entry {
	vector, err := r.embedder.Embed(ctx, fmt.Sprintf("%s 성경 구절", target.label))
	if err != nil {
		r.logger.WarnContext(ctx, "failed to embed reference label", "reference", target.label, "error", err)
		return nil
	}
	candidates, err := r.store.Query(ctx, r.collection, vector, fallbackSearchK)
	if err != nil {
		r.logger.WarnContext(ctx, "fallback vector search failed", "reference", target.label, "error", err)
		return nil
	}
	for _, candidate := range candidates {
		doc := vectorstore.Document{Content: candidate.Content, Meta: candidate.Meta}
		if entry := r.matchDocument(target, doc); entry != nil {
			return entry
		}
	}
	return nil
}

// matchDocument applies the shared label-match-then-marker-match logic to a
// single document. A marker match extracts just the target verse's sub-span
// and tags the entry with a clean reference override.
func (r *Resolver) matchDocument(target resolveTarget, doc vectorstore.Document) *Entry {
	meta := MetaFromMap(doc.Meta)
	if bible.NormalizeReference(bible.BuildReferenceLabel(meta, doc.Content)) == target.key {
		return &Entry{Text: doc.Content, Meta: meta}
	}
	if bible.DocumentHasMarker(target.parsed.Book, target.parsed.Chapter, target.parsed.Verse, doc.Content) {
		text := bible.ExtractExactVerseText(target.parsed.Book, target.parsed.Chapter, target.parsed.Verse, doc.Content)
		if text == "" {
			text = doc.Content
		}
		meta.ReferenceOverride = target.label
		return &Entry{Text: text, Meta: meta}
	}
	return nil
}

// SetLogger overrides the default logger; used by the composition root.
func (r *Resolver) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}
