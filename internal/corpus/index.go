package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"versebox/internal/bible"
	"versebox/internal/vectorstore"
)

const defaultScanBatchSize = 1000

// Index owns the two process-lifetime in-memory maps over the verse corpus:
// the full reference-key lookup and the curated theme subset. Both are built
// lazily by a one-time scan and are read-only afterwards; the corpus is
// static for the life of the process.
type Index struct {
	store      vectorstore.VectorStore
	collection string
	batchSize  int
	logger     *slog.Logger

	mu             sync.RWMutex
	loaded         bool
	curatedLoaded  bool
	verses         map[string]Entry
	curated        map[string]Entry
	curatedTargets map[string]string // normalized key -> original label
}

// NewIndex creates an Index over the given collection. The curated target
// set is derived from the static theme rules.
func NewIndex(store vectorstore.VectorStore, collection string) *Index {
	targets := make(map[string]string)
	for _, ref := range bible.AllCuratedReferences() {
		key := bible.NormalizeReference(ref)
		if key == "" {
			continue
		}
		if _, ok := targets[key]; !ok {
			targets[key] = ref
		}
	}
	return &Index{
		store:          store,
		collection:     collection,
		batchSize:      defaultScanBatchSize,
		logger:         slog.Default(),
		verses:         make(map[string]Entry),
		curated:        make(map[string]Entry),
		curatedTargets: targets,
	}
}

// EnsureLoaded builds the full verse lookup index on first use. Idempotent;
// concurrent first callers serialize on the index lock rather than scanning
// the corpus twice.
func (ix *Index) EnsureLoaded(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.loaded {
		return nil
	}

	logger := ix.logger
	logger.InfoContext(ctx, "building verse lookup index", "collection", ix.collection)

	count := 0
	err := ix.store.Scroll(ctx, ix.collection, nil, ix.batchSize, func(doc vectorstore.Document) bool {
		meta := MetaFromMap(doc.Meta)
		label := bible.BuildReferenceLabel(meta, doc.Content)
		key := bible.NormalizeReference(label)
		if key == "" {
			return true
		}
		// first-wins: earlier corpus entries are authoritative
		if _, exists := ix.verses[key]; !exists {
			ix.verses[key] = Entry{Text: doc.Content, Meta: meta}
			count++
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to build verse lookup index: %w", err)
	}

	ix.loaded = true
	logger.InfoContext(ctx, "verse lookup index ready", "entries", count)
	return nil
}

// EnsureCurated builds the curated theme-verse index on first use. The scan
// stops early once every curated target key has been found; targets still
// missing afterwards are left to the resolver's fallback path.
func (ix *Index) EnsureCurated(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.curatedLoaded {
		return nil
	}
	if len(ix.curatedTargets) == 0 {
		ix.curatedLoaded = true
		return nil
	}

	logger := ix.logger
	logger.InfoContext(ctx, "building curated reference index", "targets", len(ix.curatedTargets))

	found := 0
	err := ix.store.Scroll(ctx, ix.collection, nil, ix.batchSize, func(doc vectorstore.Document) bool {
		meta := MetaFromMap(doc.Meta)
		key := bible.NormalizeReference(bible.BuildReferenceLabel(meta, doc.Content))
		if _, wanted := ix.curatedTargets[key]; !wanted {
			return true
		}
		if _, exists := ix.curated[key]; exists {
			return true
		}
		ix.curated[key] = Entry{Text: doc.Content, Meta: meta}
		found++
		return found < len(ix.curatedTargets)
	})
	if err != nil {
		return fmt.Errorf("failed to build curated reference index: %w", err)
	}

	if found < len(ix.curatedTargets) {
		for key, label := range ix.curatedTargets {
			if _, ok := ix.curated[key]; !ok {
				logger.WarnContext(ctx, "curated reference not found in corpus scan", "reference", label)
			}
		}
	}

	ix.curatedLoaded = true
	logger.InfoContext(ctx, "curated reference index ready", "entries", found)
	return nil
}

// Lookup returns the corpus entry for a normalized reference key.
func (ix *Index) Lookup(key string) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	entry, ok := ix.verses[key]
	return entry, ok
}

// CuratedEntry returns the curated-index entry for a normalized key.
func (ix *Index) CuratedEntry(key string) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	entry, ok := ix.curated[key]
	return entry, ok
}

// StoreCurated caches a curated entry resolved through the fallback path so
// later requests hit the index directly.
func (ix *Index) StoreCurated(key string, entry Entry) {
	if key == "" {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, exists := ix.curated[key]; !exists {
		ix.curated[key] = entry
	}
}

// SetLogger overrides the default logger; used by the composition root.
func (ix *Index) SetLogger(logger *slog.Logger) {
	if logger != nil {
		ix.logger = logger
	}
}
