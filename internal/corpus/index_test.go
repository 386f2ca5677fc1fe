package corpus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"versebox/internal/bible"
	"versebox/internal/vectorstore"
)

// fakeStore serves canned documents for Scroll and Query and counts scans,
// so tests can assert the lazy-build behavior without a live backend.
type fakeStore struct {
	docs       []vectorstore.Document
	candidates []vectorstore.Candidate
	scrollErr  error
	queryErr   error

	mu          sync.Mutex
	scrollCalls int
}

func (f *fakeStore) Scroll(ctx context.Context, collection string, filter map[string]string, batchSize int, fn func(vectorstore.Document) bool) error {
	f.mu.Lock()
	f.scrollCalls++
	f.mu.Unlock()
	if f.scrollErr != nil {
		return f.scrollErr
	}
	for _, doc := range f.docs {
		if len(filter) > 0 && !matchesFilter(doc, filter) {
			continue
		}
		if !fn(doc) {
			return nil
		}
	}
	return nil
}

func matchesFilter(doc vectorstore.Document, filter map[string]string) bool {
	for k, v := range filter {
		if got, ok := doc.Meta[k].(string); !ok || got != v {
			return false
		}
	}
	return true
}

func (f *fakeStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]vectorstore.Candidate, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.candidates, nil
}

func (f *fakeStore) Count(ctx context.Context, collection string) (uint64, error) {
	return uint64(len(f.docs)), nil
}

func (f *fakeStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	return true, nil
}

func (f *fakeStore) scrollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scrollCalls
}

func doc(content string, meta map[string]any) vectorstore.Document {
	return vectorstore.Document{Content: content, Meta: meta}
}

func TestIndexEnsureLoadedFirstWins(t *testing.T) {
	store := &fakeStore{docs: []vectorstore.Document{
		doc("첫 번째 본문", map[string]any{"reference": "마태복음 10:5", "popularity": 70}),
		doc("중복 본문", map[string]any{"reference": "마 10:5"}),
		doc("다른 구절", map[string]any{"reference": "시편 23:1"}),
	}}
	ix := NewIndex(store, "bible")

	ctx := context.Background()
	if err := ix.EnsureLoaded(ctx); err != nil {
		t.Fatalf("EnsureLoaded failed: %v", err)
	}

	key := bible.NormalizeReference("마태복음 10:5")
	entry, ok := ix.Lookup(key)
	if !ok {
		t.Fatal("expected index hit for 마태복음 10:5")
	}
	if entry.Text != "첫 번째 본문" {
		t.Errorf("first-wins violated: got %q", entry.Text)
	}
	if !entry.Meta.HasPopularity || entry.Meta.Popularity != 70 {
		t.Errorf("popularity not carried: %+v", entry.Meta)
	}
}

func TestIndexEnsureLoadedIdempotent(t *testing.T) {
	store := &fakeStore{docs: []vectorstore.Document{
		doc("본문", map[string]any{"reference": "시편 23:1"}),
	}}
	ix := NewIndex(store, "bible")

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ix.EnsureLoaded(ctx)
		}()
	}
	wg.Wait()

	if got := store.scrollCount(); got != 1 {
		t.Errorf("corpus scanned %d times, want 1", got)
	}
}

func TestIndexEnsureLoadedError(t *testing.T) {
	store := &fakeStore{scrollErr: errors.New("backend down")}
	ix := NewIndex(store, "bible")

	if err := ix.EnsureLoaded(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}

	// A failed build is retried on the next call.
	store.scrollErr = nil
	store.docs = []vectorstore.Document{doc("본문", map[string]any{"reference": "시편 23:1"})}
	if err := ix.EnsureLoaded(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if _, ok := ix.Lookup(bible.NormalizeReference("시편 23:1")); !ok {
		t.Error("index empty after successful retry")
	}
}

func TestIndexEnsureCurated(t *testing.T) {
	store := &fakeStore{docs: []vectorstore.Document{
		doc("여호와는 마음이 상한 자를 가까이 하시고", map[string]any{"reference": "시편 34:18", "popularity": 90}),
		doc("상관없는 구절", map[string]any{"reference": "창세기 1:1"}),
	}}
	ix := NewIndex(store, "bible")

	if err := ix.EnsureCurated(context.Background()); err != nil {
		t.Fatalf("EnsureCurated failed: %v", err)
	}

	key := bible.NormalizeReference("시편 34:18")
	entry, ok := ix.CuratedEntry(key)
	if !ok {
		t.Fatal("curated entry for 시편 34:18 not found")
	}
	if entry.Meta.Popularity != 90 {
		t.Errorf("curated popularity = %d, want 90", entry.Meta.Popularity)
	}

	// Non-curated corpus entries stay out of the curated map.
	if _, ok := ix.CuratedEntry(bible.NormalizeReference("창세기 1:1")); ok {
		t.Error("non-curated reference found in curated index")
	}
}

func TestIndexStoreCurated(t *testing.T) {
	ix := NewIndex(&fakeStore{}, "bible")

	key := bible.NormalizeReference("시편 34:18")
	ix.StoreCurated(key, Entry{Text: "본문"})
	if _, ok := ix.CuratedEntry(key); !ok {
		t.Fatal("StoreCurated entry not retrievable")
	}

	// First write wins; later fallback resolutions never overwrite.
	ix.StoreCurated(key, Entry{Text: "다른 본문"})
	entry, _ := ix.CuratedEntry(key)
	if entry.Text != "본문" {
		t.Errorf("StoreCurated overwrote existing entry: %q", entry.Text)
	}

	ix.StoreCurated("", Entry{Text: "무시"})
}

func TestMetaFromMap(t *testing.T) {
	meta := MetaFromMap(map[string]any{
		"reference":  "마태복음 10:5",
		"source":     "마태복음",
		"popularity": float64(70),
	})
	if meta.Reference != "마태복음 10:5" || meta.Source != "마태복음" {
		t.Errorf("string fields not mapped: %+v", meta)
	}
	if !meta.HasPopularity || meta.Popularity != 70 {
		t.Errorf("float popularity not mapped: %+v", meta)
	}

	empty := MetaFromMap(nil)
	if empty.HasPopularity {
		t.Error("nil map produced a popularity")
	}
}
