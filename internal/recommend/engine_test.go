package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"versebox/internal/corpus"
	"versebox/internal/service"
	"versebox/internal/vectorstore"
)

type fakeEmbedder struct {
	vec []float32
	err error

	mu    sync.Mutex
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	docs       []vectorstore.Document
	candidates []vectorstore.Candidate
	queryErr   error

	mu          sync.Mutex
	queryCalls  int
	scrollCalls int
}

func (f *fakeStore) Scroll(ctx context.Context, collection string, filter map[string]string, batchSize int, fn func(vectorstore.Document) bool) error {
	f.mu.Lock()
	f.scrollCalls++
	f.mu.Unlock()
	for _, doc := range f.docs {
		if len(filter) > 0 {
			matched := true
			for k, v := range filter {
				if got, ok := doc.Meta[k].(string); !ok || got != v {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
		}
		if !fn(doc) {
			return nil
		}
	}
	return nil
}

func (f *fakeStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]vectorstore.Candidate, error) {
	f.mu.Lock()
	f.queryCalls++
	f.mu.Unlock()
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

func (f *fakeStore) backendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryCalls + f.scrollCalls
}

func newTestEngine(store *fakeStore, embedder *fakeEmbedder) Engine {
	index := corpus.NewIndex(store, "bible")
	resolver := corpus.NewResolver(index, store, embedder, "bible")
	return NewEngine(embedder, store, "bible", index, resolver)
}

// comfortCorpus holds every curated verse of the 위로 theme rule so curated
// injection resolves without fallback round-trips.
func comfortCorpus() []vectorstore.Document {
	return []vectorstore.Document{
		{Content: "여호와는 마음이 상한 자를 가까이 하시고", Meta: map[string]any{"reference": "시편 34:18", "popularity": 95}},
		{Content: "수고하고 무거운 짐 진 자들아 다 내게로 오라", Meta: map[string]any{"reference": "마태복음 11:28"}},
		{Content: "찬송하리로다 그는 자비의 아버지시요 모든 위로의 하나님이시며", Meta: map[string]any{"reference": "고린도후서 1:3-4"}},
		{Content: "상심한 자들을 고치시며 그들의 상처를 싸매시는도다", Meta: map[string]any{"reference": "시편 147:3"}},
		{Content: "두려워하지 말라 내가 너와 함께 함이라", Meta: map[string]any{"reference": "이사야 41:10"}},
	}
}

func TestRecommendEmptyQuery(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{vec: []float32{0.1}}
	engine := newTestEngine(store, embedder)

	_, err := engine.Recommend(context.Background(), Request{Query: "   "})
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}

	// Validation failures never touch the embedder or the vector store.
	if embedder.callCount() != 0 {
		t.Errorf("embedder called %d times for empty query", embedder.callCount())
	}
	if store.backendCalls() != 0 {
		t.Errorf("backend called %d times for empty query", store.backendCalls())
	}
}

func TestRecommendExactReference(t *testing.T) {
	store := &fakeStore{docs: []vectorstore.Document{
		{Content: "예수께서 이 열둘을 내보내시며", Meta: map[string]any{"reference": "마태복음 10:5"}},
	}}
	embedder := &fakeEmbedder{vec: []float32{0.1}}
	engine := newTestEngine(store, embedder)

	// The page number is irrelevant for exact hits.
	for _, page := range []int{0, 7} {
		resp, err := engine.Recommend(context.Background(), Request{Query: "마 10:5", Page: page})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if !resp.Exact {
			t.Fatal("expected exact response")
		}
		if len(resp.Verses) != 1 {
			t.Fatalf("exact response has %d verses, want 1", len(resp.Verses))
		}
		verse := resp.Verses[0]
		if verse.Reference != "마태복음 10:5" {
			t.Errorf("reference = %q, want 마태복음 10:5", verse.Reference)
		}
		if verse.Score != 1.0 {
			t.Errorf("score = %v, want 1.0", verse.Score)
		}
		if verse.Priority != PriorityExact {
			t.Errorf("priority = %q, want %q", verse.Priority, PriorityExact)
		}
	}

	// The exact path never embeds.
	if embedder.callCount() != 0 {
		t.Errorf("embedder called %d times on the exact path", embedder.callCount())
	}
}

func TestRecommendCuratedAboveGeneral(t *testing.T) {
	store := &fakeStore{
		docs: comfortCorpus(),
		candidates: []vectorstore.Candidate{
			// Duplicates a curated verse; must be dropped from the
			// general results.
			{Content: "여호와는 마음이 상한 자를 가까이 하시고", Meta: map[string]any{"reference": "시편 34:18"}, Score: 0.95},
			{Content: "평안을 너희에게 끼치노니", Meta: map[string]any{"reference": "요한복음 14:27", "popularity": 50}, Score: 0.9},
			{Content: "태초에 하나님이 천지를 창조하시니라", Meta: map[string]any{"reference": "창세기 1:1"}, Score: 0.5},
		},
	}
	embedder := &fakeEmbedder{vec: []float32{0.1}}
	engine := newTestEngine(store, embedder)

	resp, err := engine.Recommend(context.Background(), Request{Query: "위로", Page: 0})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if resp.Exact {
		t.Fatal("keyword query reported as exact")
	}

	// 5 curated + 2 general (the duplicate is dropped) across 2 pages.
	if resp.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", resp.TotalPages)
	}
	if !resp.HasMore {
		t.Error("page 0 of 2 should have more")
	}
	if len(resp.Verses) != 5 {
		t.Fatalf("page 0 has %d verses, want 5", len(resp.Verses))
	}
	for i, verse := range resp.Verses {
		if verse.Priority != PriorityThemeTop {
			t.Errorf("verse %d priority = %q, want theme_top", i, verse.Priority)
		}
		if verse.Score != 1.8 {
			t.Errorf("verse %d score = %v, want 1.8", i, verse.Score)
		}
	}
	// Curated verses keep their corpus popularity or get the display
	// default.
	if resp.Verses[0].Meta.Popularity != 95 {
		t.Errorf("curated popularity = %d, want 95", resp.Verses[0].Meta.Popularity)
	}
	if resp.Verses[1].Meta.Popularity != 85 {
		t.Errorf("curated default popularity = %d, want 85", resp.Verses[1].Meta.Popularity)
	}

	page1, err := engine.Recommend(context.Background(), Request{Query: "위로", Page: 1})
	if err != nil {
		t.Fatalf("Recommend page 1 failed: %v", err)
	}
	if len(page1.Verses) != 2 {
		t.Fatalf("page 1 has %d verses, want 2", len(page1.Verses))
	}
	if page1.HasMore {
		t.Error("last page should not have more")
	}
	// General results are sorted best-first.
	if page1.Verses[0].Reference != "요한복음 14:27" || page1.Verses[1].Reference != "창세기 1:1" {
		t.Errorf("general order wrong: %q, %q", page1.Verses[0].Reference, page1.Verses[1].Reference)
	}
	for _, verse := range page1.Verses {
		if verse.Priority != PriorityGeneral {
			t.Errorf("general verse priority = %q", verse.Priority)
		}
		if verse.Reference == "시편 34:18" {
			t.Error("curated duplicate leaked into general results")
		}
	}
}

func TestRecommendGeneralDedup(t *testing.T) {
	store := &fakeStore{
		candidates: []vectorstore.Candidate{
			{Content: "본문 하나", Meta: map[string]any{"reference": "창세기 1:1", "popularity": 10}, Score: 0.4},
			{Content: "본문 둘", Meta: map[string]any{"reference": "창세기 1:1", "popularity": 90}, Score: 0.4},
		},
	}
	embedder := &fakeEmbedder{vec: []float32{0.1}}
	engine := newTestEngine(store, embedder)

	resp, err := engine.Recommend(context.Background(), Request{Query: "양자역학", Page: 0})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(resp.Verses) != 1 {
		t.Fatalf("dedup failed: %d verses for one reference", len(resp.Verses))
	}
	// The higher-popularity duplicate scores better and survives.
	if resp.Verses[0].Text != "본문 둘" {
		t.Errorf("kept %q, want the better-scored duplicate", resp.Verses[0].Text)
	}
}

func TestRecommendPagination(t *testing.T) {
	candidates := make([]vectorstore.Candidate, 8)
	for i := range candidates {
		candidates[i] = vectorstore.Candidate{
			Content: fmt.Sprintf("본문 %d", i+1),
			Meta:    map[string]any{"reference": fmt.Sprintf("창세기 1:%d", i+1)},
			Score:   float32(1.0 - float32(i)*0.05),
		}
	}
	store := &fakeStore{candidates: candidates}
	engine := newTestEngine(store, &fakeEmbedder{vec: []float32{0.1}})

	ctx := context.Background()
	page0, err := engine.Recommend(ctx, Request{Query: "양자역학", Page: 0})
	if err != nil {
		t.Fatalf("page 0 failed: %v", err)
	}
	page1, err := engine.Recommend(ctx, Request{Query: "양자역학", Page: 1})
	if err != nil {
		t.Fatalf("page 1 failed: %v", err)
	}
	page9, err := engine.Recommend(ctx, Request{Query: "양자역학", Page: 9})
	if err != nil {
		t.Fatalf("page 9 failed: %v", err)
	}

	if len(page0.Verses) != 5 || !page0.HasMore || page0.TotalPages != 2 {
		t.Errorf("page 0 = %d verses, HasMore %v, TotalPages %d", len(page0.Verses), page0.HasMore, page0.TotalPages)
	}
	if len(page1.Verses) != 3 || page1.HasMore {
		t.Errorf("page 1 = %d verses, HasMore %v", len(page1.Verses), page1.HasMore)
	}
	if len(page9.Verses) != 0 || page9.HasMore {
		t.Errorf("out-of-range page = %d verses, HasMore %v", len(page9.Verses), page9.HasMore)
	}

	// The two pages partition the result set with no overlap.
	seen := make(map[string]struct{})
	for _, verse := range append(page0.Verses, page1.Verses...) {
		if _, dup := seen[verse.Reference]; dup {
			t.Errorf("reference %q appears on both pages", verse.Reference)
		}
		seen[verse.Reference] = struct{}{}
	}
	if len(seen) != 8 {
		t.Errorf("pages cover %d references, want 8", len(seen))
	}
}

func TestRecommendEmbedError(t *testing.T) {
	store := &fakeStore{}
	embedder := &fakeEmbedder{err: errors.New("embedding backend down")}
	engine := newTestEngine(store, embedder)

	_, err := engine.Recommend(context.Background(), Request{Query: "양자역학"})
	if !errors.Is(err, service.ErrExternalService) {
		t.Fatalf("error = %v, want ErrExternalService", err)
	}
}

func TestRecommendSearchError(t *testing.T) {
	store := &fakeStore{queryErr: errors.New("qdrant down")}
	embedder := &fakeEmbedder{vec: []float32{0.1}}
	engine := newTestEngine(store, embedder)

	_, err := engine.Recommend(context.Background(), Request{Query: "양자역학"})
	if !errors.Is(err, service.ErrSearchUnavailable) {
		t.Fatalf("error = %v, want ErrSearchUnavailable", err)
	}
}
