package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"versebox/internal/recommend"
	"versebox/internal/service"
)

type mockEngine struct {
	resp  recommend.Response
	err   error
	calls int
	last  recommend.Request
}

func (m *mockEngine) Recommend(ctx context.Context, req recommend.Request) (recommend.Response, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return recommend.Response{}, m.err
	}
	return m.resp, nil
}

func postRecommend(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/recommend-verses", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRecommendHandlerSuccess(t *testing.T) {
	engine := &mockEngine{resp: recommend.Response{
		Verses: []recommend.Verse{
			{Reference: "시편 34:18", Text: "여호와는 마음이 상한 자를 가까이 하시고", Score: 1.8, Priority: recommend.PriorityThemeTop},
		},
		HasMore:    true,
		TotalPages: 3,
		Page:       0,
	}}
	handler := NewRecommendHandler(engine)

	rec := postRecommend(t, handler, RecommendRequest{Query: "위로", Page: 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp RecommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Verses) != 1 || resp.Verses[0].Reference != "시편 34:18" {
		t.Errorf("unexpected verses: %+v", resp.Verses)
	}
	if !resp.HasMore || resp.TotalPages != 3 {
		t.Errorf("pagination fields lost: %+v", resp)
	}
}

func TestRecommendHandlerKeywordAlias(t *testing.T) {
	engine := &mockEngine{}
	handler := NewRecommendHandler(engine)

	rec := postRecommend(t, handler, RecommendRequest{Keyword: "불안"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if engine.last.Query != "불안" {
		t.Errorf("engine query = %q, want 불안", engine.last.Query)
	}
}

func TestRecommendHandlerExactResponseShape(t *testing.T) {
	engine := &mockEngine{resp: recommend.Response{
		Verses: []recommend.Verse{
			{Reference: "마태복음 10:5", Text: "예수께서 이 열둘을 내보내시며", Score: 1.0, Priority: recommend.PriorityExact},
		},
		Exact: true,
	}}
	handler := NewRecommendHandler(engine)

	rec := postRecommend(t, handler, RecommendRequest{Query: "마 10:5"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// Exact hits carry only the verses array, no pagination fields.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := raw["verses"]; !ok {
		t.Error("exact response missing verses")
	}
	for _, field := range []string{"has_more", "total_pages", "page"} {
		if _, ok := raw[field]; ok {
			t.Errorf("exact response carries pagination field %q", field)
		}
	}
}

func TestRecommendHandlerEmptyQuery(t *testing.T) {
	engine := &mockEngine{}
	handler := NewRecommendHandler(engine)

	rec := postRecommend(t, handler, RecommendRequest{Query: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if engine.calls != 0 {
		t.Errorf("engine called %d times for empty query", engine.calls)
	}
}

func TestRecommendHandlerInvalidBody(t *testing.T) {
	handler := NewRecommendHandler(&mockEngine{})

	req := httptest.NewRequest(http.MethodPost, "/api/recommend-verses", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRecommendHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"search unavailable", service.ErrSearchUnavailable, http.StatusServiceUnavailable},
		{"external service", service.ErrExternalService, http.StatusBadGateway},
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest},
		{"unknown error", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRecommendHandler(&mockEngine{err: tt.err})
			rec := postRecommend(t, handler, RecommendRequest{Query: "위로"})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp.Error == "" {
				t.Error("error response missing message")
			}
		})
	}
}

func TestRecommendHandlerMethodNotAllowed(t *testing.T) {
	handler := NewRecommendHandler(&mockEngine{})

	req := httptest.NewRequest(http.MethodGet, "/api/recommend-verses", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestRecommendHandlerNegativePage(t *testing.T) {
	engine := &mockEngine{}
	handler := NewRecommendHandler(engine)

	rec := postRecommend(t, handler, RecommendRequest{Query: "위로", Page: -2})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if engine.last.Page != 0 {
		t.Errorf("engine page = %d, want 0", engine.last.Page)
	}
}
