package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"versebox/internal/bible"
	"versebox/internal/contextutil"
	"versebox/internal/recommend"
	"versebox/internal/service"
)

// RecommendHandler handles HTTP requests for verse recommendations.
type RecommendHandler struct {
	engine recommend.Engine
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(engine recommend.Engine) *RecommendHandler {
	return &RecommendHandler{engine: engine}
}

// RecommendRequest represents the HTTP request payload for verse recommendations.
// This mirrors recommend.Request but is defined here for HTTP layer separation.
// Keyword is accepted as a legacy alias for Query.
//
// swagger:model RecommendRequest
type RecommendRequest struct {
	Query   string `json:"query"`
	Keyword string `json:"keyword,omitempty"`
	Page    int    `json:"page,omitempty"`
}

// VerseResponse represents one recommended verse in the HTTP response.
//
// swagger:model VerseResponse
type VerseResponse struct {
	// Canonical reference label, e.g. "마태복음 10:5"
	Reference string `json:"reference"`

	// Full verse text
	Text string `json:"text"`

	// Payload metadata carried through from the search index
	Metadata bible.VerseMeta `json:"metadata"`

	// Final ranking score
	Score float64 `json:"score"`

	// How this entry earned its place: "exact_reference", "theme_top" or "general"
	Priority string `json:"priority,omitempty"`
}

// RecommendResponse represents the paginated HTTP response for verse
// recommendations.
//
// swagger:model RecommendResponse
type RecommendResponse struct {
	Verses     []VerseResponse `json:"verses"`
	HasMore    bool            `json:"has_more"`
	TotalPages int             `json:"total_pages"`
	Page       int             `json:"page"`
}

// ExactRecommendResponse is the response shape for exact reference lookups.
// Exact hits carry no pagination fields.
//
// swagger:model ExactRecommendResponse
type ExactRecommendResponse struct {
	Verses []VerseResponse `json:"verses"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for verse recommendations.
//
// Recommend Bible verses for a free-text query. The query may be a mood or
// situation keyword ("불안", "comfort") or an exact scripture reference
// ("마태복음 10:5", "Matt 10:5"). Exact references resolve to a single verse
// and skip ranking entirely.
//
// swagger:route POST /api/recommend-verses recommendVerses
//
// # Recommend Bible verses
//
// Returns a ranked, paginated list of verses for the query. Curated theme
// verses are injected ahead of the general vector-search results.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// parameters:
//   - in: body
//     name: body
//     required: true
//     schema:
//     "$ref": "#/definitions/RecommendRequest"
//
// responses:
//
//	'200':
//	  description: Successful response with ranked verses
//	  schema:
//	    "$ref": "#/definitions/RecommendResponse"
//	'400':
//	  description: Bad request (missing query)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Embedding service unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Search backend unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Internal server error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *RecommendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = strings.TrimSpace(req.Keyword)
	}
	if query == "" {
		logger.WarnContext(ctx, "empty query in request")
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	page := req.Page
	if page < 0 {
		page = 0
	}

	result, err := h.engine.Recommend(ctx, recommend.Request{Query: query, Page: page})
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}

	verses := make([]VerseResponse, len(result.Verses))
	for i, v := range result.Verses {
		verses[i] = VerseResponse{
			Reference: v.Reference,
			Text:      v.Text,
			Metadata:  v.Meta,
			Score:     v.Score,
			Priority:  string(v.Priority),
		}
	}

	w.Header().Set("Content-Type", "application/json")

	// Exact reference hits return a single verse with no pagination fields.
	if result.Exact {
		if err := json.NewEncoder(w).Encode(ExactRecommendResponse{Verses: verses}); err != nil {
			logger.ErrorContext(ctx, "failed to encode response", "error", err)
		}
		return
	}

	resp := RecommendResponse{
		Verses:     verses,
		HasMore:    result.HasMore,
		TotalPages: result.TotalPages,
		Page:       result.Page,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleEngineError maps recommendation engine errors to HTTP status codes.
func (h *RecommendHandler) handleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "recommendation engine error", "error", err)

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Query is required")
	case errors.Is(err, service.ErrSearchUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Search backend unavailable")
	case errors.Is(err, service.ErrExternalService):
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to process recommendation")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
