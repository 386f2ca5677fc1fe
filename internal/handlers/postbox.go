package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"versebox/internal/contextutil"
	"versebox/internal/storage"
)

// PostboxHandler handles HTTP requests for prayer postboxes and postcards.
type PostboxHandler struct {
	postboxes  storage.PostboxStore
	postcards  storage.PostcardStore
	unlockDate time.Time
	baseURL    string
}

// NewPostboxHandler creates a new PostboxHandler. unlockDate is the date on
// which all postboxes become readable regardless of their stored flag.
func NewPostboxHandler(postboxes storage.PostboxStore, postcards storage.PostcardStore, unlockDate time.Time, baseURL string) *PostboxHandler {
	return &PostboxHandler{
		postboxes:  postboxes,
		postcards:  postcards,
		unlockDate: unlockDate,
		baseURL:    baseURL,
	}
}

// CreatePostboxRequest represents the HTTP request payload for creating a
// postbox.
//
// swagger:model CreatePostboxRequest
type CreatePostboxRequest struct {
	Nickname    string `json:"nickname"`
	PrayerTopic string `json:"prayer_topic,omitempty"`
}

// PostboxResponse represents a postbox in HTTP responses.
//
// swagger:model PostboxResponse
type PostboxResponse struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	PrayerTopic string `json:"prayer_topic,omitempty"`
	URL         string `json:"url"`
	IsOpened    bool   `json:"is_opened"`
	CreatedAt   string `json:"created_at"`
}

// SendPostcardRequest represents the HTTP request payload for sending a
// postcard to a postbox. When the postbox does not exist yet it is created
// on the fly with the recipient nickname.
//
// swagger:model SendPostcardRequest
type SendPostcardRequest struct {
	PostboxID         string `json:"postbox_id"`
	RecipientNickname string `json:"recipient_nickname,omitempty"`
	TemplateID        int    `json:"template_id,omitempty"`
	TemplateType      int    `json:"template_type,omitempty"`
	TemplateName      string `json:"template_name,omitempty"`
	IsAnonymous       bool   `json:"is_anonymous,omitempty"`
	SenderName        string `json:"sender_name,omitempty"`
	VerseReference    string `json:"verse_reference,omitempty"`
	VerseText         string `json:"verse_text,omitempty"`
	Message           string `json:"message,omitempty"`
}

// PostcardResponse represents a postcard in HTTP responses.
//
// swagger:model PostcardResponse
type PostcardResponse struct {
	ID             string `json:"id"`
	PostboxID      string `json:"postbox_id"`
	TemplateID     int    `json:"template_id,omitempty"`
	TemplateType   int    `json:"template_type,omitempty"`
	TemplateName   string `json:"template_name,omitempty"`
	IsAnonymous    bool   `json:"is_anonymous"`
	SenderName     string `json:"sender_name,omitempty"`
	VerseReference string `json:"verse_reference,omitempty"`
	VerseText      string `json:"verse_text,omitempty"`
	Message        string `json:"message,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// PostcardListResponse represents the list of postcards in a postbox.
//
// swagger:model PostcardListResponse
type PostcardListResponse struct {
	Postcards []PostcardResponse `json:"postcards"`
	Count     int                `json:"count"`
}

// CreatePostbox handles POST /api/create-postbox.
//
// swagger:route POST /api/create-postbox createPostbox
//
// # Create a prayer postbox
//
// Creates a postbox with a short shareable ID and returns its URL.
//
// ---
// responses:
//
//	'201':
//	  description: Postbox created
//	  schema:
//	    "$ref": "#/definitions/PostboxResponse"
//	'400':
//	  description: Bad request (missing nickname)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *PostboxHandler) CreatePostbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreatePostboxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" {
		logger.WarnContext(ctx, "empty nickname in request")
		writeError(w, http.StatusBadRequest, "Nickname is required")
		return
	}

	box := &storage.Postbox{
		ID:          shortID(),
		Nickname:    req.Nickname,
		PrayerTopic: strings.TrimSpace(req.PrayerTopic),
	}
	box.URL = h.postboxURL(box.ID)

	if err := h.postboxes.Create(ctx, box); err != nil {
		logger.ErrorContext(ctx, "failed to create postbox", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create postbox")
		return
	}

	logger.InfoContext(ctx, "postbox created", "postbox_id", box.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(h.toPostboxResponse(box))
}

// GetPostbox handles GET /api/postboxes/{id}.
//
// swagger:route GET /api/postboxes/{id} getPostbox
//
// # Get a postbox
//
// Returns the postbox with its computed open state. A postbox reads as
// opened once the global unlock date has passed, even if the stored flag
// has not been swept yet.
//
// ---
// responses:
//
//	'200':
//	  description: Postbox found
//	  schema:
//	    "$ref": "#/definitions/PostboxResponse"
//	'404':
//	  description: Postbox not found
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *PostboxHandler) GetPostbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	box, err := h.postboxes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Postbox not found")
			return
		}
		logger.ErrorContext(ctx, "failed to get postbox", "postbox_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get postbox")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.toPostboxResponse(box))
}

// SendPostcard handles POST /api/send-postcard.
//
// swagger:route POST /api/send-postcard sendPostcard
//
// # Send a postcard
//
// Stores a postcard in the target postbox. If the postbox does not exist
// and a recipient nickname is provided, the postbox is created first.
//
// ---
// responses:
//
//	'201':
//	  description: Postcard stored
//	  schema:
//	    "$ref": "#/definitions/PostcardResponse"
//	'400':
//	  description: Bad request (missing postbox_id)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'404':
//	  description: Postbox not found and no recipient nickname given
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *PostboxHandler) SendPostcard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SendPostcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.PostboxID = strings.TrimSpace(req.PostboxID)
	if req.PostboxID == "" {
		logger.WarnContext(ctx, "empty postbox_id in request")
		writeError(w, http.StatusBadRequest, "postbox_id is required")
		return
	}

	if _, err := h.postboxes.GetByID(ctx, req.PostboxID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.ErrorContext(ctx, "failed to look up postbox", "postbox_id", req.PostboxID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to send postcard")
			return
		}
		nickname := strings.TrimSpace(req.RecipientNickname)
		if nickname == "" {
			writeError(w, http.StatusNotFound, "Postbox not found")
			return
		}
		// Postcards can arrive before the recipient ever visited the
		// service. Create the postbox on the fly in that case.
		box := &storage.Postbox{
			ID:       req.PostboxID,
			Nickname: nickname,
			URL:      h.postboxURL(req.PostboxID),
		}
		if err := h.postboxes.Create(ctx, box); err != nil {
			logger.ErrorContext(ctx, "failed to create fallback postbox", "postbox_id", req.PostboxID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to send postcard")
			return
		}
		logger.InfoContext(ctx, "fallback postbox created", "postbox_id", box.ID)
	}

	card := &storage.Postcard{
		PostboxID:      req.PostboxID,
		TemplateID:     req.TemplateID,
		TemplateType:   req.TemplateType,
		TemplateName:   req.TemplateName,
		IsAnonymous:    req.IsAnonymous,
		SenderName:     strings.TrimSpace(req.SenderName),
		VerseReference: req.VerseReference,
		VerseText:      req.VerseText,
		Message:        req.Message,
	}
	if err := h.postcards.Create(ctx, card); err != nil {
		logger.ErrorContext(ctx, "failed to store postcard", "postbox_id", req.PostboxID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send postcard")
		return
	}

	logger.InfoContext(ctx, "postcard stored", "postbox_id", req.PostboxID, "postcard_id", card.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toPostcardResponse(card))
}

// ListPostcards handles GET /api/postboxes/{id}/postcards.
//
// swagger:route GET /api/postboxes/{id}/postcards listPostcards
//
// # List postcards in a postbox
//
// Returns the postcards oldest-first. The postbox must be opened, either
// by the unlock sweep or because the global unlock date has passed.
//
// ---
// responses:
//
//	'200':
//	  description: Postcards in the postbox
//	  schema:
//	    "$ref": "#/definitions/PostcardListResponse"
//	'403':
//	  description: Postbox is still locked
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'404':
//	  description: Postbox not found
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *PostboxHandler) ListPostcards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	box, err := h.postboxes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Postbox not found")
			return
		}
		logger.ErrorContext(ctx, "failed to get postbox", "postbox_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list postcards")
		return
	}

	if !h.isOpened(box) {
		writeError(w, http.StatusForbidden, "Postbox is not opened yet")
		return
	}

	cards, err := h.postcards.ListByPostbox(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list postcards", "postbox_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list postcards")
		return
	}

	resp := PostcardListResponse{
		Postcards: make([]PostcardResponse, len(cards)),
		Count:     len(cards),
	}
	for i, card := range cards {
		resp.Postcards[i] = toPostcardResponse(&card)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *PostboxHandler) toPostboxResponse(box *storage.Postbox) PostboxResponse {
	return PostboxResponse{
		ID:          box.ID,
		Nickname:    box.Nickname,
		PrayerTopic: box.PrayerTopic,
		URL:         box.URL,
		IsOpened:    h.isOpened(box),
		CreatedAt:   box.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// isOpened computes the effective open state. The stored flag is set by the
// unlock sweep, but the date check makes the transition immediate even when
// the sweep has not run yet.
func (h *PostboxHandler) isOpened(box *storage.Postbox) bool {
	return box.IsOpened || !time.Now().Before(h.unlockDate)
}

func (h *PostboxHandler) postboxURL(id string) string {
	return fmt.Sprintf("%s/postbox/%s", strings.TrimRight(h.baseURL, "/"), id)
}

func toPostcardResponse(card *storage.Postcard) PostcardResponse {
	return PostcardResponse{
		ID:             card.ID,
		PostboxID:      card.PostboxID,
		TemplateID:     card.TemplateID,
		TemplateType:   card.TemplateType,
		TemplateName:   card.TemplateName,
		IsAnonymous:    card.IsAnonymous,
		SenderName:     card.SenderName,
		VerseReference: card.VerseReference,
		VerseText:      card.VerseText,
		Message:        card.Message,
		CreatedAt:      card.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// shortID returns the 8-character shareable postbox ID.
func shortID() string {
	return uuid.New().String()[:8]
}
