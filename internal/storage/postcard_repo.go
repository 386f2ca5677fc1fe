package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostcardStore defines the interface for postcard storage operations.
type PostcardStore interface {
	// Create inserts a new postcard, generating its ID when empty.
	Create(ctx context.Context, postcard *Postcard) error
	// ListByPostbox returns the postcards of a postbox, oldest first.
	ListByPostbox(ctx context.Context, postboxID string) ([]Postcard, error)
}

// PostcardRepo provides methods for postcard operations.
// It implements the PostcardStore interface.
type PostcardRepo struct {
	db *sql.DB
}

// NewPostcardRepo creates a new PostcardRepo.
func NewPostcardRepo(db *sql.DB) *PostcardRepo {
	return &PostcardRepo{db: db}
}

// Create inserts a new postcard.
func (r *PostcardRepo) Create(ctx context.Context, postcard *Postcard) error {
	if postcard.ID == "" {
		postcard.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO postcards (id, postbox_id, template_id, template_type, template_name,
		   is_anonymous, sender_name, verse_reference, verse_text, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		postcard.ID, postcard.PostboxID, postcard.TemplateID, postcard.TemplateType,
		postcard.TemplateName, boolToInt(postcard.IsAnonymous), postcard.SenderName,
		postcard.VerseReference, postcard.VerseText, postcard.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert postcard: %w", err)
	}
	return nil
}

// ListByPostbox returns the postcards of a postbox, oldest first.
func (r *PostcardRepo) ListByPostbox(ctx context.Context, postboxID string) ([]Postcard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, postbox_id, template_id, template_type, template_name,
		   is_anonymous, sender_name, verse_reference, verse_text, message, created_at
		 FROM postcards WHERE postbox_id = ? ORDER BY created_at ASC, id ASC`, postboxID)
	if err != nil {
		return nil, fmt.Errorf("failed to query postcards: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var postcards []Postcard
	for rows.Next() {
		var card Postcard
		var isAnonymous int
		var createdAtStr string
		if err := rows.Scan(&card.ID, &card.PostboxID, &card.TemplateID, &card.TemplateType,
			&card.TemplateName, &isAnonymous, &card.SenderName, &card.VerseReference,
			&card.VerseText, &card.Message, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan postcard: %w", err)
		}
		card.IsAnonymous = isAnonymous != 0
		card.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		postcards = append(postcards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate postcards: %w", err)
	}
	return postcards, nil
}
