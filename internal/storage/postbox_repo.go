package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// PostboxStore defines the interface for postbox storage operations.
type PostboxStore interface {
	// Create inserts a new postbox.
	Create(ctx context.Context, postbox *Postbox) error
	// GetByID gets a postbox by its ID. Returns nil and ErrNotFound if
	// the postbox does not exist.
	GetByID(ctx context.Context, id string) (*Postbox, error)
	// UnlockAll marks every postbox opened. Returns the number of
	// postboxes that were still locked.
	UnlockAll(ctx context.Context) (int64, error)
}

// PostboxRepo provides methods for postbox operations.
// It implements the PostboxStore interface.
type PostboxRepo struct {
	db *sql.DB
}

// NewPostboxRepo creates a new PostboxRepo.
func NewPostboxRepo(db *sql.DB) *PostboxRepo {
	return &PostboxRepo{db: db}
}

// Create inserts a new postbox.
func (r *PostboxRepo) Create(ctx context.Context, postbox *Postbox) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO postboxes (id, nickname, prayer_topic, url, is_opened)
		 VALUES (?, ?, ?, ?, ?)`,
		postbox.ID, postbox.Nickname, postbox.PrayerTopic, postbox.URL, boolToInt(postbox.IsOpened),
	)
	if err != nil {
		return fmt.Errorf("failed to insert postbox: %w", err)
	}
	return nil
}

// GetByID gets a postbox by its ID.
func (r *PostboxRepo) GetByID(ctx context.Context, id string) (*Postbox, error) {
	var postbox Postbox
	var isOpened int
	var createdAtStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, nickname, prayer_topic, url, is_opened, created_at
		 FROM postboxes WHERE id = ?`, id,
	).Scan(&postbox.ID, &postbox.Nickname, &postbox.PrayerTopic, &postbox.URL, &isOpened, &createdAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query postbox: %w", err)
	}

	postbox.IsOpened = isOpened != 0
	postbox.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &postbox, nil
}

// UnlockAll marks every postbox opened.
func (r *PostboxRepo) UnlockAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE postboxes SET is_opened = 1 WHERE is_opened = 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to unlock postboxes: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count unlocked postboxes: %w", err)
	}
	return affected, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseTimestamp handles the DATETIME string formats SQLite may produce.
func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", value)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
