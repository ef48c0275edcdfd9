// Package storage persists completed reviews for session history.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	// import db drivers
	_ "github.com/lib/pq"

	"github.com/draftproof/paper-warden/internal/core"
)

// ErrNotFound is returned when no stored review matches the query.
var ErrNotFound = errors.New("review not found")

// Store defines the interface for all database operations.
type Store interface {
	// SaveReview inserts one completed review.
	SaveReview(ctx context.Context, review *core.StoredReview) error
	// GetLatestBySession returns the most recent review for a session.
	GetLatestBySession(ctx context.Context, sessionID string) (*core.StoredReview, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) SaveReview(ctx context.Context, review *core.StoredReview) error {
	query := `INSERT INTO reviews
		(session_id, target_venue, suggestion_json, suggestion_count, section_count, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.ExecContext(ctx, query,
		review.SessionID, review.TargetVenue, review.SuggestionJSON,
		review.SuggestionCount, review.SectionCount, review.DurationSeconds, time.Now())
	return err
}

func (s *postgresStore) GetLatestBySession(ctx context.Context, sessionID string) (*core.StoredReview, error) {
	query := `
		SELECT id, session_id, target_venue, suggestion_json, suggestion_count, section_count, duration_seconds, created_at
		FROM reviews
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var r core.StoredReview
	if err := s.db.GetContext(ctx, &r, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}
