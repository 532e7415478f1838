package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresLedger persists artifacts into the artifacts table.
type PostgresLedger struct {
	db *sqlx.DB
}

// NewPostgresLedger wraps an open database handle.
func NewPostgresLedger(db *sqlx.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Record(ctx context.Context, a Artifact) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `
		INSERT INTO artifacts (user_id, carrier, name_segment, path, created_at)
		VALUES (:user_id, :carrier, :name_segment, :path, :created_at)`
	if _, err := l.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("artifacts insert: %w", err)
	}
	return nil
}

// Recent returns the newest artifacts for a user, for diagnostics.
func (l *PostgresLedger) Recent(ctx context.Context, userID int64, limit int) ([]Artifact, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT user_id, carrier, name_segment, path, created_at
		FROM artifacts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	var out []Artifact
	if err := l.db.SelectContext(ctx, &out, query, userID, limit); err != nil {
		return nil, fmt.Errorf("artifacts select: %w", err)
	}
	return out, nil
}
