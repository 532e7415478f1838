// Package artifacts keeps an optional record of generated receipt images.
package artifacts

import (
	"context"
	"time"
)

// Artifact describes one generated receipt image.
type Artifact struct {
	UserID      int64     `db:"user_id"`
	Carrier     string    `db:"carrier"`
	NameSegment string    `db:"name_segment"`
	Path        string    `db:"path"`
	CreatedAt   time.Time `db:"created_at"`
}

// Ledger records generated artifacts. Recording is best effort; callers do
// not fail a delivery over a ledger error.
type Ledger interface {
	Record(ctx context.Context, a Artifact) error
}

// NoopLedger is used when the database is disabled.
type NoopLedger struct{}

func (NoopLedger) Record(context.Context, Artifact) error { return nil }
