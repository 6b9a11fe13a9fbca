// Package sessions declares the repository for server-side session rows.
// A row holds the encoded session values keyed by the ID the cookie carries.
package sessions

import (
	"context"
	"time"
)

// Record is one stored session.
type Record struct {
	ID        string
	Data      []byte
	ExpiresAt time.Time
}

// Repository defines storage for session rows.
type Repository interface {
	// Find returns the live row for id. Expired and missing rows yield
	// common.ErrSessionNotFound.
	Find(ctx context.Context, id string, now time.Time) (*Record, error)

	// Upsert creates or replaces the row for rec.ID.
	Upsert(ctx context.Context, rec Record) error

	// Delete removes a row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every row that expired before now and reports
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
