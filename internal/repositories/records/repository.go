// Package records implements per-user storage of expense and income
// transactions.
package records

import (
	"context"

	"github.com/dmitrijs2005/coinkeeper/internal/models"
)

// Repository stores transactions one record per key, partitioned by user id.
// Reads never cross the user boundary: listing scans only the caller's key
// prefix.
type Repository interface {
	// Save upserts a record under its (kind, user, id) key.
	Save(ctx context.Context, rec *models.Record) error

	// Get returns one record or common.ErrRecordNotFound.
	Get(ctx context.Context, kind models.RecordKind, userID, id string) (*models.Record, error)

	// Delete removes a record; common.ErrRecordNotFound when absent.
	Delete(ctx context.Context, kind models.RecordKind, userID, id string) error

	// ListByUser returns all of one user's records of one kind, newest
	// transaction date first.
	ListByUser(ctx context.Context, kind models.RecordKind, userID string) ([]models.Record, error)
}
