// Package store describes the entry store consumed by the data-access
// facade: a small query algebra over one table plus a per-user change feed.
// Backends live in subpackages; the gRPC client implements it too.
package store

import (
	"context"

	"github.com/dmitrijs2005/wellkeeper/internal/models"
)

// Store is the entry store contract.
//
// Backends report failures wrapped around the common sentinels:
// common.ErrorNotFound for a missing row, common.ErrorUniqueViolation for a
// second entry on the same (user, date), and common.ErrorForeignKeyViolation
// for an unknown user.
type Store interface {
	// Select returns the rows matching q, honouring order, limit and offset.
	Select(ctx context.Context, q Query) ([]models.Entry, error)
	// Count returns how many rows match q, ignoring order and paging.
	Count(ctx context.Context, q Query) (int, error)
	// Insert creates an entry owned by userID and returns the stored row.
	Insert(ctx context.Context, userID string, in models.EntryInput) (models.Entry, error)
	// Update applies patch, refreshes updated_at and returns the stored row.
	Update(ctx context.Context, id string, patch models.EntryPatch) (models.Entry, error)
	// Delete removes the entry and returns it as it was.
	Delete(ctx context.Context, id string) (models.Entry, error)
	// Watch streams changes to userID's entries until ctx is done, then
	// closes the channel.
	Watch(ctx context.Context, userID string) (<-chan models.ChangeEvent, error)
}
