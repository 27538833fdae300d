package store

import (
	"context"

	"github.com/nhle/simpletasks/internal/model"
)

// Store defines the persistence interface for the action journal.
type Store interface {
	// RecordAction appends rec, assigning an ID when it has none.
	RecordAction(ctx context.Context, rec model.ActionRecord) error

	// RecentActions returns at most limit records, newest first.
	RecentActions(ctx context.Context, limit int) ([]model.ActionRecord, error)

	// Close releases the database.
	Close() error
}
