// Package storage provides the source registry: a record of everything that
// has been ingested into the vector index, so sources can be listed and
// removed without querying the index itself.
package storage

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Registry records ingested sources.
type Registry interface {
	// Record inserts or replaces a source entry.
	Record(ctx context.Context, src *models.Source) error
	// List returns all sources, newest first.
	List(ctx context.Context) ([]*models.Source, error)
	// Get returns a source by ID, or nil when absent.
	Get(ctx context.Context, id string) (*models.Source, error)
	// Delete removes a source entry. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error
	// Close releases the underlying store.
	Close() error
}
