// Package materials is the local document collection of learning materials.
package materials

import (
	"context"

	"github.com/dmitrijs2005/prolens/internal/client/models"
)

// Repository stores LearningMaterial records keyed by id.
type Repository interface {
	// Put inserts m or replaces the record with the same id.
	Put(ctx context.Context, m *models.LearningMaterial) error

	// Get returns common.ErrNotFound when id is unknown.
	Get(ctx context.Context, id string) (*models.LearningMaterial, error)

	// GetAll returns every record in no particular order.
	GetAll(ctx context.Context) ([]models.LearningMaterial, error)

	// Delete removes id; unknown ids are not an error.
	Delete(ctx context.Context, id string) error

	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)

	// MarkAnalyzed sets is_analyzed once; later calls change nothing and
	// report false.
	MarkAnalyzed(ctx context.Context, id string) (bool, error)
}
