// Package presentations is the local document collection of presentation
// files shown on the landing view.
package presentations

import (
	"context"

	"github.com/dmitrijs2005/prolens/internal/client/models"
)

type Repository interface {
	Put(ctx context.Context, p *models.PresentationDoc) error
	Get(ctx context.Context, id string) (*models.PresentationDoc, error)
	GetAll(ctx context.Context) ([]models.PresentationDoc, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
