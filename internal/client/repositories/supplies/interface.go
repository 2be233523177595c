package supplies

import (
	"context"

	"github.com/dmitrijs2005/medsupply/internal/client/models"
)

type Repository interface {
	ReplaceAll(ctx context.Context, items []models.Supply) error
	GetAll(ctx context.Context) ([]models.Supply, error)
}
