package recipes

import (
	"context"

	"github.com/dmitrijs2005/recipebox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	LockForDelete(ctx context.Context, id string) (*models.Recipe, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter models.RecipeFilter) ([]*models.Recipe, int, error)
}
