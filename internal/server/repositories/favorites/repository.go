package favorites

import (
	"context"

	"github.com/dmitrijs2005/recipebox/internal/server/models"
)

type Repository interface {
	Add(ctx context.Context, userID, recipeID string) (*models.Favorite, error)
	Remove(ctx context.Context, userID, recipeID string) error
	ListRecipes(ctx context.Context, userID string) ([]*models.Recipe, error)
	RemoveAllForRecipe(ctx context.Context, recipeID string) (int64, error)
}
