package client

import (
	"context"

	"github.com/dmitrijs2005/recipebox/internal/client/models"
)

type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, name, email string, password []byte) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)

	ListRecipes(ctx context.Context, search string, page, limit int) (*models.RecipePage, error)
	ListMyRecipes(ctx context.Context, page, limit int) (*models.RecipePage, error)
	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, in models.NewRecipe) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error

	AddFavorite(ctx context.Context, recipeID string) (string, error)
	RemoveFavorite(ctx context.Context, recipeID string) error
	ListFavorites(ctx context.Context) ([]models.Recipe, error)
}
