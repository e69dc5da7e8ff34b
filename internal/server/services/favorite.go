package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
)

// FavoriteService keeps each user's favorites list. Duplicate and dangling
// favorites are rejected by storage constraints.
type FavoriteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewFavoriteService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *FavoriteService {
	return &FavoriteService{db: db, repomanager: m, logger: logger}
}

// Add favorites recipeID for userID and returns the new favorite's id.
func (s *FavoriteService) Add(ctx context.Context, userID, recipeID string) (string, error) {
	if !isID(recipeID) {
		return "", invalidID("recipe", recipeID)
	}
	fav, err := s.repomanager.Favorites(s.db).Add(ctx, userID, recipeID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return "", invalidID("recipe", recipeID)
		case errors.Is(err, common.ErrConflict):
			return "", err
		}
		return "", fmt.Errorf("error adding favorite: %w", err)
	}
	return fav.ID, nil
}

func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID string) error {
	if !isID(recipeID) {
		return fmt.Errorf("%w: recipe is not in favorites", common.ErrNotFound)
	}
	if err := s.repomanager.Favorites(s.db).Remove(ctx, userID, recipeID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: recipe is not in favorites", common.ErrNotFound)
		}
		return fmt.Errorf("error removing favorite: %w", err)
	}
	return nil
}

// List returns the recipes userID has favorited.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]*models.Recipe, error) {
	recipes, err := s.repomanager.Favorites(s.db).ListRecipes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing favorites: %w", err)
	}
	return recipes, nil
}

// RemoveAllForRecipe deletes every favorite of recipeID through db, which is
// normally the transaction deleting the recipe. Zero matches is not an error.
func (s *FavoriteService) RemoveAllForRecipe(ctx context.Context, db dbx.DBTX, recipeID string) (int64, error) {
	n, err := s.repomanager.Favorites(db).RemoveAllForRecipe(ctx, recipeID)
	if err != nil {
		return 0, fmt.Errorf("error removing favorites of recipe %s: %w", recipeID, err)
	}
	if n > 0 {
		s.logger.Debug(ctx, "favorites removed with recipe", "recipe_id", recipeID, "count", n)
	}
	return n, nil
}
