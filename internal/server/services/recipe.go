package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/cache"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// favoriteCascade removes the favorites of a recipe inside the caller's
// transaction.
type favoriteCascade interface {
	RemoveAllForRecipe(ctx context.Context, db dbx.DBTX, recipeID string) (int64, error)
}

// RecipeService owns the recipe lifecycle and the catalog queries.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	favorites   favoriteCascade
	assets      assets.Store
	cache       cache.RecipeCache
	logger      logging.Logger

	defaultLimit int
	maxLimit     int
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager, favorites favoriteCascade,
	store assets.Store, c cache.RecipeCache, cfg *config.Config, logger logging.Logger) *RecipeService {
	if c == nil {
		c = cache.Nop{}
	}
	return &RecipeService{
		db:           db,
		repomanager:  m,
		favorites:    favorites,
		assets:       store,
		cache:        c,
		logger:       logger,
		defaultLimit: cfg.DefaultPageLimit,
		maxLimit:     cfg.MaxPageLimit,
	}
}

// Create validates in, uploads the optional thumbnail and stores the recipe
// owned by ownerID. If the row cannot be written the uploaded thumbnail is
// removed again.
func (s *RecipeService) Create(ctx context.Context, ownerID string, in CreateRecipeInput, thumbnail *assets.Object) (*models.RecipeSummary, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var summary *models.RecipeSummary
	err := logging.Timed(ctx, s.logger, "recipes.create", func(ctx context.Context) error {
		recipe := &models.Recipe{
			Name:         strings.TrimSpace(in.Name),
			Instructions: in.Instructions,
			Ingredients:  in.Ingredients,
			PostedBy:     ownerID,
		}

		if thumbnail != nil {
			ref, err := s.assets.Store(ctx, *thumbnail)
			if err != nil {
				return fmt.Errorf("%w: thumbnail upload: %v", common.ErrInternal, err)
			}
			recipe.Thumbnail = ref
		}

		created, err := s.repomanager.Recipes(s.db).Create(ctx, recipe)
		if err != nil {
			if recipe.Thumbnail != "" {
				s.deleteAsset(ctx, recipe.ID, recipe.Thumbnail)
			}
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("%w: unknown user", common.ErrUnauthenticated)
			}
			return fmt.Errorf("error creating recipe: %w", err)
		}

		summary = &models.RecipeSummary{ID: created.ID, Name: created.Name, PostedBy: created.PostedBy}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// FindByID returns one recipe with its owner's name.
func (s *RecipeService) FindByID(ctx context.Context, id string) (*models.Recipe, error) {
	if !isID(id) {
		return nil, invalidID("recipe", id)
	}
	if recipe, ok := s.cache.Get(ctx, id); ok {
		return recipe, nil
	}

	recipe, err := s.repomanager.Recipes(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, invalidID("recipe", id)
		}
		return nil, fmt.Errorf("error loading recipe: %w", err)
	}
	s.cache.Set(ctx, recipe)
	return recipe, nil
}

// List returns a page of the whole catalog, optionally narrowed to names
// containing search (case-insensitive).
func (s *RecipeService) List(ctx context.Context, search string, page, limit int) (*models.RecipePage, error) {
	return s.list(ctx, models.RecipeFilter{Search: strings.TrimSpace(search)}, page, limit)
}

// ListByOwner returns a page of the recipes posted by ownerID.
func (s *RecipeService) ListByOwner(ctx context.Context, ownerID string, page, limit int) (*models.RecipePage, error) {
	return s.list(ctx, models.RecipeFilter{PostedBy: ownerID}, page, limit)
}

func (s *RecipeService) list(ctx context.Context, f models.RecipeFilter, page, limit int) (*models.RecipePage, error) {
	f.Page, f.Limit = s.NormalizePage(page, limit)

	items, total, err := s.repomanager.Recipes(s.db).List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing recipes: %w", err)
	}
	return &models.RecipePage{Recipes: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// NormalizePage applies the default page and limit and caps limit.
func (s *RecipeService) NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}
	return page, limit
}

// Delete removes a recipe owned by requesterID. The favorites cascade and
// the row deletion commit or roll back together; the thumbnail is removed
// after commit and a failure there is only logged.
func (s *RecipeService) Delete(ctx context.Context, id, requesterID string) error {
	if !isID(id) {
		return invalidID("recipe", id)
	}

	return logging.Timed(ctx, s.logger, "recipes.delete", func(ctx context.Context) error {
		var thumbnail string
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repomanager.Recipes(tx)

			recipe, err := repo.LockForDelete(ctx, id)
			if err != nil {
				return err
			}
			if recipe.PostedBy != requesterID {
				return fmt.Errorf("%w: only the owner can delete this recipe", common.ErrForbidden)
			}

			if _, err := s.favorites.RemoveAllForRecipe(ctx, tx, id); err != nil {
				return err
			}
			if err := repo.Delete(ctx, id); err != nil {
				return err
			}
			thumbnail = recipe.Thumbnail
			return nil
		})
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return invalidID("recipe", id)
			}
			if errors.Is(err, common.ErrForbidden) {
				return err
			}
			return fmt.Errorf("error deleting recipe: %w", err)
		}

		s.cache.Invalidate(ctx, id)
		if thumbnail != "" {
			s.deleteAsset(ctx, id, thumbnail)
		}
		s.logger.Info(ctx, "recipe deleted", "recipe_id", id, "user_id", requesterID)
		return nil
	})
}

func (s *RecipeService) deleteAsset(ctx context.Context, recipeID, ref string) {
	if err := s.assets.Delete(ctx, ref); err != nil {
		s.logger.Warn(ctx, "thumbnail delete failed", "recipe_id", recipeID, "thumbnail", ref, "error", err)
	}
}

func isID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
