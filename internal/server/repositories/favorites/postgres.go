// Package favorites provides the PostgreSQL-backed favorites repository.
// Uniqueness of a (user, recipe) pair and the existence of the recipe are
// enforced by table constraints, not by read-then-write checks.
package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// newID is a seam for tests.
var newID = uuid.NewString

// Add links userID to recipeID. A repeated pair yields common.ErrConflict,
// a missing recipe yields common.ErrNotFound.
func (r *PostgresRepository) Add(ctx context.Context, userID, recipeID string) (*models.Favorite, error) {
	query := `
		INSERT INTO favorites (id, user_id, recipe_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	fav := &models.Favorite{ID: newID(), UserID: userID, RecipeID: recipeID}
	err := r.db.QueryRowContext(ctx, query, fav.ID, userID, recipeID).Scan(&fav.CreatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: recipe is already in favorites", common.ErrConflict)
		case dbx.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: recipe %s", common.ErrNotFound, recipeID)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return fav, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, recipeID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: favorite", common.ErrNotFound)
	}
	return nil
}

// ListRecipes returns the recipes userID has favorited, most recently added first.
func (r *PostgresRepository) ListRecipes(ctx context.Context, userID string) ([]*models.Recipe, error) {
	query := `
		SELECT r.id, r.name, r.instructions, r.ingredients, r.thumbnail, r.posted_by, u.name,
			r.posted_at, r.created_at, r.updated_at
		FROM favorites f
		JOIN recipes r ON r.id = f.recipe_id
		JOIN users u ON u.id = r.posted_by
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, f.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select favorites: %w", err)
	}
	defer rows.Close()

	result := []*models.Recipe{}
	for rows.Next() {
		var (
			item        models.Recipe
			ingredients []byte
			thumbnail   sql.NullString
		)
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Instructions, &ingredients, &thumbnail,
			&item.PostedBy, &item.PostedByName, &item.PostedAt, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(ingredients, &item.Ingredients); err != nil {
			return nil, fmt.Errorf("decode ingredients of %s: %w", item.ID, err)
		}
		item.Thumbnail = thumbnail.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveAllForRecipe deletes every favorite pointing at recipeID and reports
// how many rows went away. Zero is not an error.
func (r *PostgresRepository) RemoveAllForRecipe(ctx context.Context, recipeID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE recipe_id = $1`, recipeID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
