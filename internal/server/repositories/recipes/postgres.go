// Package recipes provides the PostgreSQL-backed recipe repository, including
// the filtered, paginated catalog query.
package recipes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements recipe storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// newID is a seam for tests.
var newID = uuid.NewString

const selectColumns = `r.id, r.name, r.instructions, r.ingredients, r.thumbnail, r.posted_by, u.name,
		r.posted_at, r.created_at, r.updated_at`

// Create inserts the recipe and fills in ID and timestamps. An owner that
// does not exist yields common.ErrNotFound.
func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	query := `
		INSERT INTO recipes (id, name, instructions, ingredients, thumbnail, posted_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING posted_at, created_at, updated_at
	`

	ingredients, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("encode ingredients: %w", err)
	}
	if recipe.ID == "" {
		recipe.ID = newID()
	}

	err = r.db.QueryRowContext(ctx, query,
		recipe.ID, recipe.Name, recipe.Instructions, string(ingredients), nullString(recipe.Thumbnail), recipe.PostedBy,
	).Scan(&recipe.PostedAt, &recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: owner %s", common.ErrNotFound, recipe.PostedBy)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipe, nil
}

// GetByID returns the recipe with the owner's name resolved.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	query := `SELECT ` + selectColumns + `
		FROM recipes r JOIN users u ON u.id = r.posted_by
		WHERE r.id = $1
	`
	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipe, nil
}

// LockForDelete reads the owner and thumbnail of a recipe and locks the row
// until the surrounding transaction ends. Only ID, PostedBy and Thumbnail are set.
func (r *PostgresRepository) LockForDelete(ctx context.Context, id string) (*models.Recipe, error) {
	query := `SELECT id, posted_by, thumbnail FROM recipes WHERE id = $1 FOR UPDATE`

	var (
		recipe    models.Recipe
		thumbnail sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&recipe.ID, &recipe.PostedBy, &thumbnail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	recipe.Thumbnail = thumbnail.String
	return &recipe, nil
}

// Delete removes the recipe row. Favorites must be removed first.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: recipe %s is still referenced", common.ErrConflict, id)
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// List returns one page of recipes matching filter, newest first, together
// with the number of recipes in the whole filtered set.
func (r *PostgresRepository) List(ctx context.Context, filter models.RecipeFilter) ([]*models.Recipe, int, error) {
	where, args := filterClause(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM recipes r` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + selectColumns + `
		FROM recipes r JOIN users u ON u.id = r.posted_by` + where + fmt.Sprintf(`
		ORDER BY r.posted_at DESC, r.id DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select recipes: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Recipe, 0, filter.Limit)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// filterClause builds the WHERE clause shared by the count and page queries.
// An owner filter takes precedence over the search term.
func filterClause(f models.RecipeFilter) (string, []any) {
	switch {
	case f.PostedBy != "":
		return ` WHERE r.posted_by = $1`, []any{f.PostedBy}
	case f.Search != "":
		return ` WHERE r.name ILIKE $1`, []any{"%" + escapeLike(f.Search) + "%"}
	default:
		return "", nil
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	var (
		recipe      models.Recipe
		ingredients []byte
		thumbnail   sql.NullString
	)
	if err := row.Scan(
		&recipe.ID, &recipe.Name, &recipe.Instructions, &ingredients, &thumbnail,
		&recipe.PostedBy, &recipe.PostedByName,
		&recipe.PostedAt, &recipe.CreatedAt, &recipe.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(ingredients, &recipe.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients of %s: %w", recipe.ID, err)
	}
	recipe.Thumbnail = thumbnail.String
	return &recipe, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
