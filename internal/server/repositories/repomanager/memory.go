package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/users"
	"github.com/google/uuid"
)

// InMemoryRepositoryManager keeps everything in process memory and enforces
// the same constraints as the PostgreSQL schema: unique emails, unique
// (user, recipe) favorites and foreign keys. The DBTX arguments are ignored,
// so there is no transactional rollback.
type InMemoryRepositoryManager struct {
	s *memoryStore
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{s: &memoryStore{
		users:     map[string]*models.User{},
		recipes:   map[string]*models.Recipe{},
		favorites: map[string]*models.Favorite{},
		epoch:     time.Now().UTC().Truncate(time.Second),
	}}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return memoryUsers{m.s}
}

func (m *InMemoryRepositoryManager) Recipes(dbx.DBTX) recipes.Repository {
	return memoryRecipes{m.s}
}

func (m *InMemoryRepositoryManager) Favorites(dbx.DBTX) favorites.Repository {
	return memoryFavorites{m.s}
}

type memoryStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	recipes   map[string]*models.Recipe
	favorites map[string]*models.Favorite
	epoch     time.Time
	tick      int64
}

// now returns strictly increasing timestamps so ordering by time is stable.
func (s *memoryStore) now() time.Time {
	s.tick++
	return s.epoch.Add(time.Duration(s.tick) * time.Millisecond)
}

func (s *memoryStore) recipeView(r *models.Recipe) *models.Recipe {
	cp := *r
	cp.Ingredients = append([]string(nil), r.Ingredients...)
	if u, ok := s.users[r.PostedBy]; ok {
		cp.PostedByName = u.Name
	}
	return &cp
}

type memoryUsers struct{ s *memoryStore }

func (r memoryUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("%w: email %s is already registered", common.ErrConflict, user.Email)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.s.now()
	cp := *user
	r.s.users[user.ID] = &cp
	return user, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type memoryRecipes struct{ s *memoryStore }

func (r memoryRecipes) Create(_ context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[recipe.PostedBy]; !ok {
		return nil, fmt.Errorf("%w: owner %s", common.ErrNotFound, recipe.PostedBy)
	}
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}
	ts := r.s.now()
	recipe.PostedAt, recipe.CreatedAt, recipe.UpdatedAt = ts, ts, ts
	cp := *recipe
	cp.Ingredients = append([]string(nil), recipe.Ingredients...)
	r.s.recipes[recipe.ID] = &cp
	return recipe, nil
}

func (r memoryRecipes) GetByID(_ context.Context, id string) (*models.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.recipes[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.s.recipeView(rec), nil
}

func (r memoryRecipes) LockForDelete(ctx context.Context, id string) (*models.Recipe, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.Recipe{ID: rec.ID, PostedBy: rec.PostedBy, Thumbnail: rec.Thumbnail}, nil
}

func (r memoryRecipes) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.recipes[id]; !ok {
		return common.ErrNotFound
	}
	for _, f := range r.s.favorites {
		if f.RecipeID == id {
			return fmt.Errorf("%w: recipe %s is still referenced", common.ErrConflict, id)
		}
	}
	delete(r.s.recipes, id)
	return nil
}

func (r memoryRecipes) List(_ context.Context, f models.RecipeFilter) ([]*models.Recipe, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(f.Search)
	var matched []*models.Recipe
	for _, rec := range r.s.recipes {
		switch {
		case f.PostedBy != "":
			if rec.PostedBy != f.PostedBy {
				continue
			}
		case search != "":
			if !strings.Contains(strings.ToLower(rec.Name), search) {
				continue
			}
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PostedAt.Equal(matched[j].PostedAt) {
			return matched[i].PostedAt.After(matched[j].PostedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	page := make([]*models.Recipe, 0, f.Limit)
	for i := f.Offset(); i < len(matched) && len(page) < f.Limit; i++ {
		page = append(page, r.s.recipeView(matched[i]))
	}
	return page, len(matched), nil
}

type memoryFavorites struct{ s *memoryStore }

func (r memoryFavorites) Add(_ context.Context, userID, recipeID string) (*models.Favorite, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.recipes[recipeID]; !ok {
		return nil, fmt.Errorf("%w: recipe %s", common.ErrNotFound, recipeID)
	}
	for _, f := range r.s.favorites {
		if f.UserID == userID && f.RecipeID == recipeID {
			return nil, fmt.Errorf("%w: recipe is already in favorites", common.ErrConflict)
		}
	}
	fav := &models.Favorite{ID: uuid.NewString(), UserID: userID, RecipeID: recipeID, CreatedAt: r.s.now()}
	cp := *fav
	r.s.favorites[fav.ID] = &cp
	return fav, nil
}

func (r memoryFavorites) Remove(_ context.Context, userID, recipeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, f := range r.s.favorites {
		if f.UserID == userID && f.RecipeID == recipeID {
			delete(r.s.favorites, id)
			return nil
		}
	}
	return fmt.Errorf("%w: favorite", common.ErrNotFound)
}

func (r memoryFavorites) ListRecipes(_ context.Context, userID string) ([]*models.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var favs []*models.Favorite
	for _, f := range r.s.favorites {
		if f.UserID == userID {
			favs = append(favs, f)
		}
	}
	sort.Slice(favs, func(i, j int) bool { return favs[i].CreatedAt.After(favs[j].CreatedAt) })

	result := []*models.Recipe{}
	for _, f := range favs {
		if rec, ok := r.s.recipes[f.RecipeID]; ok {
			result = append(result, r.s.recipeView(rec))
		}
	}
	return result, nil
}

func (r memoryFavorites) RemoveAllForRecipe(_ context.Context, recipeID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, f := range r.s.favorites {
		if f.RecipeID == recipeID {
			delete(r.s.favorites, id)
			n++
		}
	}
	return n, nil
}
