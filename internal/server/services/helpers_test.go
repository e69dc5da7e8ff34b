package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/recipebox/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
		DefaultPageLimit:      10,
		MaxPageLimit:          100,
	}
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeAssets struct {
	mu        sync.Mutex
	stored    map[string][]byte
	deleted   []string
	storeErr  error
	deleteErr error
}

func newFakeAssets() *fakeAssets { return &fakeAssets{stored: map[string][]byte{}} }

func (f *fakeAssets) Store(ctx context.Context, obj assets.Object) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return "", f.storeErr
	}
	b, _ := io.ReadAll(obj.Body)
	ref := "thumbnails/" + obj.Filename
	f.stored[ref] = b
	return ref, nil
}

func (f *fakeAssets) Delete(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.stored, ref)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*models.Recipe
	gets    int
	hits    int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]*models.Recipe{}} }

func (c *fakeCache) Get(_ context.Context, id string) (*models.Recipe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	r, ok := c.entries[id]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *fakeCache) Set(_ context.Context, r *models.Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[r.ID] = r
}

func (c *fakeCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// warnRecorder keeps Warn messages; everything else is dropped.
type warnRecorder struct {
	logging.Nop
	mu    sync.Mutex
	warns []string
}

func (w *warnRecorder) Warn(_ context.Context, msg string, _ ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warns = append(w.warns, msg)
}

func (w *warnRecorder) With(...any) logging.Logger { return w }

// brokenUsers fails every call with a storage error.
type brokenUsers struct{ usersrepo.Repository }

var errStorage = errors.New("connection reset")

func (brokenUsers) GetByEmail(context.Context, string) (*models.User, error) { return nil, errStorage }
func (brokenUsers) GetByID(context.Context, string) (*models.User, error)    { return nil, errStorage }

type brokenUsersManager struct {
	repomanager.RepositoryManager
}

func (brokenUsersManager) Users(dbx.DBTX) usersrepo.Repository { return brokenUsers{} }

type failingCascade struct{}

func (failingCascade) RemoveAllForRecipe(context.Context, dbx.DBTX, string) (int64, error) {
	return 0, errStorage
}

// seedUser registers a user straight through the repository.
func seedUser(t *testing.T, m repomanager.RepositoryManager, email, name string) *models.User {
	t.Helper()
	u, err := m.Users(nil).Create(context.Background(), &models.User{Email: email, Name: name, PasswordHash: "x"})
	require.NoError(t, err)
	return u
}
