package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/cache"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipebox/internal/server/services"
	"github.com/stretchr/testify/require"
)

type memAssets struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memAssets) Store(_ context.Context, obj assets.Object) (string, error) {
	b, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := "thumbnails/" + obj.Filename
	m.objects[ref] = b
	return ref, nil
}

func (m *memAssets) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
		CookieSecure:          false,
		AllowedOrigins:        []string{"http://localhost:5173"},
		MaxThumbnailSize:      5 << 20,
		DefaultPageLimit:      10,
		MaxPageLimit:          100,
	}
}

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	mock   sqlmock.Sqlmock
	assets *memAssets
}

func newHarness(t *testing.T, mutate ...func(*config.Config)) *harness {
	t.Helper()
	cfg := testConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := repomanager.NewInMemoryRepositoryManager()
	store := &memAssets{objects: map[string][]byte{}}
	users := services.NewUserService(db, repos, cfg, logging.Nop{})
	favs := services.NewFavoriteService(db, repos, logging.Nop{})
	recipes := services.NewRecipeService(db, repos, favs, store, cache.Nop{}, cfg, logging.Nop{})

	srv := httptest.NewServer(NewServer(cfg, logging.Nop{}, users, recipes, favs).Router())
	t.Cleanup(srv.Close)

	return &harness{t: t, srv: srv, mock: mock, assets: store}
}

// expectDelete primes the mock for one recipe delete transaction.
func (h *harness) expectDelete(commit bool) {
	h.mock.ExpectBegin()
	if commit {
		h.mock.ExpectCommit()
	} else {
		h.mock.ExpectRollback()
	}
}

// apiClient is one browser: its own cookie jar.
type apiClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func (h *harness) newClient() *apiClient {
	jar, err := cookiejar.New(nil)
	require.NoError(h.t, err)
	return &apiClient{t: h.t, base: h.srv.URL, http: &http.Client{Jar: jar}}
}

type apiResponse struct {
	Status     int                   `json:"-"`
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	User       *models.UserSummary   `json:"user"`
	Recipe     *models.Recipe        `json:"recipe"`
	Recipes    []models.Recipe       `json:"recipes"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	FavoriteID string                `json:"favoriteId"`
	Errors     []services.FieldError `json:"errors"`
}

func (c *apiClient) send(req *http.Request) apiResponse {
	c.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	out.Status = resp.StatusCode
	return out
}

func (c *apiClient) do(method, path string, body any) apiResponse {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

// multipartForm posts fields and an optional thumbnail to path.
func (c *apiClient) multipartForm(path string, fields map[string]string, filename string, file []byte) apiResponse {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("thumbnail", filename)
		require.NoError(c.t, err)
		_, err = fw.Write(file)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req)
}

func (c *apiClient) register(name, email, password string) apiResponse {
	c.t.Helper()
	return c.do(http.MethodPost, "/auth/register", map[string]string{"name": name, "email": email, "password": password})
}

func (c *apiClient) createRecipe(name string, ingredients []string) apiResponse {
	c.t.Helper()
	return c.do(http.MethodPost, "/recipes", map[string]any{
		"name": name, "instructions": "<p>cook it</p>", "ingredients": ingredients,
	})
}
