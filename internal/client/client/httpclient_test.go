package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/client/config"
	"github.com/dmitrijs2005/recipebox/internal/client/models"
	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(&config.Config{ServerURL: srv.URL + "/", RequestTimeout: 2 * time.Second, RetryMax: 2})
	require.NoError(t, err)
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient(&config.Config{ServerURL: "127.0.0.1:8080"})
	require.Error(t, err)
}

func TestHTTPClient_SessionCookieIsReplayed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "invalid email or password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: common.SessionCookieName, Value: "tok-1", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": map[string]string{"id": "u1", "name": "Alice", "email": in["email"]}})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(common.SessionCookieName)
		if err != nil || c.Value != "tok-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": map[string]string{"id": "u1", "name": "Alice"}})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = c.Login(ctx, "alice@x.com", []byte("wrong"))
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Equal(t, "invalid email or password", err.Error())

	u, err := c.Login(ctx, "alice@x.com", []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: "u1", Name: "Alice", Email: "alice@x.com"}, u)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)
}

func TestHTTPClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, common.ErrValidation},
		{http.StatusForbidden, common.ErrForbidden},
		{http.StatusNotFound, common.ErrNotFound},
		{http.StatusConflict, common.ErrConflict},
		{http.StatusInternalServerError, common.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]any{
					"success": false,
					"message": "nope",
					"errors":  []FieldError{{Field: "name", Message: "name is required"}},
				})
			}))
			err := c.DeleteRecipe(context.Background(), "r1")
			require.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "nope", apiErr.Message)
			assert.Len(t, apiErr.Fields, 1)
		})
	}
}

func TestHTTPClient_RetriesGatewayErrorsOnly(t *testing.T) {
	t.Run("503 then success", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}))
		require.NoError(t, c.Ping(context.Background()))
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("gives up after RetryMax", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		err := c.Ping(context.Background())
		require.ErrorIs(t, err, ErrUnavailable)
		assert.Equal(t, "bad gateway", err.Error())
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("500 is not retried", func(t *testing.T) {
		var calls atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "internal server error"})
		}))
		_, err := c.CreateRecipe(context.Background(), models.NewRecipe{Name: "Soup"})
		require.ErrorIs(t, err, common.ErrInternal)
		assert.EqualValues(t, 1, calls.Load())
	})
}

func TestHTTPClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(&config.Config{ServerURL: url, RequestTimeout: time.Second})
	require.NoError(t, err)

	err = c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_ListQueries(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"recipes": []map[string]string{{"id": "r3", "name": "Pie", "postedBy": "u1"}},
			"total":   21, "page": 3, "limit": 10,
		})
	}))
	ctx := context.Background()

	page, err := c.ListRecipes(ctx, "apple pie", 3, 10)
	require.NoError(t, err)
	assert.Equal(t, "/recipes", gotPath)
	assert.Equal(t, "limit=10&page=3&search=apple+pie", gotQuery)
	assert.Equal(t, 21, page.Total)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, "Pie", page.Recipes[0].Name)

	_, err = c.ListMyRecipes(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "/recipes/mine", gotPath)
	assert.Empty(t, gotQuery)
}

func TestHTTPClient_CreateRecipeMultipart(t *testing.T) {
	thumb := filepath.Join(t.TempDir(), "pie.png")
	png := []byte("\x89PNG\r\n\x1a\n0000")
	require.NoError(t, os.WriteFile(thumb, png, 0o600))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Pie", r.FormValue("name"))
		assert.Equal(t, "Bake.", r.FormValue("instructions"))
		assert.Equal(t, `["flour","apples"]`, r.FormValue("ingredients"))

		f, h, err := r.FormFile("thumbnail")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "pie.png", h.Filename)
		assert.Equal(t, "image/png", h.Header.Get("Content-Type"))
		assert.Equal(t, png, data)

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"recipe":  map[string]string{"id": "r1", "name": "Pie", "postedBy": "u1"},
		})
	}))

	r, err := c.CreateRecipe(context.Background(), models.NewRecipe{
		Name:          "Pie",
		Instructions:  "Bake.",
		Ingredients:   []string{"flour", "apples"},
		ThumbnailPath: thumb,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
}

func TestHTTPClient_CreateRecipeMissingThumbnail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not be sent")
	}))
	_, err := c.CreateRecipe(context.Background(), models.NewRecipe{Name: "Pie", ThumbnailPath: "/does/not/exist.png"})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTPClient_Favorites(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "favoriteId": "f-" + r.PathValue("id")})
	})
	mux.HandleFunc("DELETE /favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("GET /favorites", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "recipes": []map[string]string{{"id": "r1", "name": "Pie"}}})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	id, err := c.AddFavorite(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "f-r1", id)

	favs, err := c.ListFavorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)

	require.NoError(t, c.RemoveFavorite(ctx, "r1"))
}
