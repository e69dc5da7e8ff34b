package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/client/config"
	"github.com/dmitrijs2005/recipebox/internal/client/models"
	"github.com/dmitrijs2005/recipebox/internal/filex"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// MaxThumbnailSize matches the server's default upload limit.
	MaxThumbnailSize = 5 << 20
	maxResponseBody  = 10 << 20
)

type HTTPClient struct {
	baseURL *url.URL
	http    *retryablehttp.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(cfg *config.Config) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(cfg.ServerURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", cfg.ServerURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	rc.CheckRetry = retryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient.Timeout = cfg.RequestTimeout
	rc.HTTPClient.Jar = jar

	return &HTTPClient{baseURL: base, http: rc}, nil
}

// retryPolicy retries connection failures and gateway errors only. A 500 is
// the server's answer and is not repeated, so a create is never replayed
// after it may have been applied.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *HTTPClient) call(ctx context.Context, method, path string, query url.Values, body []byte, contentType string, out any) error {
	var raw any
	if body != nil {
		raw = body
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.endpoint(path, query), raw)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) callJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.call(ctx, method, path, nil, body, "application/json", out)
}

func decodeError(status int, data []byte) error {
	var body struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	_ = json.Unmarshal(data, &body)
	if body.Message == "" {
		body.Message = strings.ToLower(http.StatusText(status))
	}
	return &APIError{Status: status, Message: body.Message, Fields: body.Errors}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil, "", nil)
}

type userResponse struct {
	User *models.User `json:"user"`
}

func (c *HTTPClient) Register(ctx context.Context, name, email string, password []byte) (*models.User, error) {
	in := map[string]string{"name": name, "email": email, "password": string(password)}
	var out userResponse
	if err := c.callJSON(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	in := map[string]string{"email": email, "password": string(password)}
	var out userResponse
	if err := c.callJSON(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, "", nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out userResponse
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *HTTPClient) ListRecipes(ctx context.Context, search string, page, limit int) (*models.RecipePage, error) {
	q := pageQuery(page, limit)
	if search != "" {
		q.Set("search", search)
	}
	var out models.RecipePage
	if err := c.call(ctx, http.MethodGet, "/recipes", q, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListMyRecipes(ctx context.Context, page, limit int) (*models.RecipePage, error) {
	var out models.RecipePage
	if err := c.call(ctx, http.MethodGet, "/recipes/mine", pageQuery(page, limit), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type recipeResponse struct {
	Recipe *models.Recipe `json:"recipe"`
}

func (c *HTTPClient) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	var out recipeResponse
	if err := c.call(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Recipe, nil
}

// CreateRecipe posts a multipart form: ingredients travel as one JSON array
// and the optional thumbnail is read from disk.
func (c *HTTPClient) CreateRecipe(ctx context.Context, in models.NewRecipe) (*models.Recipe, error) {
	body, contentType, err := recipeForm(in)
	if err != nil {
		return nil, err
	}
	var out recipeResponse
	if err := c.call(ctx, http.MethodPost, "/recipes", nil, body, contentType, &out); err != nil {
		return nil, err
	}
	return out.Recipe, nil
}

func recipeForm(in models.NewRecipe) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	ingredients, err := json.Marshal(in.Ingredients)
	if err != nil {
		return nil, "", err
	}
	for _, f := range [][2]string{
		{"name", in.Name},
		{"instructions", in.Instructions},
		{"ingredients", string(ingredients)},
	} {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if in.ThumbnailPath != "" {
		name, data, err := filex.ReadLimited(in.ThumbnailPath, MaxThumbnailSize)
		if err != nil {
			return nil, "", fmt.Errorf("thumbnail: %w", err)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="thumbnail"; filename=%q`, name))
		h.Set("Content-Type", http.DetectContentType(data))
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func (c *HTTPClient) DeleteRecipe(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/recipes/"+url.PathEscape(id), nil, nil, "", nil)
}

func (c *HTTPClient) AddFavorite(ctx context.Context, recipeID string) (string, error) {
	var out struct {
		FavoriteID string `json:"favoriteId"`
	}
	if err := c.call(ctx, http.MethodPost, "/favorites/"+url.PathEscape(recipeID), nil, nil, "", &out); err != nil {
		return "", err
	}
	return out.FavoriteID, nil
}

func (c *HTTPClient) RemoveFavorite(ctx context.Context, recipeID string) error {
	return c.call(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(recipeID), nil, nil, "", nil)
}

func (c *HTTPClient) ListFavorites(ctx context.Context) ([]models.Recipe, error) {
	var out struct {
		Recipes []models.Recipe `json:"recipes"`
	}
	if err := c.call(ctx, http.MethodGet, "/favorites", nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Recipes, nil
}
