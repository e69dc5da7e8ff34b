// Package rest exposes the services over HTTP: a chi router, the session
// cookie guard, request timing and the single place where service errors
// become HTTP statuses.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/assets"
	"github.com/dmitrijs2005/recipebox/internal/server/auth"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type SessionManager interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, in services.LoginInput) (*services.Session, error)
	Verify(token string) (auth.Identity, error)
	GetMe(ctx context.Context, userID string) (*models.UserSummary, error)
	TokenValidity() time.Duration
}

type RecipeStore interface {
	Create(ctx context.Context, ownerID string, in services.CreateRecipeInput, thumbnail *assets.Object) (*models.RecipeSummary, error)
	FindByID(ctx context.Context, id string) (*models.Recipe, error)
	List(ctx context.Context, search string, page, limit int) (*models.RecipePage, error)
	ListByOwner(ctx context.Context, ownerID string, page, limit int) (*models.RecipePage, error)
	Delete(ctx context.Context, id, requesterID string) error
}

type FavoriteRegistrar interface {
	Add(ctx context.Context, userID, recipeID string) (string, error)
	Remove(ctx context.Context, userID, recipeID string) error
	List(ctx context.Context, userID string) ([]*models.Recipe, error)
}

type Server struct {
	address          string
	sessions         SessionManager
	recipes          RecipeStore
	favorites        FavoriteRegistrar
	logger           logging.Logger
	cookieSecure     bool
	allowedOrigins   []string
	maxThumbnailSize int64
}

func NewServer(cfg *config.Config, l logging.Logger, s SessionManager, r RecipeStore, f FavoriteRegistrar) *Server {
	return &Server{
		address:          cfg.EndpointAddrHTTP,
		sessions:         s,
		recipes:          r,
		favorites:        f,
		logger:           l.With("module", "http_server"),
		cookieSecure:     cfg.CookieSecure,
		allowedOrigins:   cfg.AllowedOrigins,
		maxThumbnailSize: cfg.MaxThumbnailSize,
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestTimer)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.health)

	r.Post("/auth/register", s.register)
	r.Post("/auth/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.accessGuard)

		r.Get("/auth/me", s.me)
		r.Post("/auth/logout", s.logout)

		r.Route("/recipes", func(r chi.Router) {
			r.Post("/", s.createRecipe)
			r.Get("/", s.listRecipes)
			r.Get("/mine", s.listMyRecipes)
			r.Get("/{id}", s.getRecipe)
			r.Delete("/{id}", s.deleteRecipe)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", s.listFavorites)
			r.Post("/{recipeId}", s.addFavorite)
			r.Delete("/{recipeId}", s.removeFavorite)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, envelope{"success": true, "status": "ok"})
}
