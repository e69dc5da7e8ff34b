// Package services contains server-side business logic: session handling,
// the recipe lifecycle and favorites.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/server/auth"
	"github.com/dmitrijs2005/recipebox/internal/server/config"
	"github.com/dmitrijs2005/recipebox/internal/server/models"
	"github.com/dmitrijs2005/recipebox/internal/server/repositories/repomanager"
)

// Session is the result of a successful register or login.
type Session struct {
	User  models.UserSummary
	Token string
}

var errBadCredentials = fmt.Errorf("%w: invalid email or password", common.ErrUnauthenticated)

// UserService registers users, checks credentials and issues and verifies
// session tokens.
type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
	logger        logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		logger:        logger,
	}
}

// Register creates a user and opens a session for it. The password is hashed
// here, before anything reaches storage.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrInternal, err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("%w: email is already registered", common.ErrConflict)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.newSession(user)
}

// Login checks credentials. An unknown email and a wrong password produce
// the same error.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			auth.CheckDummyPassword(in.Password)
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, errBadCredentials
	}
	return s.newSession(user)
}

// Verify validates a session token and returns the identity it carries.
// Every failure matches common.ErrUnauthenticated.
func (s *UserService) Verify(token string) (auth.Identity, error) {
	if token == "" {
		return auth.Identity{}, fmt.Errorf("%w: missing session token", common.ErrUnauthenticated)
	}
	id, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}
	return id, nil
}

// GetMe returns the caller's profile. A user that no longer exists is
// treated as an unauthenticated caller.
func (s *UserService) GetMe(ctx context.Context, userID string) (*models.UserSummary, error) {
	if !isID(userID) {
		return nil, fmt.Errorf("%w: unknown user", common.ErrUnauthenticated)
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", common.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	summary := user.Summary()
	return &summary, nil
}

// TokenValidity is how long issued tokens (and the cookie carrying them) live.
func (s *UserService) TokenValidity() time.Duration { return s.tokenValidity }

func (s *UserService) newSession(user *models.User) (*Session, error) {
	token, err := auth.GenerateToken(auth.Identity{ID: user.ID, Email: user.Email}, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", common.ErrInternal, err)
	}
	return &Session{User: user.Summary(), Token: token}, nil
}
