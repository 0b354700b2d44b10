package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/auth"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
)

// UserService handles credential verification, registration and token
// issuance, plus the profile and roster queries.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	jwtSecret   []byte
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      auth.BcryptHasher{Cost: cfg.BcryptCost},
		jwtSecret:   []byte(cfg.SecretKey),
		logger:      logger.With("module", "user_service"),
	}
}

// Register creates the user and logs it in, returning the issued token. The
// join and last-login timestamps both get the creation time. Uniqueness is
// left to the repository so two concurrent registrations cannot both win.
func (s *UserService) Register(ctx context.Context, username, password, firstName, lastName, phone string) (string, *models.User, error) {

	if username == "" || password == "" {
		return "", nil, common.ErrorInvalidInput
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		JoinAt:       now,
		LastLoginAt:  now,
	}

	repo := s.repomanager.Users(s.db)

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateUsername) {
			return "", nil, common.ErrorDuplicateUsername
		}
		return "", nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := auth.GenerateToken(user.Username, s.jwtSecret)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, user, nil
}

// Login verifies the credentials and issues a token. An unknown username is
// reported as ErrorUnauthenticated, indistinguishable from a wrong password,
// so callers cannot enumerate registered names.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "login attempt for unknown user", "username", username)
			return "", common.ErrorUnauthenticated
		}
		return "", common.ErrorInternal
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", common.ErrorUnauthenticated
	}

	// best effort: a failed timestamp update must not fail the login
	if err := repo.UpdateLastLogin(ctx, username, time.Now()); err != nil {
		s.logger.Warn(ctx, "last login update failed", "username", username, "error", err.Error())
	}

	token, err := auth.GenerateToken(user.Username, s.jwtSecret)
	if err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

// Get returns the full profile for a username.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return user, nil
}

// List returns the public roster.
func (s *UserService) List(ctx context.Context) ([]*models.UserSummary, error) {

	repo := s.repomanager.Users(s.db)

	result, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	return result, nil
}
