package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/auth"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// Session is the result of a successful registration or login.
type Session struct {
	User  *models.User
	Token string
}

// AuthService wires the authenticator and the token manager into the API's
// register/login flow.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
}

// NewAuthService creates an AuthService.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
	}
}

// Register creates a new account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*Session, error) {
	if email == "" || name == "" {
		return nil, apperr.New(apperr.Invalid, "email and name are required")
	}

	user, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, apperr.New(apperr.Conflict, "email already registered")
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, apperr.New(apperr.Invalid, "%s", err)
		default:
			return nil, err
		}
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return &Session{User: user, Token: token}, nil
}

// Login authenticates the credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperr.New(apperr.Invalid, "email and password are required")
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("login failed", "email", email)
		return nil, apperr.New(apperr.Unauthorized, "invalid email or password")
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// CurrentUser returns the account behind an authenticated user id.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return user, err
}
