package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/colocash/colocash/internal/auth"
	"github.com/colocash/colocash/internal/errs"
)

// AuthService handles account registration and login.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// AuthResult is the outcome of a successful registration or login.
type AuthResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// Register creates a new user account and returns a session token.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*AuthResult, error) {
	if email == "" || displayName == "" {
		return nil, errs.Invalid("email and display name required")
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, errs.Wrap(errs.KindInvalid, err, "weak password")
		case errors.Is(err, auth.ErrEmailExists):
			return nil, errs.Wrap(errs.KindConflict, err, "email taken")
		default:
			return nil, errs.Internal(err, "registration failed")
		}
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, errs.Internal(err, "failed to issue token")
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	return &AuthResult{Token: token, User: *newUserView(user)}, nil
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnauthenticated, err, "login failed")
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, errs.Internal(err, "failed to issue token")
	}

	slog.Info("User logged in", "user_id", user.ID)
	return &AuthResult{Token: token, User: *newUserView(user)}, nil
}
