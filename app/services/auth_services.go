package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// RegisterInput has no role field: every registration creates a plain user.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	users   repositories.Users
	revoker Revoker
	events  *event.Dispatcher
}

// Register creates a user with role "user". The unique email index decides
// concurrent registrations; the pre-check only gives a faster answer.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
		return nil, apperr.Conflictf("Email is already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, internal(err, "look up email")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, internal(err, "hash password")
	}
	u := &models.User{Name: in.Name, Email: in.Email, Password: hash, Role: auth.RoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			metrics.AuthAttempts.WithLabelValues("register", "conflict").Inc()
			return nil, apperr.Conflictf("Email is already registered")
		}
		return nil, internal(err, "Unable to store user data")
	}

	metrics.AuthAttempts.WithLabelValues("register", "ok").Inc()
	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID.Hex())
	s.events.Fire(ctx, event.UserRegistered, u)
	return u, nil
}

// Login checks the credentials and returns the user to issue a session for.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.AuthAttempts.WithLabelValues("login", "unknown_email").Inc()
		}
		return nil, notFound(err, "User not found, please double-check the email for accuracy")
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		metrics.AuthAttempts.WithLabelValues("login", "bad_password").Inc()
		return nil, apperr.Unauthorizedf("Password incorrect. Please double-check the password")
	}
	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	return u, nil
}

// Logout revokes the presented session. Clearing the cookie is the
// caller's job.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoker == nil || claims == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims); err != nil {
		return internal(err, "revoke session")
	}
	return nil
}
