package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
)

// UpdateProfileInput is the whole set of self-editable fields. Role is not
// among them.
type UpdateProfileInput struct {
	Name  string `json:"name" validate:"required,min=3,max=50"`
	Email string `json:"email" validate:"required,email"`
}

type UpdatePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=5"`
}

type UserService struct {
	users repositories.Users
}

// List returns every account with role "user".
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListByRole(ctx, auth.RoleUser)
	if err != nil {
		return nil, internal(err, "list users")
	}
	return users, nil
}

// Get returns one user to its owner or an admin.
func (s *UserService) Get(ctx context.Context, p auth.Principal, id string) (*models.User, error) {
	if err := rbac.CheckPermission(p, id); err != nil {
		return nil, err
	}
	oid, err := repositories.ParseID(id)
	if err != nil {
		return nil, apperr.NotFoundf("No user with id: %s", id)
	}
	u, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound(err, "No user with id: %s", id)
	}
	return u, nil
}

// UpdateProfile changes name and email. The caller reissues the session
// from the returned user.
func (s *UserService) UpdateProfile(ctx context.Context, p auth.Principal, in UpdateProfileInput) (*models.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	u, err := s.current(ctx, p)
	if err != nil {
		return nil, err
	}
	u.Name, u.Email = in.Name, in.Email
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflictf("Email is already registered")
		}
		return nil, notFound(err, "No user with id: %s", p.UserID)
	}
	return u, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, p auth.Principal, in UpdatePasswordInput) error {
	if err := validate(in); err != nil {
		return err
	}
	u, err := s.current(ctx, p)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.Password, in.OldPassword) {
		return apperr.Unauthorizedf("Password incorrect. Please double-check the old password")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return internal(err, "hash password")
	}
	u.Password = hash
	if err := s.users.Update(ctx, u); err != nil {
		return notFound(err, "No user with id: %s", p.UserID)
	}
	return nil
}

// Promote sets a user's role. Only the command line calls this; no HTTP
// route can change a role.
func (s *UserService) Promote(ctx context.Context, email string, role auth.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperr.Invalid(map[string]string{"role": "must be one of: admin, user"})
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "No user with email: %s", email)
	}
	u.Role = role
	if err := s.users.Update(ctx, u); err != nil {
		return nil, internal(err, "update role")
	}
	return u, nil
}

func (s *UserService) current(ctx context.Context, p auth.Principal) (*models.User, error) {
	oid, err := principalID(p)
	if err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound(err, "No user with id: %s", p.UserID)
	}
	return u, nil
}
