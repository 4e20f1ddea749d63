package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin creates the bootstrap admin from SEED_ADMIN_EMAIL and
// SEED_ADMIN_PASSWORD. Registration can never create an admin, so this and
// the user:promote command are the only ways to get one.
func SeedAdmin(ctx context.Context, store *repositories.Store) error {
	email := config.Get("SEED_ADMIN_EMAIL", "admin@storefront.test")
	password := config.Get("SEED_ADMIN_PASSWORD", "")
	if password == "" {
		logger.Warn("SEED_ADMIN_PASSWORD is empty; skipping admin seeder")
		return nil
	}

	if _, err := store.Users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	err = store.Users.Create(ctx, &models.User{Name: "Administrator", Email: email, Password: hash, Role: auth.RoleAdmin})
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil
	}
	return err
}
