// Package services holds the business rules of the storefront. Services take
// a principal and plain inputs, return models or *apperr.Error values, and
// never touch HTTP.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/bind"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Revoker invalidates a session before its natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, claims *auth.Claims) error
}

// Deps are the collaborators shared by the services.
type Deps struct {
	Store    *repositories.Store
	Payment  payment.Gateway
	Disk     storage.Disk
	Events   *event.Dispatcher
	Revoker  Revoker
	Currency string
}

type Services struct {
	Auth     *AuthService
	Users    *UserService
	Products *ProductService
	Reviews  *ReviewService
	Orders   *OrderService
}

func New(d Deps) *Services {
	if d.Currency == "" {
		d.Currency = "usd"
	}
	if d.Payment == nil {
		d.Payment = payment.StubGateway{}
	}
	return &Services{
		Auth:     &AuthService{users: d.Store.Users, revoker: d.Revoker, events: d.Events},
		Users:    &UserService{users: d.Store.Users},
		Products: &ProductService{products: d.Store.Products, reviews: d.Store.Reviews, disk: d.Disk, events: d.Events},
		Reviews:  &ReviewService{store: d.Store, events: d.Events},
		Orders:   &OrderService{store: d.Store, gateway: d.Payment, currency: d.Currency, events: d.Events},
	}
}

// validate runs the struct tags on in and converts failures.
func validate(in interface{}) error {
	if errs := bind.Struct(in); len(errs) > 0 {
		return apperr.Invalid(errs)
	}
	return nil
}

// notFound maps a repository miss to a NotFound error naming what was
// looked up. Any other error is wrapped as internal.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFoundf(format, args...)
	}
	return internal(err, format, args...)
}

func internal(err error, format string, args ...any) error {
	return apperr.Wrap(apperr.Internal, err, "%s", fmt.Sprintf(format, args...))
}

// principalID is the principal's user id as an ObjectID.
func principalID(p auth.Principal) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorizedf("Authentication Invalid")
	}
	return oid, nil
}

func roundCents(v float64) float64 { return math.Round(v*100) / 100 }

func roundTenth(v float64) float64 { return math.Round(v*10) / 10 }
