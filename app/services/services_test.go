package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

type fixture struct {
	store  *repositories.Store
	svc    *services.Services
	events *event.Dispatcher
	disk   *storage.LocalDisk
}

func newFixture(t *testing.T, gw payment.Gateway) *fixture {
	t.Helper()
	f := &fixture{
		store:  repositories.NewMemoryStore(),
		events: event.New(),
		disk:   storage.NewLocalDisk(t.TempDir(), ""),
	}
	f.svc = services.New(services.Deps{
		Store:   f.store,
		Payment: gw,
		Disk:    f.disk,
		Events:  f.events,
	})
	return f
}

// register creates an account through the service and returns its principal.
func (f *fixture) register(t *testing.T, name, email string) auth.Principal {
	t.Helper()
	u, err := f.svc.Auth.Register(context.Background(), services.RegisterInput{
		Name: name, Email: email, Password: "secret",
	})
	require.NoError(t, err)
	return u.Principal()
}

func (f *fixture) admin(t *testing.T) auth.Principal {
	t.Helper()
	u := &models.User{Name: "Admin", Email: "admin@example.com", Password: "x", Role: auth.RoleAdmin}
	require.NoError(t, f.store.Users.Create(context.Background(), u))
	return u.Principal()
}

func (f *fixture) product(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Name: name, Price: price, Description: "d", Image: "/uploads/" + name + ".png",
		Category: "office", Company: "ikea", Colors: []string{"#222"}, Inventory: 15,
	}
	require.NoError(t, f.store.Products.Create(context.Background(), p))
	return p
}

func assertKind(t *testing.T, want apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, apperr.KindOf(err), "err: %v", err)
}

type failingGateway struct{}

func (failingGateway) CreateIntent(context.Context, payment.Intent) (payment.IntentResult, error) {
	return payment.IntentResult{}, errors.New("gateway down")
}

type recordingRevoker struct{ revoked []string }

func (r *recordingRevoker) Revoke(_ context.Context, c *auth.Claims) error {
	r.revoked = append(r.revoked, c.ID)
	return nil
}

func ptr[T any](v T) *T { return &v }
