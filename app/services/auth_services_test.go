package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	var fired int
	f.events.Listen(event.UserRegistered, func(context.Context, interface{}) { fired++ })

	u, err := f.svc.Auth.Register(ctx, services.RegisterInput{Name: "Alice", Email: "a@x.io", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.NotEqual(t, "secret", u.Password)
	assert.True(t, auth.CheckPassword(u.Password, "secret"))
	assert.Equal(t, 1, fired)

	_, err = f.svc.Auth.Register(ctx, services.RegisterInput{Name: "Alice", Email: "a@x.io", Password: "other1"})
	assertKind(t, apperr.Conflict, err)

	_, err = f.svc.Auth.Register(ctx, services.RegisterInput{Name: "Al", Email: "not-an-email", Password: "123"})
	assertKind(t, apperr.Validation, err)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields, "name")
	assert.Contains(t, ae.Fields, "email")
	assert.Contains(t, ae.Fields, "password")
}

func TestRegisterConcurrentDuplicates(t *testing.T) {
	f := newFixture(t, nil)

	var ok, conflict int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Auth.Register(context.Background(), services.RegisterInput{
				Name: "Racer", Email: "race@x.io", Password: "secret",
			})
			switch apperr.KindOf(err) {
			case apperr.Conflict:
				atomic.AddInt32(&conflict, 1)
			default:
				if err == nil {
					atomic.AddInt32(&ok, 1)
				}
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok)
	assert.EqualValues(t, 7, conflict)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "Alice", "a@x.io")

	_, err := f.svc.Auth.Login(ctx, services.LoginInput{Email: "nobody@x.io", Password: "secret"})
	assertKind(t, apperr.NotFound, err)

	_, err = f.svc.Auth.Login(ctx, services.LoginInput{Email: "a@x.io", Password: "wrong"})
	assertKind(t, apperr.Unauthorized, err)

	u, err := f.svc.Auth.Login(ctx, services.LoginInput{Email: "a@x.io", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
}

func TestLogoutRevokesSession(t *testing.T) {
	rev := &recordingRevoker{}
	svc := services.New(services.Deps{Store: repositories.NewMemoryStore(), Revoker: rev})

	claims := &auth.Claims{}
	claims.ID = "jti-1"
	require.NoError(t, svc.Auth.Logout(context.Background(), claims))
	assert.Equal(t, []string{"jti-1"}, rev.revoked)

	require.NoError(t, svc.Auth.Logout(context.Background(), nil))
}

func TestGetUserPermission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "Alice", "a@x.io")
	bob := f.register(t, "Bob", "b@x.io")
	admin := f.admin(t)

	_, err := f.svc.Users.Get(ctx, bob, alice.UserID)
	assertKind(t, apperr.PermissionDenied, err)

	u, err := f.svc.Users.Get(ctx, alice, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	u, err = f.svc.Users.Get(ctx, admin, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", u.Email)

	_, err = f.svc.Users.Get(ctx, admin, "64b7f0c2a1b2c3d4e5f60718")
	assertKind(t, apperr.NotFound, err)
	_, err = f.svc.Users.Get(ctx, admin, "not-an-id")
	assertKind(t, apperr.NotFound, err)

	list, err := f.svc.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "Alice", "a@x.io")
	f.register(t, "Bob", "b@x.io")

	u, err := f.svc.Users.UpdateProfile(ctx, alice, services.UpdateProfileInput{Name: "Alicia", Email: "alicia@x.io"})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Name)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.Equal(t, "Alicia", u.Principal().Name)

	_, err = f.svc.Users.UpdateProfile(ctx, alice, services.UpdateProfileInput{Name: "Alicia", Email: "b@x.io"})
	assertKind(t, apperr.Conflict, err)

	_, err = f.svc.Users.UpdateProfile(ctx, alice, services.UpdateProfileInput{Name: "Alicia"})
	assertKind(t, apperr.Validation, err)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "Alice", "a@x.io")

	err := f.svc.Users.UpdatePassword(ctx, alice, services.UpdatePasswordInput{OldPassword: "wrong", NewPassword: "newpass"})
	assertKind(t, apperr.Unauthorized, err)

	err = f.svc.Users.UpdatePassword(ctx, alice, services.UpdatePasswordInput{OldPassword: "secret", NewPassword: "abc"})
	assertKind(t, apperr.Validation, err)

	require.NoError(t, f.svc.Users.UpdatePassword(ctx, alice, services.UpdatePasswordInput{OldPassword: "secret", NewPassword: "newpass"}))

	_, err = f.svc.Auth.Login(ctx, services.LoginInput{Email: "a@x.io", Password: "secret"})
	assertKind(t, apperr.Unauthorized, err)
	_, err = f.svc.Auth.Login(ctx, services.LoginInput{Email: "a@x.io", Password: "newpass"})
	require.NoError(t, err)
}

func TestPromote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.register(t, "Alice", "a@x.io")

	u, err := f.svc.Users.Promote(ctx, "a@x.io", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, u.Role)

	_, err = f.svc.Users.Promote(ctx, "a@x.io", auth.Role("root"))
	assertKind(t, apperr.Validation, err)
	_, err = f.svc.Users.Promote(ctx, "ghost@x.io", auth.RoleAdmin)
	assertKind(t, apperr.NotFound, err)
}
