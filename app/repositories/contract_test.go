package repositories_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

// runStoreContract exercises the behaviour both drivers must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) *repositories.Store) {
	t.Run("users", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		u := &models.User{Name: "Ann", Email: "ann@example.com", Password: "h", Role: auth.RoleUser}
		require.NoError(t, s.Users.Create(ctx, u))
		require.False(t, u.ID.IsZero())

		dup := &models.User{Name: "Ann2", Email: "ann@example.com", Password: "h", Role: auth.RoleUser}
		assert.ErrorIs(t, s.Users.Create(ctx, dup), repositories.ErrDuplicate)

		admin := &models.User{Name: "Root", Email: "root@example.com", Password: "h", Role: auth.RoleAdmin}
		require.NoError(t, s.Users.Create(ctx, admin))

		found, err := s.Users.FindByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, found.ID)

		_, err = s.Users.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		list, err := s.Users.ListByRole(ctx, auth.RoleUser)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Empty(t, list[0].Password)

		admin.Email = "ann@example.com"
		assert.ErrorIs(t, s.Users.Update(ctx, admin), repositories.ErrDuplicate)

		u.Name = "Annie"
		require.NoError(t, s.Users.Update(ctx, u))
		names, err := s.Users.Names(ctx, []primitive.ObjectID{u.ID, primitive.NewObjectID()})
		require.NoError(t, err)
		assert.Equal(t, map[primitive.ObjectID]string{u.ID: "Annie"}, names)
	})

	t.Run("concurrent registration has one winner", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = s.Users.Create(ctx, &models.User{Name: "Racer", Email: "race@example.com", Role: auth.RoleUser})
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, repositories.ErrDuplicate)
			}
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("reviews and aggregate", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		p := &models.Product{Name: "Chair", Price: 10, Colors: []string{"#222"}}
		require.NoError(t, s.Products.Create(ctx, p))

		var ids []primitive.ObjectID
		for _, rating := range []int{3, 4, 5} {
			rv := &models.Review{Rating: rating, Title: "t", Comment: "c", UserID: primitive.NewObjectID(), ProductID: p.ID}
			require.NoError(t, s.Reviews.Create(ctx, rv))
			ids = append(ids, rv.ID)
		}

		first, err := s.Reviews.FindByID(ctx, ids[0])
		require.NoError(t, err)
		again := &models.Review{Rating: 1, Title: "t", Comment: "c", UserID: first.UserID, ProductID: p.ID}
		assert.ErrorIs(t, s.Reviews.Create(ctx, again), repositories.ErrDuplicate)

		agg, err := s.Reviews.Aggregate(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.Rating{Average: 4, Count: 3}, agg)

		require.NoError(t, s.Products.SetRating(ctx, p.ID, agg))
		p.Name = "Armchair"
		p.AverageRating = 0
		require.NoError(t, s.Products.Update(ctx, p))
		stored, err := s.Products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Armchair", stored.Name)
		assert.Equal(t, 4.0, stored.AverageRating)

		n, err := s.Reviews.DeleteByProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		agg, err = s.Reviews.Aggregate(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.Rating{}, agg)

		require.NoError(t, s.Products.Delete(ctx, p.ID))
		assert.ErrorIs(t, s.Products.Delete(ctx, p.ID), repositories.ErrNotFound)
	})

	t.Run("orders", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		owner := primitive.NewObjectID()

		o := &models.Order{
			Tax: 1, ShippingFee: 5, Subtotal: 20, Total: 26,
			OrderItems:   []models.OrderItem{{Name: "Chair", Price: 10, Amount: 2, ProductID: primitive.NewObjectID()}},
			Status:       models.OrderPending,
			UserID:       owner,
			ClientSecret: "cs",
		}
		require.NoError(t, s.Orders.Create(ctx, o))
		require.NoError(t, s.Orders.Create(ctx, &models.Order{Status: models.OrderPending, UserID: primitive.NewObjectID()}))

		o.Status = models.OrderPaid
		o.PaymentIntentID = "pi_1"
		require.NoError(t, s.Orders.Update(ctx, o))

		got, err := s.Orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderPaid, got.Status)
		assert.Equal(t, "pi_1", got.PaymentIntentID)
		assert.Equal(t, 26.0, got.Total)
		require.Len(t, got.OrderItems, 1)

		mine, err := s.Orders.ListByUser(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		all, err := s.Orders.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestParseID(t *testing.T) {
	_, err := repositories.ParseID("not-an-id")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	id := primitive.NewObjectID()
	got, err := repositories.ParseID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}
