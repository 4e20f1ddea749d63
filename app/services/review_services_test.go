package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/event"
)

func TestReviewLifecycleMaintainsAggregate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "Alice", "a@x.io")
	bob := f.register(t, "Bob", "b@x.io")
	p := f.product(t, "desk", 100)

	var changes []services.ReviewChange
	f.events.Listen(event.ReviewChanged, func(_ context.Context, payload interface{}) {
		changes = append(changes, payload.(services.ReviewChange))
	})

	r1, err := f.svc.Reviews.Create(ctx, alice, services.CreateReviewInput{Product: p.ID.Hex(), Rating: 4, Title: "good", Comment: "solid"})
	require.NoError(t, err)
	_, err = f.svc.Reviews.Create(ctx, bob, services.CreateReviewInput{Product: p.ID.Hex(), Rating: 5, Title: "great", Comment: "love it"})
	require.NoError(t, err)

	got, err := f.svc.Products.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 4.5, got.AverageRating)
	assert.Equal(t, 2, got.NumOfReviews)

	_, err = f.svc.Reviews.Create(ctx, alice, services.CreateReviewInput{Product: p.ID.Hex(), Rating: 1, Title: "again", Comment: "x"})
	assertKind(t, apperr.Conflict, err)

	_, err = f.svc.Reviews.Update(ctx, alice, r1.ID.Hex(), services.UpdateReviewInput{Rating: 2, Title: "meh", Comment: "changed"})
	require.NoError(t, err)
	got, _ = f.svc.Products.Get(ctx, p.ID.Hex())
	assert.Equal(t, 3.5, got.AverageRating)

	require.NoError(t, f.svc.Reviews.Delete(ctx, alice, r1.ID.Hex()))
	got, _ = f.svc.Products.Get(ctx, p.ID.Hex())
	assert.Equal(t, 5.0, got.AverageRating)
	assert.Equal(t, 1, got.NumOfReviews)

	require.Len(t, changes, 4)
	assert.Equal(t, "delete", changes[3].Action)
}

func TestAggregateRoundsToOneDecimal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	p := f.product(t, "bed", 300)
	for i, rating := range []int{1, 2, 2} {
		u := f.register(t, "User"+string(rune('A'+i)), string(rune('a'+i))+"@x.io")
		_, err := f.svc.Reviews.Create(ctx, u, services.CreateReviewInput{Product: p.ID.Hex(), Rating: rating, Title: "t", Comment: "c"})
		require.NoError(t, err)
	}

	got, err := f.svc.Products.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1.7, got.AverageRating)
	assert.Equal(t, 3, got.NumOfReviews)
}

func TestDeletingLastReviewResetsAggregate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "Alice", "a@x.io")
	p := f.product(t, "shelf", 50)

	r, err := f.svc.Reviews.Create(ctx, alice, services.CreateReviewInput{Product: p.ID.Hex(), Rating: 3, Title: "t", Comment: "c"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Reviews.Delete(ctx, alice, r.ID.Hex()))

	got, err := f.svc.Products.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.NumOfReviews)
}

func TestReviewsAreAuthorOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "Alice", "a@x.io")
	bob := f.register(t, "Bob", "b@x.io")
	admin := f.admin(t)
	p := f.product(t, "desk", 100)

	r, err := f.svc.Reviews.Create(ctx, alice, services.CreateReviewInput{Product: p.ID.Hex(), Rating: 4, Title: "t", Comment: "c"})
	require.NoError(t, err)

	in := services.UpdateReviewInput{Rating: 1, Title: "x", Comment: "y"}
	_, err = f.svc.Reviews.Update(ctx, bob, r.ID.Hex(), in)
	assertKind(t, apperr.PermissionDenied, err)
	_, err = f.svc.Reviews.Update(ctx, admin, r.ID.Hex(), in)
	assertKind(t, apperr.PermissionDenied, err)
	assertKind(t, apperr.PermissionDenied, f.svc.Reviews.Delete(ctx, admin, r.ID.Hex()))

	stored, err := f.svc.Reviews.Get(ctx, r.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rating)
	assert.Equal(t, "Alice", stored.UserName)
	assert.Equal(t, "desk", stored.ProductName)
}

func TestReviewInputs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "Alice", "a@x.io")
	p := f.product(t, "desk", 100)

	_, err := f.svc.Reviews.Create(ctx, alice, services.CreateReviewInput{Product: "64b7f0c2a1b2c3d4e5f60718", Rating: 4, Title: "t", Comment: "c"})
	assertKind(t, apperr.NotFound, err)
	_, err = f.svc.Reviews.Create(ctx, alice, services.CreateReviewInput{Product: p.ID.Hex(), Rating: 6, Title: "t", Comment: "c"})
	assertKind(t, apperr.Validation, err)
	_, err = f.svc.Reviews.Create(ctx, alice, services.CreateReviewInput{Product: p.ID.Hex(), Rating: 0, Title: "t", Comment: "c"})
	assertKind(t, apperr.Validation, err)

	_, err = f.svc.Reviews.ListForProduct(ctx, "bogus")
	assertKind(t, apperr.NotFound, err)
	list, err := f.svc.Reviews.ListForProduct(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListForProductNamesAuthors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "Alice", "a@x.io")
	bob := f.register(t, "Bob", "b@x.io")
	p := f.product(t, "desk", 100)

	for _, who := range []auth.Principal{alice, bob} {
		_, err := f.svc.Reviews.Create(ctx, who, services.CreateReviewInput{Product: p.ID.Hex(), Rating: 5, Title: "t", Comment: "c"})
		require.NoError(t, err)
	}

	list, err := f.svc.Reviews.ListForProduct(ctx, p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, list, 2)
	names := []string{list[0].UserName, list[1].UserName}
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, names)
	assert.Equal(t, "desk", list[0].ProductName)
}

func TestRecomputeAllRepairsStaleAggregates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "Alice", "a@x.io")
	desk := f.product(t, "desk", 100)
	lamp := f.product(t, "lamp", 20)

	_, err := f.svc.Reviews.Create(ctx, alice, services.CreateReviewInput{Product: desk.ID.Hex(), Rating: 4, Title: "t", Comment: "c"})
	require.NoError(t, err)
	require.NoError(t, f.store.Products.SetRating(ctx, desk.ID, models.Rating{Average: 1, Count: 9}))
	require.NoError(t, f.store.Products.SetRating(ctx, lamp.ID, models.Rating{Average: 3, Count: 2}))

	n, err := f.svc.Reviews.RecomputeAll(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, _ := f.svc.Products.Get(ctx, desk.ID.Hex())
	assert.Equal(t, 4.0, got.AverageRating)
	assert.Equal(t, 1, got.NumOfReviews)
	got, _ = f.svc.Products.Get(ctx, lamp.ID.Hex())
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.NumOfReviews)
}
