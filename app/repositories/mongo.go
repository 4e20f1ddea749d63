package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	reviewsCollection  = "reviews"
	ordersCollection   = "orders"
)

// NewMongoStore builds the MongoDB driver over db. Call EnsureIndexes once
// before serving traffic; uniqueness depends on it.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Users:    &mongoUsers{col: db.Collection(usersCollection)},
		Products: &mongoProducts{col: db.Collection(productsCollection)},
		Reviews:  &mongoReviews{col: db.Collection(reviewsCollection)},
		Orders:   &mongoOrders{col: db.Collection(ordersCollection)},
	}
}

// EnsureIndexes creates the indexes the store relies on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_email")},
			{Keys: bson.D{{Key: "role", Value: 1}}, Options: options.Index().SetName("role")},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at")},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "product", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_user_product")},
			{Keys: bson.D{{Key: "product", Value: 1}}, Options: options.Index().SetName("product")},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("user_created_at")},
		},
	}
	for col, idx := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("repositories: indexes on %s: %w", col, err)
		}
	}
	return nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

// observe times one collection operation.
func observe(collection, op string) func() {
	start := time.Now()
	return func() { metrics.ObserveDB(collection, op, start) }
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// findAll decodes every document matched by filter into a slice of T.
func findAll[T any](ctx context.Context, col *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}
