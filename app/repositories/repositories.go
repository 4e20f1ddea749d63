// Package repositories persists the domain models. Two drivers implement the
// same interfaces: MongoDB for deployments and an in-memory store for tests
// and DB_DRIVER=memory.
package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

var (
	// ErrNotFound covers both absent documents and malformed ids.
	ErrNotFound = errors.New("repositories: not found")
	// ErrDuplicate reports a unique index violation.
	ErrDuplicate = errors.New("repositories: duplicate key")
)

// ParseID converts a hex id. Malformed ids are reported as ErrNotFound so
// callers cannot tell them apart from absent documents.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

type Users interface {
	// Create inserts u and sets its ID. ErrDuplicate if the email is taken.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]models.User, error)
	// Names maps each known id to the user's name.
	Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
	// Update writes name, email, password and role. ErrDuplicate if the new
	// email belongs to someone else.
	Update(ctx context.Context, u *models.User) error
}

type Products interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
	// Update writes the client-editable fields. The rating is left alone.
	Update(ctx context.Context, p *models.Product) error
	SetRating(ctx context.Context, id primitive.ObjectID, r models.Rating) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Reviews interface {
	// Create inserts r. ErrDuplicate if the user already reviewed the product.
	Create(ctx context.Context, r *models.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	List(ctx context.Context) ([]models.Review, error)
	ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	// Update writes rating, title and comment.
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error)
	// Aggregate returns the unrounded mean rating and the review count.
	Aggregate(ctx context.Context, productID primitive.ObjectID) (models.Rating, error)
}

type Orders interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	// Update writes status and payment intent id.
	Update(ctx context.Context, o *models.Order) error
}

// Store bundles one driver's repositories.
type Store struct {
	Users    Users
	Products Products
	Reviews  Reviews
	Orders   Orders
}
