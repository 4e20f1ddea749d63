package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/collection"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

type CreateReviewInput struct {
	Product string `json:"product" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"required,max=100"`
	Comment string `json:"comment" validate:"required"`
}

type UpdateReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"required,max=100"`
	Comment string `json:"comment" validate:"required"`
}

// ReviewChange is the payload of event.ReviewChanged.
type ReviewChange struct {
	Action    string
	ProductID primitive.ObjectID
	Rating    models.Rating
}

type ReviewService struct {
	store  *repositories.Store
	events *event.Dispatcher
}

// List returns every review with product and author names filled in.
func (s *ReviewService) List(ctx context.Context) ([]models.Review, error) {
	reviews, err := s.store.Reviews.List(ctx)
	if err != nil {
		return nil, internal(err, "list reviews")
	}
	if err := s.populate(ctx, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *ReviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	one := []models.Review{*r}
	if err := s.populate(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// ListForProduct returns the reviews of one product.
func (s *ReviewService) ListForProduct(ctx context.Context, productID string) ([]models.Review, error) {
	pid, err := s.productID(ctx, productID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.store.Reviews.ListByProduct(ctx, pid)
	if err != nil {
		return nil, internal(err, "list reviews of product %s", productID)
	}
	if err := s.populate(ctx, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Create stores the caller's review of a product. A second review of the
// same product by the same user is a conflict.
func (s *ReviewService) Create(ctx context.Context, p auth.Principal, in CreateReviewInput) (*models.Review, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	uid, err := principalID(p)
	if err != nil {
		return nil, err
	}
	pid, err := s.productID(ctx, in.Product)
	if err != nil {
		return nil, err
	}

	r := &models.Review{
		Rating:    in.Rating,
		Title:     in.Title,
		Comment:   in.Comment,
		UserID:    uid,
		ProductID: pid,
	}
	if err := s.store.Reviews.Create(ctx, r); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflictf("Already submitted review for this product")
		}
		return nil, internal(err, "Unable to store review")
	}
	s.recompute(ctx, "create", pid)
	return r, nil
}

// Update lets the author change rating, title and comment.
func (s *ReviewService) Update(ctx context.Context, p auth.Principal, id string, in UpdateReviewInput) (*models.Review, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rbac.CheckOwner(p, r.UserID.Hex(), "update this review"); err != nil {
		return nil, err
	}
	r.Rating, r.Title, r.Comment = in.Rating, in.Title, in.Comment
	if err := s.store.Reviews.Update(ctx, r); err != nil {
		return nil, notFound(err, "No review with id: %s", id)
	}
	s.recompute(ctx, "update", r.ProductID)
	return r, nil
}

// Delete lets the author remove the review.
func (s *ReviewService) Delete(ctx context.Context, p auth.Principal, id string) error {
	r, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := rbac.CheckOwner(p, r.UserID.Hex(), "delete this review"); err != nil {
		return err
	}
	if err := s.store.Reviews.Delete(ctx, r.ID); err != nil {
		return notFound(err, "No review with id: %s", id)
	}
	s.recompute(ctx, "delete", r.ProductID)
	return nil
}

// Recompute rewrites the product's rating from its current reviews.
func (s *ReviewService) Recompute(ctx context.Context, productID primitive.ObjectID) (models.Rating, error) {
	agg, err := s.store.Reviews.Aggregate(ctx, productID)
	if err != nil {
		return models.Rating{}, err
	}
	agg.Average = roundTenth(agg.Average)
	if err := s.store.Products.SetRating(ctx, productID, agg); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return models.Rating{}, err
	}
	return agg, nil
}

// RecomputeAll rewrites the rating of every product using up to workers
// concurrent aggregations. It repairs aggregates left stale by a failed
// recompute and returns the number of products processed.
func (s *ReviewService) RecomputeAll(ctx context.Context, workers int) (int, error) {
	products, err := s.store.Products.List(ctx)
	if err != nil {
		return 0, err
	}
	pool := workerpool.New(ctx, workers)
	for _, p := range products {
		id := p.ID
		pool.Go(func(ctx context.Context) error {
			_, err := s.Recompute(ctx, id)
			return err
		})
	}
	if err := pool.Wait(); err != nil {
		return 0, err
	}
	return len(products), nil
}

// recompute runs after the review write has succeeded. A failure is logged:
// the write stands and the next change corrects the aggregate.
func (s *ReviewService) recompute(ctx context.Context, action string, productID primitive.ObjectID) {
	metrics.ReviewsTotal.WithLabelValues(action).Inc()
	agg, err := s.Recompute(ctx, productID)
	if err != nil {
		logger.WithCtx(ctx).Error("rating aggregation failed", "product_id", productID.Hex(), "error", err)
		return
	}
	s.events.Fire(ctx, event.ReviewChanged, ReviewChange{Action: action, ProductID: productID, Rating: agg})
}

func (s *ReviewService) find(ctx context.Context, id string) (*models.Review, error) {
	oid, err := repositories.ParseID(id)
	if err != nil {
		return nil, apperr.NotFoundf("No review with id: %s", id)
	}
	r, err := s.store.Reviews.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound(err, "No review with id: %s", id)
	}
	return r, nil
}

// productID resolves id to an existing product.
func (s *ReviewService) productID(ctx context.Context, id string) (primitive.ObjectID, error) {
	oid, err := repositories.ParseID(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFoundf("No product with id: %s", id)
	}
	if _, err := s.store.Products.FindByID(ctx, oid); err != nil {
		return primitive.NilObjectID, notFound(err, "No product with id: %s", id)
	}
	return oid, nil
}

func (s *ReviewService) populate(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	userIDs := collection.Unique(collection.Map(reviews, func(r models.Review) primitive.ObjectID { return r.UserID }))
	productIDs := collection.Unique(collection.Map(reviews, func(r models.Review) primitive.ObjectID { return r.ProductID }))
	users, err := s.store.Users.Names(ctx, userIDs)
	if err != nil {
		return internal(err, "load review authors")
	}
	products, err := s.store.Products.Names(ctx, productIDs)
	if err != nil {
		return internal(err, "load reviewed products")
	}
	for i := range reviews {
		reviews[i].UserName = users[reviews[i].UserID]
		reviews[i].ProductName = products[reviews[i].ProductID]
	}
	return nil
}
