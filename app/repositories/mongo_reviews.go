package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/storefront/app/models"
)

type mongoReviews struct {
	col *mongo.Collection
}

func (r *mongoReviews) Create(ctx context.Context, rv *models.Review) error {
	defer observe(reviewsCollection, "insert")()
	rv.CreatedAt = now()
	rv.UpdatedAt = rv.CreatedAt
	rv.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, rv); err != nil {
		rv.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (r *mongoReviews) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	defer observe(reviewsCollection, "find")()
	var rv models.Review
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rv); err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *mongoReviews) List(ctx context.Context) ([]models.Review, error) {
	defer observe(reviewsCollection, "find")()
	return findAll[models.Review](ctx, r.col, bson.M{}, newestFirst())
}

func (r *mongoReviews) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	defer observe(reviewsCollection, "find")()
	return findAll[models.Review](ctx, r.col, bson.M{"product": productID}, newestFirst())
}

func (r *mongoReviews) Update(ctx context.Context, rv *models.Review) error {
	defer observe(reviewsCollection, "update")()
	rv.UpdatedAt = now()
	res, err := r.col.UpdateByID(ctx, rv.ID, bson.M{"$set": bson.M{
		"rating":    rv.Rating,
		"title":     rv.Title,
		"comment":   rv.Comment,
		"updatedAt": rv.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoReviews) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer observe(reviewsCollection, "delete")()
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoReviews) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	defer observe(reviewsCollection, "delete")()
	res, err := r.col.DeleteMany(ctx, bson.M{"product": productID})
	if err != nil {
		return 0, translate(err)
	}
	return res.DeletedCount, nil
}

// Aggregate groups the product's reviews server side. No reviews yields an
// empty result, reported as the zero Rating.
func (r *mongoReviews) Aggregate(ctx context.Context, productID primitive.ObjectID) (models.Rating, error) {
	defer observe(reviewsCollection, "aggregate")()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"averageRating": bson.M{"$avg": "$rating"},
			"numOfReviews":  bson.M{"$sum": 1},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return models.Rating{}, err
	}
	var rows []struct {
		AverageRating float64 `bson:"averageRating"`
		NumOfReviews  int     `bson:"numOfReviews"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return models.Rating{}, err
	}
	if len(rows) == 0 {
		return models.Rating{}, nil
	}
	return models.Rating{Average: rows[0].AverageRating, Count: rows[0].NumOfReviews}, nil
}
