package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/storefront/app/models"
)

type mongoOrders struct {
	col *mongo.Collection
}

func (r *mongoOrders) Create(ctx context.Context, o *models.Order) error {
	defer observe(ordersCollection, "insert")()
	o.CreatedAt = now()
	o.UpdatedAt = o.CreatedAt
	o.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		o.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (r *mongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	defer observe(ordersCollection, "find")()
	var o models.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

func (r *mongoOrders) List(ctx context.Context) ([]models.Order, error) {
	defer observe(ordersCollection, "find")()
	return findAll[models.Order](ctx, r.col, bson.M{}, newestFirst())
}

func (r *mongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	defer observe(ordersCollection, "find")()
	return findAll[models.Order](ctx, r.col, bson.M{"user": userID}, newestFirst())
}

func (r *mongoOrders) Update(ctx context.Context, o *models.Order) error {
	defer observe(ordersCollection, "update")()
	o.UpdatedAt = now()
	res, err := r.col.UpdateByID(ctx, o.ID, bson.M{"$set": bson.M{
		"status":          o.Status,
		"paymentIntentId": o.PaymentIntentID,
		"updatedAt":       o.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
