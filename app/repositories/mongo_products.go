package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
)

type mongoProducts struct {
	col *mongo.Collection
}

func (r *mongoProducts) Create(ctx context.Context, p *models.Product) error {
	defer observe(productsCollection, "insert")()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	p.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		p.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (r *mongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	defer observe(productsCollection, "find")()
	var p models.Product
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *mongoProducts) List(ctx context.Context) ([]models.Product, error) {
	defer observe(productsCollection, "find")()
	return findAll[models.Product](ctx, r.col, bson.M{}, newestFirst())
}

func (r *mongoProducts) Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	defer observe(productsCollection, "find")()
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1})
	products, err := findAll[models.Product](ctx, r.col, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p.Name
	}
	return out, nil
}

func (r *mongoProducts) Update(ctx context.Context, p *models.Product) error {
	defer observe(productsCollection, "update")()
	p.UpdatedAt = now()
	res, err := r.col.UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{
		"name":         p.Name,
		"price":        p.Price,
		"description":  p.Description,
		"image":        p.Image,
		"category":     p.Category,
		"company":      p.Company,
		"colors":       p.Colors,
		"featured":     p.Featured,
		"freeShipping": p.FreeShipping,
		"inventory":    p.Inventory,
		"updatedAt":    p.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProducts) SetRating(ctx context.Context, id primitive.ObjectID, rating models.Rating) error {
	defer observe(productsCollection, "update")()
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"averageRating": rating.Average,
		"numOfReviews":  rating.Count,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer observe(productsCollection, "delete")()
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
