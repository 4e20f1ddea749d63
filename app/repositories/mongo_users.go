package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/auth"
)

type mongoUsers struct {
	col *mongo.Collection
}

func (r *mongoUsers) Create(ctx context.Context, u *models.User) error {
	defer observe(usersCollection, "insert")()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	u.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		u.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (r *mongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	defer observe(usersCollection, "find")()
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUsers) ListByRole(ctx context.Context, role auth.Role) ([]models.User, error) {
	defer observe(usersCollection, "find")()
	opts := options.Find().SetProjection(bson.M{"password": 0}).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findAll[models.User](ctx, r.col, bson.M{"role": role}, opts)
}

func (r *mongoUsers) Names(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	defer observe(usersCollection, "find")()
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1})
	users, err := findAll[models.User](ctx, r.col, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u.Name
	}
	return out, nil
}

func (r *mongoUsers) Update(ctx context.Context, u *models.User) error {
	defer observe(usersCollection, "update")()
	u.UpdatedAt = now()
	res, err := r.col.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"name":      u.Name,
		"email":     u.Email,
		"password":  u.Password,
		"role":      u.Role,
		"updatedAt": u.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
