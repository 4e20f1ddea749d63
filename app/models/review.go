package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is one user's rating of one product. (user, product) is unique.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Rating    int                `bson:"rating" json:"rating"`
	Title     string             `bson:"title" json:"title"`
	Comment   string             `bson:"comment" json:"comment"`
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Filled on read paths only.
	UserName    string `bson:"-" json:"userName,omitempty"`
	ProductName string `bson:"-" json:"productName,omitempty"`
}
