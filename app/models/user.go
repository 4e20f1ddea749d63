package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/pkg/auth"
)

// User is an account. Password holds the bcrypt hash and is never serialised.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      auth.Role          `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Principal is the session identity for u.
func (u *User) Principal() auth.Principal {
	return auth.Principal{UserID: u.ID.Hex(), Name: u.Name, Role: u.Role}
}
