package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultProductImage = "/uploads/example.jpeg"
	DefaultInventory    = 15
)

// DefaultColors is applied when a product is created without colors.
var DefaultColors = []string{"#222"}

// Product is a catalog entry. AverageRating and NumOfReviews are derived from
// the product's reviews and are only written by the review aggregation.
type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Price         float64            `bson:"price" json:"price"`
	Description   string             `bson:"description" json:"description"`
	Image         string             `bson:"image" json:"image"`
	Category      string             `bson:"category" json:"category"`
	Company       string             `bson:"company" json:"company"`
	Colors        []string           `bson:"colors" json:"colors"`
	Featured      bool               `bson:"featured" json:"featured"`
	FreeShipping  bool               `bson:"freeShipping" json:"freeShipping"`
	Inventory     int                `bson:"inventory" json:"inventory"`
	AverageRating float64            `bson:"averageRating" json:"averageRating"`
	NumOfReviews  int                `bson:"numOfReviews" json:"numOfReviews"`
	UserID        primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductPatch carries the fields of a partial update. Nil means unchanged.
type ProductPatch struct {
	Name         *string
	Price        *float64
	Description  *string
	Image        *string
	Category     *string
	Company      *string
	Colors       []string
	Featured     *bool
	FreeShipping *bool
	Inventory    *int
}

// Apply copies the set fields onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Company != nil {
		p.Company = *pp.Company
	}
	if pp.Colors != nil {
		p.Colors = append([]string(nil), pp.Colors...)
	}
	if pp.Featured != nil {
		p.Featured = *pp.Featured
	}
	if pp.FreeShipping != nil {
		p.FreeShipping = *pp.FreeShipping
	}
	if pp.Inventory != nil {
		p.Inventory = *pp.Inventory
	}
}

// Rating is the aggregate of a product's reviews.
type Rating struct {
	Average float64
	Count   int
}
