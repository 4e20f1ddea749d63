package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderFailed    OrderStatus = "failed"
	OrderPaid      OrderStatus = "paid"
	OrderDelivered OrderStatus = "delivered"
	OrderCanceled  OrderStatus = "canceled"
)

// OrderItem is a snapshot of a product taken when the order was placed.
type OrderItem struct {
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Price     float64            `bson:"price" json:"price"`
	Amount    int                `bson:"amount" json:"amount"`
	ProductID primitive.ObjectID `bson:"product" json:"product"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Tax             float64            `bson:"tax" json:"tax"`
	ShippingFee     float64            `bson:"shippingFee" json:"shippingFee"`
	Subtotal        float64            `bson:"subtotal" json:"subtotal"`
	Total           float64            `bson:"total" json:"total"`
	OrderItems      []OrderItem        `bson:"orderItems" json:"orderItems"`
	Status          OrderStatus        `bson:"status" json:"status"`
	UserID          primitive.ObjectID `bson:"user" json:"user"`
	ClientSecret    string             `bson:"clientSecret" json:"clientSecret"`
	PaymentIntentID string             `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Filled on read paths only.
	UserName string `bson:"-" json:"userName,omitempty"`
}
