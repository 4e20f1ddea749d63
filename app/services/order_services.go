package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/collection"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/payment"
	"github.com/shashiranjanraj/storefront/pkg/rbac"
)

// CartItem is one line of a checkout request.
type CartItem struct {
	Product string `json:"product" validate:"required"`
	Amount  int    `json:"amount" validate:"required,gte=1"`
}

type CreateOrderInput struct {
	Tax         *float64   `json:"tax" validate:"required,gte=0"`
	ShippingFee *float64   `json:"shippingFee" validate:"required,gte=0"`
	Items       []CartItem `json:"orderItems" validate:"required,min=1,dive"`
}

type PayOrderInput struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

// Checkout is the result of placing an order.
type Checkout struct {
	Order        *models.Order `json:"order"`
	ClientSecret string        `json:"clientSecret"`
}

type OrderService struct {
	store    *repositories.Store
	gateway  payment.Gateway
	currency string
	events   *event.Dispatcher
}

// Create prices the cart from the catalog, asks the gateway for an intent
// and stores the order as pending. Client-sent prices are never read.
func (s *OrderService) Create(ctx context.Context, p auth.Principal, in CreateOrderInput) (*Checkout, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	uid, err := principalID(p)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, ci := range in.Items {
		oid, err := repositories.ParseID(ci.Product)
		if err != nil {
			return nil, apperr.NotFoundf("No product with id: %s", ci.Product)
		}
		prod, err := s.store.Products.FindByID(ctx, oid)
		if err != nil {
			return nil, notFound(err, "No product with id: %s", ci.Product)
		}
		items = append(items, models.OrderItem{
			Name:      prod.Name,
			Image:     prod.Image,
			Price:     prod.Price,
			Amount:    ci.Amount,
			ProductID: prod.ID,
		})
	}
	subtotal := roundCents(collection.Sum(items, func(it models.OrderItem) float64 {
		return it.Price * float64(it.Amount)
	}))
	total := roundCents(*in.Tax + *in.ShippingFee + subtotal)

	intent, err := s.gateway.CreateIntent(ctx, payment.Intent{Amount: total, Currency: s.currency})
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, err, "Payment provider unavailable")
	}

	o := &models.Order{
		Tax:          roundCents(*in.Tax),
		ShippingFee:  roundCents(*in.ShippingFee),
		Subtotal:     subtotal,
		Total:        total,
		OrderItems:   items,
		Status:       models.OrderPending,
		UserID:       uid,
		ClientSecret: intent.ClientSecret,
	}
	if err := s.store.Orders.Create(ctx, o); err != nil {
		return nil, internal(err, "Unable to store order")
	}

	logger.WithCtx(ctx).Info("order created", "order_id", o.ID.Hex(), "total", o.Total)
	s.events.Fire(ctx, event.OrderCreated, o)
	return &Checkout{Order: o, ClientSecret: o.ClientSecret}, nil
}

// Pay records the payment intent of a pending order and marks it paid.
// Only the order's owner may do this.
func (s *OrderService) Pay(ctx context.Context, p auth.Principal, id string, in PayOrderInput) (*models.Order, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rbac.CheckOwner(p, o.UserID.Hex(), "update this order"); err != nil {
		return nil, err
	}
	if o.Status != models.OrderPending {
		return nil, apperr.Conflictf("Order is already %s", o.Status)
	}

	o.PaymentIntentID = in.PaymentIntentID
	o.Status = models.OrderPaid
	if err := s.store.Orders.Update(ctx, o); err != nil {
		return nil, notFound(err, "No order with id: %s", id)
	}
	s.events.Fire(ctx, event.OrderPaid, o)
	return o, nil
}

// Get returns one order to its owner or an admin.
func (s *OrderService) Get(ctx context.Context, p auth.Principal, id string) (*models.Order, error) {
	o, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rbac.CheckPermission(p, o.UserID.Hex()); err != nil {
		return nil, err
	}
	return o, nil
}

// ListAll returns every order with the buyer's name filled in.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.store.Orders.List(ctx)
	if err != nil {
		return nil, internal(err, "list orders")
	}
	if err := s.populate(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListMine returns the caller's orders.
func (s *OrderService) ListMine(ctx context.Context, p auth.Principal) ([]models.Order, error) {
	uid, err := principalID(p)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.Orders.ListByUser(ctx, uid)
	if err != nil {
		return nil, internal(err, "list orders of user %s", p.UserID)
	}
	if err := s.populate(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) find(ctx context.Context, id string) (*models.Order, error) {
	oid, err := repositories.ParseID(id)
	if err != nil {
		return nil, apperr.NotFoundf("No order with id: %s", id)
	}
	o, err := s.store.Orders.FindByID(ctx, oid)
	if err != nil {
		return nil, notFound(err, "No order with id: %s", id)
	}
	return o, nil
}

func (s *OrderService) populate(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := collection.Unique(collection.Map(orders, func(o models.Order) primitive.ObjectID { return o.UserID }))
	names, err := s.store.Users.Names(ctx, ids)
	if err != nil {
		return internal(err, "load order owners")
	}
	for i := range orders {
		orders[i].UserName = names[orders[i].UserID]
	}
	return nil
}
