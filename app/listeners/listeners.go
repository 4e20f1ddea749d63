// Package listeners reacts to domain events with metrics and audit logs.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// Register attaches every listener to d.
func Register(d *event.Dispatcher) {
	d.Listen(event.UserRegistered, onUserRegistered)
	d.Listen(event.OrderCreated, onOrderCreated)
	d.Listen(event.OrderPaid, onOrderPaid)
	d.Listen(event.ReviewChanged, onReviewChanged)
	d.Listen(event.ProductDeleted, onProductDeleted)
}

func onUserRegistered(ctx context.Context, payload interface{}) {
	u, ok := payload.(*models.User)
	if !ok {
		return
	}
	logger.WithCtx(ctx).Info("audit: account created", "user_id", u.ID.Hex(), "role", u.Role)
}

func onOrderCreated(ctx context.Context, payload interface{}) {
	o, ok := payload.(*models.Order)
	if !ok {
		return
	}
	metrics.OrdersTotal.WithLabelValues(string(o.Status)).Inc()
	metrics.OrderValue.Observe(o.Total)
	logger.WithCtx(ctx).Info("audit: order placed",
		"order_id", o.ID.Hex(), "user_id", o.UserID.Hex(), "items", len(o.OrderItems), "total", o.Total)
}

func onOrderPaid(ctx context.Context, payload interface{}) {
	o, ok := payload.(*models.Order)
	if !ok {
		return
	}
	metrics.OrdersTotal.WithLabelValues(string(o.Status)).Inc()
	logger.WithCtx(ctx).Info("audit: order paid", "order_id", o.ID.Hex(), "payment_intent", o.PaymentIntentID)
}

func onReviewChanged(ctx context.Context, payload interface{}) {
	c, ok := payload.(services.ReviewChange)
	if !ok {
		return
	}
	logger.WithCtx(ctx).Debug("product rating recomputed",
		"action", c.Action, "product_id", c.ProductID.Hex(), "average", c.Rating.Average, "count", c.Rating.Count)
}

func onProductDeleted(ctx context.Context, payload interface{}) {
	p, ok := payload.(*models.Product)
	if !ok {
		return
	}
	logger.WithCtx(ctx).Info("audit: product removed", "product_id", p.ID.Hex(), "name", p.Name)
}
