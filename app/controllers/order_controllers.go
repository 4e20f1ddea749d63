package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(svc *services.Services) *OrderController {
	return &OrderController{orders: svc.Orders}
}

func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.orders.ListAll(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"orders": orders, "count": len(orders)})
}

// Mine lists the caller's own orders.
func (oc *OrderController) Mine(c *ctx.Context) {
	orders, err := oc.orders.ListMine(c.Context(), c.Principal())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"orders": orders, "count": len(orders)})
}

func (oc *OrderController) Show(c *ctx.Context) {
	order, err := oc.orders.Get(c.Context(), c.Principal(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"order": order})
}

func (oc *OrderController) Store(c *ctx.Context) {
	var in services.CreateOrderInput
	if !c.BindJSON(&in) {
		return
	}
	checkout, err := oc.orders.Create(c.Context(), c.Principal(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(checkout)
}

// Update confirms payment of a pending order.
func (oc *OrderController) Update(c *ctx.Context) {
	var in services.PayOrderInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := oc.orders.Pay(c.Context(), c.Principal(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"order": order})
}
