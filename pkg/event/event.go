// Package event dispatches in-process domain events to registered listeners.
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Names of the events fired by the services.
const (
	UserRegistered = "user.registered"
	OrderCreated   = "order.created"
	OrderPaid      = "order.paid"
	ReviewChanged  = "review.changed"
	ProductDeleted = "product.deleted"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload interface{})

// Dispatcher fans events out to listeners. The zero value is ready to use.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Dispatcher { return &Dispatcher{} }

// Listen registers handler for name.
func (d *Dispatcher) Listen(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handlers == nil {
		d.handlers = make(map[string][]Handler)
	}
	d.handlers[name] = append(d.handlers[name], handler)
}

func (d *Dispatcher) snapshot(name string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Handler(nil), d.handlers[name]...)
}

// Fire runs every listener synchronously. A panicking listener is logged and
// does not affect the caller or the other listeners.
func (d *Dispatcher) Fire(ctx context.Context, name string, payload interface{}) {
	if d == nil {
		return
	}
	for _, h := range d.snapshot(name) {
		run(ctx, name, h, payload)
	}
}

func run(ctx context.Context, name string, h Handler, payload interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event listener panicked", "event", name, "panic", rec)
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = nil
}
