package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	d := New()
	var got []string
	d.Listen(OrderCreated, func(_ context.Context, p interface{}) { got = append(got, "a:"+p.(string)) })
	d.Listen(OrderCreated, func(_ context.Context, p interface{}) { got = append(got, "b:"+p.(string)) })
	d.Listen(OrderPaid, func(_ context.Context, _ interface{}) { got = append(got, "paid") })

	d.Fire(context.Background(), OrderCreated, "x")
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}

func TestPanickingListenerIsContained(t *testing.T) {
	d := New()
	called := false
	d.Listen(ReviewChanged, func(context.Context, interface{}) { panic("boom") })
	d.Listen(ReviewChanged, func(context.Context, interface{}) { called = true })

	assert.NotPanics(t, func() { d.Fire(context.Background(), ReviewChanged, nil) })
	assert.True(t, called)
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() { d.Fire(context.Background(), OrderPaid, nil) })
}
