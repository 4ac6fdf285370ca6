package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_FireInOrder(t *testing.T) {
	bus := NewBus()
	var calls []string

	bus.Listen("order.placed", func(_ context.Context, p any) { calls = append(calls, "first:"+p.(string)) })
	bus.Listen("order.placed", func(_ context.Context, p any) { calls = append(calls, "second:"+p.(string)) })
	bus.Listen("other", func(context.Context, any) { calls = append(calls, "other") })

	bus.Fire(context.Background(), "order.placed", "1")

	assert.Equal(t, []string{"first:1", "second:1"}, calls)
}

func TestBus_PanickingListenerIsolated(t *testing.T) {
	bus := NewBus()
	reached := false

	bus.Listen("e", func(context.Context, any) { panic("boom") })
	bus.Listen("e", func(context.Context, any) { reached = true })

	assert.NotPanics(t, func() { bus.Fire(context.Background(), "e", nil) })
	assert.True(t, reached)
}

func TestBus_NoListeners(t *testing.T) {
	assert.NotPanics(t, func() { NewBus().Fire(context.Background(), "nothing", 1) })
}
