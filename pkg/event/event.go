// Package event is an in-process publish/subscribe bus for domain events.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/thali/pkg/logger"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

// Bus dispatches named events to registered listeners. The zero value is
// not usable; call NewBus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers handler for event.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// Fire calls every listener of event synchronously, in registration order.
// A panicking listener is logged and does not stop the others.
func (b *Bus) Fire(ctx context.Context, event string, payload any) {
	b.mu.RLock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	b.mu.RUnlock()

	for _, h := range hs {
		call(ctx, event, h, payload)
	}
}

func call(ctx context.Context, event string, h Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.WithCtx(ctx).Error("event: listener panicked",
				"event", event,
				"error", fmt.Sprintf("%v", rec),
			)
		}
	}()
	h(ctx, payload)
}
