package services

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/pkg/event"
	"github.com/shashiranjanraj/thali/pkg/logger"
	"github.com/shashiranjanraj/thali/pkg/metrics"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusUpdated = "order.status_updated"
)

type OrderPlaced struct {
	Order models.Order
	Lines []CartLine
}

type OrderStatusUpdated struct {
	OrderID uint
	Status  string
}

// Broadcaster pushes a message to every live admin feed client.
type Broadcaster interface {
	Broadcast(data []byte)
	ClientCount() int
}

// feedMessage is what the admin feed receives.
type feedMessage struct {
	Event   string  `json:"event"`
	OrderID uint    `json:"order_id"`
	UserID  uint    `json:"user_id,omitempty"`
	Total   float64 `json:"total,omitempty"`
	Status  string  `json:"status"`
}

// RegisterListeners wires metrics and the admin feed to the order events.
// feed may be nil.
func RegisterListeners(bus *event.Bus, feed Broadcaster) {
	bus.Listen(EventOrderPlaced, func(ctx context.Context, payload any) {
		e, ok := payload.(OrderPlaced)
		if !ok {
			return
		}
		metrics.OrdersPlaced.Inc()
		metrics.OrderRevenue.Add(e.Order.TotalPrice)
		logger.WithCtx(ctx).Info("order placed",
			"order_id", e.Order.ID,
			"user_id", e.Order.UserID,
			"total", e.Order.TotalPrice,
		)
		push(ctx, feed, feedMessage{
			Event:   EventOrderPlaced,
			OrderID: e.Order.ID,
			UserID:  e.Order.UserID,
			Total:   e.Order.TotalPrice,
			Status:  e.Order.Status,
		})
	})

	bus.Listen(EventOrderStatusUpdated, func(ctx context.Context, payload any) {
		e, ok := payload.(OrderStatusUpdated)
		if !ok {
			return
		}
		metrics.OrderStatusUpdates.WithLabelValues(statusLabel(e.Status)).Inc()
		logger.WithCtx(ctx).Info("order status updated", "order_id", e.OrderID, "status", e.Status)
		push(ctx, feed, feedMessage{Event: EventOrderStatusUpdated, OrderID: e.OrderID, Status: e.Status})
	})
}

// statusLabel keeps the metric's label set to the suggested statuses.
func statusLabel(status string) string {
	if slices.Contains(models.Statuses, status) {
		return status
	}
	return "other"
}

func push(ctx context.Context, feed Broadcaster, msg feedMessage) {
	if feed == nil || feed.ClientCount() == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.WithCtx(ctx).Error("feed: encode", "error", err)
		return
	}
	feed.Broadcast(data)
}
