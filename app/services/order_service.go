package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/repositories"
	"github.com/shashiranjanraj/thali/pkg/collection"
	"github.com/shashiranjanraj/thali/pkg/event"
)

// OrderService is the order ledger.
type OrderService struct {
	orders  repositories.OrderRepository
	carts   repositories.CartRepository
	users   repositories.UserRepository
	tx      repositories.Transactor
	catalog *CatalogService
	bus     *event.Bus
	now     func() time.Time
}

func NewOrderService(set repositories.Set, catalog *CatalogService, bus *event.Bus) *OrderService {
	return &OrderService{
		orders:  set.Orders,
		carts:   set.Carts,
		users:   set.Users,
		tx:      set.Tx,
		catalog: catalog,
		bus:     bus,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for order dates.
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// Place turns the user's cart into an order and empties the cart. An empty
// cart yields ErrEmptyCart and leaves the ledger untouched.
func (s *OrderService) Place(ctx context.Context, userID uint) (models.Order, error) {
	var (
		placed models.Order
		view   CartView
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entries, err := s.carts.Take(ctx, userID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return ErrEmptyCart
		}

		menu, err := s.catalog.index(ctx)
		if err != nil {
			return err
		}
		view = price(entries, menu)

		placed = models.Order{
			UserID:     userID,
			TotalPrice: view.Total,
			Status:     models.StatusPlaced,
			OrderDate:  s.now(),
		}
		return s.orders.Create(ctx, &placed)
	})
	if errors.Is(err, ErrEmptyCart) {
		return models.Order{}, err
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("place order: %w", err)
	}

	s.bus.Fire(ctx, EventOrderPlaced, OrderPlaced{Order: placed, Lines: view.Lines})
	return placed, nil
}

// ListForUser returns the user's orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orders.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListAll returns every order with the name and email of whoever placed it,
// newest first. Only administrators may call it.
func (s *OrderService) ListAll(ctx context.Context, actor models.User) ([]models.OrderDetail, error) {
	if !actor.IsAdmin {
		return nil, ErrNotAuthorized
	}

	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}

	ids := collection.Map(orders, func(o models.Order) uint { return o.UserID })
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}

	return collection.Map(orders, func(o models.Order) models.OrderDetail {
		d := models.OrderDetail{Order: o, Name: "N/A"}
		if u, ok := users[o.UserID]; ok {
			d.Name, d.Email = u.Name, u.Email
		}
		return d
	}), nil
}

// UpdateStatus overwrites the status of orderID. A missing order is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.User, orderID uint, status string) error {
	if !actor.IsAdmin {
		return ErrNotAuthorized
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if updated {
		s.bus.Fire(ctx, EventOrderStatusUpdated, OrderStatusUpdated{OrderID: orderID, Status: status})
	}
	return nil
}
