package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/repositories"
	"github.com/shashiranjanraj/thali/pkg/collection"
	"github.com/shashiranjanraj/thali/pkg/metrics"
)

// CartLine is one priced cart entry.
type CartLine struct {
	Item      models.MenuItem `json:"item"`
	Quantity  int             `json:"quantity"`
	LineTotal float64         `json:"line_total"`
}

// CartView is a cart joined against the catalog.
type CartView struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

func (v CartView) Empty() bool { return len(v.Lines) == 0 }

// price joins entries with the menu in entry order. Entries for items not on
// the menu are left out.
func price(entries []models.CartEntry, menu map[uint]models.MenuItem) CartView {
	known := collection.Filter(entries, func(e models.CartEntry) bool {
		_, ok := menu[e.MenuItemID]
		return ok
	})
	lines := collection.Map(known, func(e models.CartEntry) CartLine {
		item := menu[e.MenuItemID]
		return CartLine{Item: item, Quantity: e.Quantity, LineTotal: item.Price * float64(e.Quantity)}
	})
	return CartView{
		Lines: lines,
		Total: collection.Sum(lines, func(l CartLine) float64 { return l.LineTotal }),
	}
}

type CartService struct {
	carts   repositories.CartRepository
	catalog *CatalogService
}

func NewCartService(carts repositories.CartRepository, catalog *CatalogService) *CartService {
	return &CartService{carts: carts, catalog: catalog}
}

// Add puts one more of itemID in the cart. The item is not checked against
// the menu.
func (s *CartService) Add(ctx context.Context, userID, itemID uint) (int, error) {
	qty, err := s.carts.Increment(ctx, userID, itemID)
	if err != nil {
		return 0, fmt.Errorf("cart add: %w", err)
	}
	metrics.CartAdditions.Inc()
	return qty, nil
}

// Remove drops itemID from the cart and reports whether it was there.
func (s *CartService) Remove(ctx context.Context, userID, itemID uint) (bool, error) {
	removed, err := s.carts.Remove(ctx, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("cart remove: %w", err)
	}
	return removed, nil
}

func (s *CartService) View(ctx context.Context, userID uint) (CartView, error) {
	entries, err := s.carts.Entries(ctx, userID)
	if err != nil {
		return CartView{}, fmt.Errorf("cart view: %w", err)
	}
	if len(entries) == 0 {
		return CartView{}, nil
	}
	menu, err := s.catalog.index(ctx)
	if err != nil {
		return CartView{}, err
	}
	return price(entries, menu), nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return fmt.Errorf("cart clear: %w", err)
	}
	return nil
}

// Count is the number of units in the cart, unknown items included.
func (s *CartService) Count(ctx context.Context, userID uint) (int, error) {
	entries, err := s.carts.Entries(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("cart count: %w", err)
	}
	return collection.Reduce(entries, 0, func(n int, e models.CartEntry) int { return n + e.Quantity }), nil
}
