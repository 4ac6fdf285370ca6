package repositories

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/pkg/collection"
)

// NewMemorySet returns process-local stores serving the given menu.
func NewMemorySet(menu []models.MenuItem) Set {
	return Set{
		Users:  NewMemoryUsers(),
		Menu:   NewMemoryMenu(menu),
		Carts:  NewMemoryCarts(),
		Orders: NewMemoryOrders(),
		Tx:     NoTx{},
	}
}

// NoTx runs fn directly. Each memory store operation is already atomic.
type NoTx struct{}

func (NoTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ─── Users ───────────────────────────────────────────────────────────────────

type MemoryUsers struct {
	mu      sync.Mutex
	byID    map[uint]models.User
	byEmail map[string]uint
	nextID  uint
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:    map[uint]models.User{},
		byEmail: map[string]uint{},
		nextID:  1,
	}
}

func (s *MemoryUsers) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[u.Email]; taken {
		return ErrDuplicate
	}
	if u.ID == 0 {
		u.ID = s.nextID
	} else if _, taken := s.byID[u.ID]; taken {
		return ErrDuplicate
	}
	if u.ID >= s.nextID {
		s.nextID = u.ID + 1
	}

	s.byID[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryUsers) FindByID(_ context.Context, id uint) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryUsers) FindByIDs(_ context.Context, ids []uint) (map[uint]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uint]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// ─── Menu ────────────────────────────────────────────────────────────────────

// MemoryMenu is immutable after construction and needs no lock.
type MemoryMenu struct {
	items []models.MenuItem
	byID  map[uint]models.MenuItem
}

func NewMemoryMenu(items []models.MenuItem) *MemoryMenu {
	cp := append([]models.MenuItem(nil), items...)
	return &MemoryMenu{
		items: cp,
		byID:  collection.KeyBy(cp, func(m models.MenuItem) uint { return m.ID }),
	}
}

func (m *MemoryMenu) All(context.Context) ([]models.MenuItem, error) {
	return append([]models.MenuItem(nil), m.items...), nil
}

func (m *MemoryMenu) FindByID(_ context.Context, id uint) (models.MenuItem, error) {
	item, ok := m.byID[id]
	if !ok {
		return models.MenuItem{}, ErrNotFound
	}
	return item, nil
}

// ─── Carts ───────────────────────────────────────────────────────────────────

type MemoryCarts struct {
	mu    sync.Mutex
	carts map[uint][]models.CartEntry
}

func NewMemoryCarts() *MemoryCarts {
	return &MemoryCarts{carts: map[uint][]models.CartEntry{}}
}

func (s *MemoryCarts) Increment(_ context.Context, userID, itemID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.carts[userID]
	for i := range entries {
		if entries[i].MenuItemID == itemID {
			entries[i].Quantity++
			return entries[i].Quantity, nil
		}
	}
	s.carts[userID] = append(entries, models.CartEntry{UserID: userID, MenuItemID: itemID, Quantity: 1})
	return 1, nil
}

func (s *MemoryCarts) Remove(_ context.Context, userID, itemID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.carts[userID]
	for i := range entries {
		if entries[i].MenuItemID == itemID {
			s.carts[userID] = append(entries[:i:i], entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryCarts) Entries(_ context.Context, userID uint) ([]models.CartEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartEntry(nil), s.carts[userID]...), nil
}

func (s *MemoryCarts) Clear(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *MemoryCarts) Take(_ context.Context, userID uint) ([]models.CartEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.carts[userID]
	delete(s.carts, userID)
	return entries, nil
}

// ─── Orders ──────────────────────────────────────────────────────────────────

type MemoryOrders struct {
	mu     sync.Mutex
	orders []models.Order
}

func NewMemoryOrders() *MemoryOrders { return &MemoryOrders{} }

func (s *MemoryOrders) Create(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.ID = uint(len(s.orders) + 1)
	s.orders = append(s.orders, *o)
	return nil
}

func (s *MemoryOrders) ForUser(_ context.Context, userID uint) ([]models.Order, error) {
	s.mu.Lock()
	mine := collection.Filter(s.orders, func(o models.Order) bool { return o.UserID == userID })
	s.mu.Unlock()
	return collection.SortBy(mine, newestFirst), nil
}

func (s *MemoryOrders) All(context.Context) ([]models.Order, error) {
	s.mu.Lock()
	all := append([]models.Order(nil), s.orders...)
	s.mu.Unlock()
	return collection.SortBy(all, newestFirst), nil
}

func (s *MemoryOrders) UpdateStatus(_ context.Context, id uint, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == 0 || int(id) > len(s.orders) {
		return false, nil
	}
	s.orders[id-1].Status = status
	return true, nil
}
