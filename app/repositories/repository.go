// Package repositories holds the stores behind the services: accounts, the
// menu, carts and the order ledger. Each store has a process-local memory
// implementation and a gorm one.
package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/thali/app/models"
)

var (
	ErrNotFound  = errors.New("repositories: record not found")
	ErrDuplicate = errors.New("repositories: duplicate record")
)

// UserRepository stores accounts. Create assigns the next id when u.ID is
// zero and returns ErrDuplicate when the email is taken.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id uint) (models.User, error)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error)
}

// MenuRepository is the read-only catalog. All returns items in seed order.
type MenuRepository interface {
	All(ctx context.Context) ([]models.MenuItem, error)
	FindByID(ctx context.Context, id uint) (models.MenuItem, error)
}

// CartRepository keeps per-user quantities. Entries come back in the order
// they were first added.
type CartRepository interface {
	Increment(ctx context.Context, userID, itemID uint) (int, error)
	Remove(ctx context.Context, userID, itemID uint) (bool, error)
	Entries(ctx context.Context, userID uint) ([]models.CartEntry, error)
	Clear(ctx context.Context, userID uint) error
	// Take returns the user's entries and empties the cart in one step.
	Take(ctx context.Context, userID uint) ([]models.CartEntry, error)
}

// OrderRepository is the order ledger. Create assigns id = ledger size + 1.
// Listings are newest order date first.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	ForUser(ctx context.Context, userID uint) ([]models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) (bool, error)
}

// Transactor runs fn so that every repository call made with the ctx it
// receives commits or rolls back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Set bundles one backing's stores.
type Set struct {
	Users  UserRepository
	Menu   MenuRepository
	Carts  CartRepository
	Orders OrderRepository
	Tx     Transactor
}

func newestFirst(a, b models.Order) bool {
	if a.OrderDate.Equal(b.OrderDate) {
		return a.ID > b.ID
	}
	return a.OrderDate.After(b.OrderDate)
}
