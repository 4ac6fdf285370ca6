package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/pkg/metrics"
)

// NewGormSet returns stores backed by db. The schema comes from
// database/migrations.
func NewGormSet(db *gorm.DB) Set {
	return Set{
		Users:  &GormUsers{db: db},
		Menu:   &GormMenu{db: db},
		Carts:  &GormCarts{db: db},
		Orders: &GormOrders{db: db},
		Tx:     &GormTx{db: db},
	}
}

type txKey struct{}

// GormTx opens a database transaction and hands it to repositories through
// the context.
type GormTx struct {
	db *gorm.DB
}

func (t *GormTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return conn(ctx, t.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db bound to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ─── Users ───────────────────────────────────────────────────────────────────

type GormUsers struct {
	db *gorm.DB
}

func (r *GormUsers) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveDBQuery("users.create", time.Now())

	db := conn(ctx, r.db)
	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", u.Email).Count(&n).Error; err != nil {
		return fmt.Errorf("users: count email: %w", err)
	}
	if n > 0 {
		return ErrDuplicate
	}

	if err := db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("users: create: %w", err)
	}
	return nil
}

func (r *GormUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveDBQuery("users.find_by_email", time.Now())

	var u models.User
	err := conn(ctx, r.db).Where("email = ?", email).First(&u).Error
	return u, notFound(err)
}

func (r *GormUsers) FindByID(ctx context.Context, id uint) (models.User, error) {
	defer metrics.ObserveDBQuery("users.find_by_id", time.Now())

	var u models.User
	err := conn(ctx, r.db).First(&u, id).Error
	return u, notFound(err)
}

func (r *GormUsers) FindByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	out := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	defer metrics.ObserveDBQuery("users.find_by_ids", time.Now())

	var users []models.User
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("users: find by ids: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// ─── Menu ────────────────────────────────────────────────────────────────────

type GormMenu struct {
	db *gorm.DB
}

func (r *GormMenu) All(ctx context.Context) ([]models.MenuItem, error) {
	defer metrics.ObserveDBQuery("menu.all", time.Now())

	var items []models.MenuItem
	if err := conn(ctx, r.db).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("menu: all: %w", err)
	}
	return items, nil
}

func (r *GormMenu) FindByID(ctx context.Context, id uint) (models.MenuItem, error) {
	defer metrics.ObserveDBQuery("menu.find_by_id", time.Now())

	var item models.MenuItem
	err := conn(ctx, r.db).First(&item, id).Error
	return item, notFound(err)
}

// ─── Carts ───────────────────────────────────────────────────────────────────

type GormCarts struct {
	db *gorm.DB
}

func (r *GormCarts) Increment(ctx context.Context, userID, itemID uint) (int, error) {
	defer metrics.ObserveDBQuery("carts.increment", time.Now())

	var qty int
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		entry := models.CartEntry{UserID: userID, MenuItemID: itemID, Quantity: 1}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "menu_item_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("quantity + 1")}),
		}).Create(&entry).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.CartEntry{}).
			Where("user_id = ? AND menu_item_id = ?", userID, itemID).
			Select("quantity").Scan(&qty).Error
	})
	if err != nil {
		return 0, fmt.Errorf("carts: increment: %w", err)
	}
	return qty, nil
}

func (r *GormCarts) Remove(ctx context.Context, userID, itemID uint) (bool, error) {
	defer metrics.ObserveDBQuery("carts.remove", time.Now())

	res := conn(ctx, r.db).
		Where("user_id = ? AND menu_item_id = ?", userID, itemID).
		Delete(&models.CartEntry{})
	if res.Error != nil {
		return false, fmt.Errorf("carts: remove: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormCarts) Entries(ctx context.Context, userID uint) ([]models.CartEntry, error) {
	defer metrics.ObserveDBQuery("carts.entries", time.Now())

	var entries []models.CartEntry
	if err := conn(ctx, r.db).Where("user_id = ?", userID).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("carts: entries: %w", err)
	}
	return entries, nil
}

func (r *GormCarts) Clear(ctx context.Context, userID uint) error {
	defer metrics.ObserveDBQuery("carts.clear", time.Now())

	if err := conn(ctx, r.db).Where("user_id = ?", userID).Delete(&models.CartEntry{}).Error; err != nil {
		return fmt.Errorf("carts: clear: %w", err)
	}
	return nil
}

func (r *GormCarts) Take(ctx context.Context, userID uint) ([]models.CartEntry, error) {
	var entries []models.CartEntry
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		inner := context.WithValue(ctx, txKey{}, tx)
		var err error
		if entries, err = r.Entries(inner, userID); err != nil {
			return err
		}
		return r.Clear(inner, userID)
	})
	return entries, err
}

// ─── Orders ──────────────────────────────────────────────────────────────────

type GormOrders struct {
	db *gorm.DB
}

func (r *GormOrders) Create(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveDBQuery("orders.create", time.Now())

	o.ID = 0
	if err := conn(ctx, r.db).Create(o).Error; err != nil {
		return fmt.Errorf("orders: create: %w", err)
	}
	return nil
}

func (r *GormOrders) ForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("orders.for_user", time.Now())

	var orders []models.Order
	err := conn(ctx, r.db).Where("user_id = ?", userID).
		Order("order_date DESC, id DESC").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("orders: for user: %w", err)
	}
	return orders, nil
}

func (r *GormOrders) All(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("orders.all", time.Now())

	var orders []models.Order
	if err := conn(ctx, r.db).Order("order_date DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("orders: all: %w", err)
	}
	return orders, nil
}

func (r *GormOrders) UpdateStatus(ctx context.Context, id uint, status string) (bool, error) {
	defer metrics.ObserveDBQuery("orders.update_status", time.Now())

	res := conn(ctx, r.db).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return false, fmt.Errorf("orders: update status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
