package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/pkg/migration"
)

func init() {
	migration.Register("20260101000000_create_users_table", &CreateUsersTable{})
	migration.Register("20260101000001_create_menu_items_table", &CreateMenuItemsTable{})
	migration.Register("20260101000002_create_cart_entries_table", &CreateCartEntriesTable{})
	migration.Register("20260101000003_create_orders_table", &CreateOrdersTable{})
}

// -------- 0001: users --------

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.User{})
}

// -------- 0002: menu_items --------

type CreateMenuItemsTable struct{}

func (m *CreateMenuItemsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.MenuItem{})
}

func (m *CreateMenuItemsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.MenuItem{})
}

// -------- 0003: cart_entries --------

type CreateCartEntriesTable struct{}

func (m *CreateCartEntriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.CartEntry{})
}

func (m *CreateCartEntriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.CartEntry{})
}

// -------- 0004: orders --------

type CreateOrdersTable struct{}

func (m *CreateOrdersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (m *CreateOrdersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Order{})
}
