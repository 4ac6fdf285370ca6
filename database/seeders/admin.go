package seeders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/config"
	"github.com/shashiranjanraj/thali/pkg/auth"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin creates the administrator account from ADMIN_EMAIL and
// ADMIN_PASSWORD. Seeded into an empty users table it receives id 1.
func SeedAdmin(ctx context.Context, db *gorm.DB) error {
	email := config.AdminEmail()

	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := auth.HashPassword(config.AdminPassword())
	if err != nil {
		return err
	}
	admin := models.User{Name: "Admin", Email: email, Password: hash, IsAdmin: true}
	return db.WithContext(ctx).Create(&admin).Error
}
