package seeders

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/thali/app/models"
)

func init() {
	Register("menu", SeedMenu)
}

// Menu is the fixed catalog.
var Menu = []models.MenuItem{
	{ID: 1, Name: "Butter Paneer", Description: "Creamy and rich paneer dish.", Price: 250.00, ImageFile: "img1.jpg"},
	{ID: 2, Name: "Masala Dosa", Description: "Crispy dosa with potato filling.", Price: 150.00, ImageFile: "img2.jpg"},
	{ID: 3, Name: "Chole Bhature", Description: "Spicy chickpeas with fried bread.", Price: 180.00, ImageFile: "img3.jpg"},
	{ID: 4, Name: "Veg Biryani", Description: "Aromatic rice with mixed vegetables.", Price: 220.00, ImageFile: "img4.jpg"},
	{ID: 5, Name: "Pav Bhaji", Description: "Spicy mashed vegetables with soft bread.", Price: 160.00, ImageFile: "img5.jpg"},
	{ID: 6, Name: "Veg Thali", Description: "A complete meal with various dishes.", Price: 300.00, ImageFile: "img6.jpg"},
}

// SeedMenu upserts the catalog rows by id.
func SeedMenu(ctx context.Context, db *gorm.DB) error {
	items := append([]models.MenuItem(nil), Menu...)
	return db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&items).Error
}
