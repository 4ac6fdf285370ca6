package models

// MenuItem is a dish on the fixed menu.
type MenuItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	ImageFile   string  `gorm:"size:255" json:"image"`
}

// ImagePath is where the item's picture lives on a storage disk.
func (m MenuItem) ImagePath() string { return "images/" + m.ImageFile }
