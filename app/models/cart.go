package models

// CartEntry is one line of a user's cart. Quantity is always at least 1;
// entries are deleted rather than set to zero.
type CartEntry struct {
	ID         uint `gorm:"primaryKey" json:"-"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"user_id"`
	MenuItemID uint `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"item_id"`
	Quantity   int  `gorm:"not null" json:"quantity"`
}
