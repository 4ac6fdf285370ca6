package models

import "time"

// StatusPlaced is the status every order starts with.
const StatusPlaced = "Order Placed"

// Statuses are the values the admin page suggests. Any other string is
// still a valid status.
var Statuses = []string{StatusPlaced, "Preparing", "Out for Delivery", "Delivered", "Cancelled"}

// Order is a placed order. Only Status changes after creation.
type Order struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	TotalPrice float64   `gorm:"not null" json:"total_price"`
	Status     string    `gorm:"type:text;not null" json:"status"`
	OrderDate  time.Time `gorm:"not null;index" json:"order_date"`
}

// OrderDetail is an order joined with the account that placed it.
type OrderDetail struct {
	Order
	Name  string `json:"name"`
	Email string `json:"email"`
}
