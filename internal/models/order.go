package models

import "time"

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order represents a customer order. A user owns zero or more orders.
type Order struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNo   string     `json:"order_no" gorm:"uniqueIndex;type:varchar(32);not null"`
	UserID    string     `json:"user_id" gorm:"index;type:varchar(36);not null"`
	User      *User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Subject   string     `json:"subject" gorm:"type:varchar(200)"`
	Amount    float64    `json:"amount" gorm:"not null"`
	Status    string     `json:"status" gorm:"type:varchar(20);index;not null;default:pending"`
	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// IsPaid reports whether the order has already been paid.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// IsPending reports whether the order can still be paid or cancelled.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}
