package models

import "time"

// Payment status vocabulary of an order.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Order is owned by the checkout subsystem. The webhook pipeline only ever
// performs a conditional update of Status/PaymentReference; it never creates
// or deletes orders.
type Order struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentReference *string    `gorm:"type:varchar(191);index" json:"payment_reference,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	PaidAt           *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
}
