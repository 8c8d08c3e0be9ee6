package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, true
	}
	return "", false
}

// 終端ステータスからは動かない
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// 進行順。cancelledは順序を持たない
func (s OrderStatus) rank() int {
	switch s {
	case OrderStatusPending:
		return 0
	case OrderStatusConfirmed:
		return 1
	case OrderStatusShipped:
		return 2
	case OrderStatusDelivered:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether the status may move to next.
// Progress is forward only; cancellation is allowed before shipping.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || s == next {
		return false
	}
	if next == OrderStatusCancelled {
		return s == OrderStatusPending || s == OrderStatusConfirmed
	}
	return next.rank() > s.rank()
}

type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"order_number"`
	UserID          *int64          `gorm:"index" json:"user_id,omitempty"`
	CustomerName    string          `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerEmail   string          `gorm:"type:varchar(120);not null;index" json:"customer_email"`
	CustomerPhone   string          `gorm:"type:varchar(20)" json:"customer_phone"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}
