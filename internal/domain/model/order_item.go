package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文時点の商品名・価格を保存。以後商品を読み直さない
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ProductID           int64           `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(100);not null" json:"product_name"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	Price               decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}
