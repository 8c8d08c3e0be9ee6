package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	//在庫数。減るのはチェックアウト時のみ
	StockQuantity int64          `gorm:"not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
	Category      string         `gorm:"type:varchar(50);index" json:"category"`
	ImageURL      string         `gorm:"type:varchar(200)" json:"image_url"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p Product) InStock() bool {
	return p.StockQuantity > 0
}
