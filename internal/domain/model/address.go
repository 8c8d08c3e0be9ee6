package model

import (
	"strings"
	"time"
)

// 保存済みの配送先。チェックアウト時にaddress_idで指定できる
type Address struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64  `gorm:"not null;index" json:"user_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	Phone      string `gorm:"type:varchar(20)" json:"phone"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`
	//都道府県・州
	Region    string    `gorm:"type:varchar(100);not null" json:"region"`
	City      string    `gorm:"type:varchar(100);not null" json:"city"`
	Line1     string    `gorm:"type:varchar(255);not null" json:"line1"`
	Line2     string    `gorm:"type:varchar(255)" json:"line2"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// 注文のshipping_addressに入れる1行表記
func (a Address) Formatted() string {
	parts := []string{a.Line1}
	if strings.TrimSpace(a.Line2) != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, a.City, a.Region, a.PostalCode)
	return strings.Join(parts, ", ")
}
