package model

// AutoMigrateの対象
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Address{},
		&RefreshToken{},
		&InventoryAdjustment{},
		&AuditLog{},
	}
}
