package model

import "time"

type AuditAction string

const (
	AuditActionUpdateStock       AuditAction = "UPDATE_STOCK"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionCreateProduct     AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct     AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	AuditActionSetUserActive     AuditAction = "SET_USER_ACTIVE"
	AuditActionForceLogout       AuditAction = "FORCE_LOGOUT"
	AuditActionCreateCategory    AuditAction = "CREATE_CATEGORY"
	AuditActionUpdateCategory    AuditAction = "UPDATE_CATEGORY"
	AuditActionDeleteCategory    AuditAction = "DELETE_CATEGORY"
)

type AuditResourceType string

const (
	AuditResourceProduct  AuditResourceType = "product"
	AuditResourceOrder    AuditResourceType = "order"
	AuditResourceUser     AuditResourceType = "user"
	AuditResourceCategory AuditResourceType = "category"
)

// 管理者操作ログ。追記のみ
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`
	//変更前後はJSON文字列
	BeforeJSON string    `gorm:"type:text" json:"before_json"`
	AfterJSON  string    `gorm:"type:text" json:"after_json"`
	CreatedAt  time.Time `gorm:"not null;index" json:"created_at"`
}
