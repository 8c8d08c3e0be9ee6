package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// 会員ユーザー
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName     string `gorm:"type:varchar(50);not null" json:"last_name"`
	Phone        string `gorm:"type:varchar(20)" json:"phone"`
	Address      string `gorm:"type:text" json:"address"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	//パスワード変更・強制ログアウトで+1
	TokenVersion int        `gorm:"not null;default:0" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
