package model

import (
	"time"

	"collabboard/pkg/constants"
)

const UserTableName = "users"

// User 用户模型，同时作为REST与实时通道的身份
type User struct {
	BaseModel
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:191;not null;uniqueIndex" json:"email"`
	Password     string     `gorm:"size:255" json:"-"` // 不返回到前端；LDAP 用户可为空字符串
	Role         string     `gorm:"size:20;not null;default:member;index" json:"role"`
	AuthProvider string     `gorm:"size:20;not null;default:local" json:"auth_provider"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return UserTableName
}

// IsAdmin 是否系统管理员
func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}
