package dto

import "time"

// UserResponse 用户响应
type UserResponse struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	AuthProvider string     `json:"auth_provider"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// AdminUserQuery 管理端用户列表
type AdminUserQuery struct {
	PageQuery
	Role string `form:"role" binding:"omitempty,oneof=member admin"`
}

// UpdateUserRoleRequest 更新用户角色
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=member admin"`
}
