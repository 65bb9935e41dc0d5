package dto

import "time"

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"required"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

// UpdateProjectRequest 更新项目请求，未传字段保持不变
type UpdateProjectRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description" binding:"omitempty,min=1"`
	Deadline    *time.Time `json:"deadline"`
}

// AddProjectMemberRequest 添加项目成员，user_id 与 email 二选一
type AddProjectMemberRequest struct {
	UserID int64  `json:"user_id" binding:"required_without=Email,omitempty,min=1"`
	Email  string `json:"email" binding:"required_without=UserID,omitempty,email"`
	Role   string `json:"role" binding:"omitempty,oneof=member manager"`
}

// ProjectMemberResponse 项目成员
type ProjectMemberResponse struct {
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID          int64                    `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Deadline    time.Time                `json:"deadline"`
	CreatedBy   int64                    `json:"created_by"`
	Creator     *UserBrief               `json:"creator,omitempty"`
	Members     []*ProjectMemberResponse `json:"members"`
	CreatedAt   string                   `json:"created_at"`
	UpdatedAt   string                   `json:"updated_at"`
}

// AdminProjectQuery 管理端项目列表
type AdminProjectQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=active overdue"`
}
