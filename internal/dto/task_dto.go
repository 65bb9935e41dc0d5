package dto

import "time"

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	AssignedTo  int64  `json:"assigned_to" binding:"required,min=1"`
	ProjectID   int64  `json:"project_id" binding:"required,min=1"`
}

// UpdateTaskRequest 更新任务请求，未传字段保持不变
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	Status      *string `json:"status" binding:"omitempty,oneof=todo in-progress done"`
	AssignedTo  *int64  `json:"assigned_to" binding:"omitempty,min=1"`
}

// TaskResponse 任务响应
type TaskResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	AssignedTo   int64      `json:"assigned_to"`
	Assignee     *UserBrief `json:"assignee,omitempty"`
	ProjectID    int64      `json:"project_id"`
	ProjectTitle string     `json:"project_title,omitempty"`
	CreatedBy    int64      `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AdminTaskQuery 管理端任务列表
type AdminTaskQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=todo in-progress done"`
}
