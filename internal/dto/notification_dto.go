package dto

import "time"

// CreateNotificationRequest 创建通知请求
type CreateNotificationRequest struct {
	UserID    int64  `json:"user_id" binding:"required,min=1"`
	Message   string `json:"message" binding:"required"`
	Type      string `json:"type" binding:"omitempty,oneof=project task message file system"`
	RelatedID *int64 `json:"related_id"`
	Priority  string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

// NotificationListQuery 通知列表查询
type NotificationListQuery struct {
	PageQuery
	UnreadOnly bool `form:"unreadOnly"`
}

// NotificationResponse 通知，REST 与实时 notification 事件共用
type NotificationResponse struct {
	ID        int64     `json:"_id"`
	UserID    int64     `json:"userId"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	RelatedID *int64    `json:"relatedId,omitempty"`
	Priority  string    `json:"priority"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationListResponse 通知列表
type NotificationListResponse struct {
	Items       []*NotificationResponse `json:"items"`
	Total       int64                   `json:"total"`
	Page        int                     `json:"page"`
	PageSize    int                     `json:"page_size"`
	Pages       int                     `json:"pages"`
	UnreadCount int64                   `json:"unread_count"`
}
