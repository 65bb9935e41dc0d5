package dto

import "time"

// ChatHistoryQuery 聊天记录查询
type ChatHistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// SenderInfo 消息发送者
type SenderInfo struct {
	ID    int64  `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChatMessageResponse 聊天消息，REST 历史接口与实时事件共用
type ChatMessageResponse struct {
	ID        int64       `json:"_id"`
	ProjectID int64       `json:"projectId"`
	SenderID  int64       `json:"senderId"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	Sender    *SenderInfo `json:"sender"`
}
