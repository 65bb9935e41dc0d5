package model

import "time"

const ChatMessageTableName = "chat_messages"

// ChatMessage 项目聊天消息，只追加不修改
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"not null;index:idx_chat_project_time,priority:1" json:"project_id"`
	SenderID  int64     `gorm:"not null;index" json:"sender_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"not null;index:idx_chat_project_time,priority:2" json:"timestamp"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (ChatMessage) TableName() string {
	return ChatMessageTableName
}
