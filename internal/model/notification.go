package model

import "time"

const NotificationTableName = "notifications"

// Notification 站内通知
type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index:idx_notification_user_read,priority:1" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"size:20;not null;default:system" json:"type"`
	RelatedID *int64    `json:"related_id,omitempty"`
	IsRead    bool      `gorm:"not null;default:false;index:idx_notification_user_read,priority:2" json:"is_read"`
	Priority  string    `gorm:"size:20;not null;default:medium" json:"priority"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return NotificationTableName
}
