package repository

import (
	"context"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, msg *model.ChatMessage) error
	// Recent 返回最近 limit 条消息，按时间正序
	Recent(ctx context.Context, projectID int64, limit int) ([]*model.ChatMessage, error)
	DeleteByProject(ctx context.Context, projectID int64) error
	DeleteBySender(ctx context.Context, userID int64) error
}

type chatMessageRepository struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

func (r *chatMessageRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	if err := conn(ctx, r.db).Create(msg).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "保存聊天消息失败", err)
	}
	return nil
}

func (r *chatMessageRepository) Recent(ctx context.Context, projectID int64, limit int) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	err := conn(ctx, r.db).Preload("Sender").
		Where("project_id = ?", projectID).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询聊天记录失败", err)
	}

	// 倒序取最近N条后翻转为时间正序
	return lo.Reverse(messages), nil
}

func (r *chatMessageRepository) DeleteByProject(ctx context.Context, projectID int64) error {
	if err := conn(ctx, r.db).Where("project_id = ?", projectID).Delete(&model.ChatMessage{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除聊天记录失败", err)
	}
	return nil
}

func (r *chatMessageRepository) DeleteBySender(ctx context.Context, userID int64) error {
	if err := conn(ctx, r.db).Where("sender_id = ?", userID).Delete(&model.ChatMessage{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除聊天记录失败", err)
	}
	return nil
}
