package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"collabboard/internal/model"
	pkgErrors "collabboard/pkg/errors"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id int64) (*model.Notification, error)
	List(ctx context.Context, userID int64, page, pageSize int, unreadOnly bool) ([]*model.Notification, int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
	// ExistsSince 去重：since 之后是否已给用户发过同类型同关联对象的通知
	ExistsSince(ctx context.Context, userID int64, typ string, relatedID int64, since time.Time) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if err := conn(ctx, r.db).Create(n).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "创建通知失败", err)
	}
	return nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	var n model.Notification
	if err := conn(ctx, r.db).First(&n, id).Error; err != nil {
		return nil, notFoundOr(err, pkgErrors.ErrRecordNotFound, "查询通知失败")
	}
	return &n, nil
}

func (r *notificationRepository) List(ctx context.Context, userID int64, page, pageSize int, unreadOnly bool) ([]*model.Notification, int64, error) {
	var list []*model.Notification
	var total int64

	query := conn(ctx, r.db).Model(&model.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计通知数量失败", err)
	}

	err := query.Order("created_at DESC").Order("id DESC").
		Offset(pageOffset(page, pageSize)).Limit(pageSize).
		Find(&list).Error
	if err != nil {
		return nil, 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询通知列表失败", err)
	}
	return list, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := conn(ctx, r.db).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&total).Error
	if err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计未读通知失败", err)
	}
	return total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	if err := conn(ctx, r.db).Model(&model.Notification{}).Where("id = ?", id).Update("is_read", true).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新通知失败", err)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result := conn(ctx, r.db).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "更新通知失败", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id int64) error {
	if err := conn(ctx, r.db).Delete(&model.Notification{}, id).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除通知失败", err)
	}
	return nil
}

func (r *notificationRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if err := conn(ctx, r.db).Where("user_id = ?", userID).Delete(&model.Notification{}).Error; err != nil {
		return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "删除通知失败", err)
	}
	return nil
}

func (r *notificationRepository) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	result := conn(ctx, r.db).
		Where("is_read = ? AND created_at < ?", true, before).
		Delete(&model.Notification{})
	if result.Error != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "清理通知失败", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *notificationRepository) ExistsSince(ctx context.Context, userID int64, typ string, relatedID int64, since time.Time) (bool, error) {
	var total int64
	err := conn(ctx, r.db).Model(&model.Notification{}).
		Where("user_id = ? AND type = ? AND related_id = ? AND created_at >= ?", userID, typ, relatedID, since).
		Count(&total).Error
	if err != nil {
		return false, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "查询通知失败", err)
	}
	return total > 0, nil
}

func (r *notificationRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := conn(ctx, r.db).Model(&model.Notification{}).Count(&total).Error; err != nil {
		return 0, pkgErrors.Wrap(pkgErrors.CodeDatabaseError, "统计通知数量失败", err)
	}
	return total, nil
}
