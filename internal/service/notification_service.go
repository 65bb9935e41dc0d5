package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"collabboard/internal/adapter/notification"
	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/repository"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

type NotificationService interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)
	// Notify 业务副作用产生的通知，失败只记日志
	Notify(ctx context.Context, n *model.Notification)
	List(ctx context.Context, actorID, userID int64, query *dto.NotificationListQuery) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, actorID, id int64) (*dto.NotificationResponse, error)
	MarkAllRead(ctx context.Context, actorID, userID int64) (int64, error)
	Delete(ctx context.Context, actorID, id int64) error
	// PurgeRead 清理指定时间之前的已读通知
	PurgeRead(ctx context.Context, before time.Time) (int64, error)
}

type notificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	notifier notification.Notifier
	pusher   NotificationPusher
	log      *zap.Logger
}

func NewNotificationService(
	repo repository.NotificationRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
	pusher NotificationPusher,
	log *zap.Logger,
) NotificationService {
	if pusher == nil {
		pusher = NopPusher
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &notificationService{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
		pusher:   pusher,
		log:      log,
	}
}

var notificationTitles = map[string]string{
	constants.NotificationTypeProject: "项目通知",
	constants.NotificationTypeTask:    "任务通知",
	constants.NotificationTypeMessage: "消息通知",
	constants.NotificationTypeFile:    "文件通知",
	constants.NotificationTypeSystem:  "系统通知",
}

func (s *notificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "通知内容不能为空")
	}

	// 目标用户必须存在
	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	n := &model.Notification{
		UserID:    req.UserID,
		Message:   message,
		Type:      req.Type,
		RelatedID: req.RelatedID,
		Priority:  req.Priority,
	}
	if err := s.create(ctx, n); err != nil {
		return nil, err
	}
	return ToNotificationResponse(n), nil
}

func (s *notificationService) create(ctx context.Context, n *model.Notification) error {
	if n.Type == "" {
		n.Type = constants.NotificationTypeSystem
	}
	if n.Priority == "" {
		n.Priority = constants.PriorityMedium
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}

	s.pusher.PushNotification(n)

	if s.notifier != nil {
		msg := &notification.Message{
			NotificationID: n.ID,
			UserID:         n.UserID,
			Type:           n.Type,
			Priority:       n.Priority,
			Title:          notificationTitles[n.Type],
			Content:        n.Message,
			RelatedID:      n.RelatedID,
			Timestamp:      n.CreatedAt,
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.log.Warn("外发通知失败", zap.Int64("notification_id", n.ID), zap.Error(err))
		}
	}
	return nil
}

func (s *notificationService) Notify(ctx context.Context, n *model.Notification) {
	if err := s.create(ctx, n); err != nil {
		s.log.Error("创建通知失败",
			zap.Int64("user_id", n.UserID),
			zap.String("type", n.Type),
			zap.Error(err))
	}
}

func (s *notificationService) List(ctx context.Context, actorID, userID int64, query *dto.NotificationListQuery) (*dto.NotificationListResponse, error) {
	if actorID != userID {
		return nil, pkgErrors.ErrNotificationAccess
	}

	page, pageSize := query.GetPage(), query.GetPageSize()
	items, total, err := s.repo.List(ctx, userID, page, pageSize, query.UnreadOnly)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.NotificationResponse, len(items))
	for i, n := range items {
		resp[i] = ToNotificationResponse(n)
	}

	pageResp := dto.NewPageResponse(resp, total, page, pageSize)
	return &dto.NotificationListResponse{
		Items:       resp,
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
		Pages:       pageResp.Pages,
		UnreadCount: unread,
	}, nil
}

// owned 查询通知并校验归属
func (s *notificationService) owned(ctx context.Context, actorID, id int64) (*model.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != actorID {
		return nil, pkgErrors.ErrNotificationAccess
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actorID, id int64) (*dto.NotificationResponse, error) {
	n, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if !n.IsRead {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			return nil, err
		}
		n.IsRead = true
	}
	return ToNotificationResponse(n), nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actorID, userID int64) (int64, error) {
	if actorID != userID {
		return 0, pkgErrors.ErrNotificationAccess
	}
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *notificationService) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, before)
}
