package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"

	"collabboard/internal/model"
	"collabboard/internal/service"
)

const publishTimeout = 5 * time.Second

// Broadcaster 把服务层的任务和通知事件转成房间推送
type Broadcaster struct {
	bus Bus
	log *zap.Logger
}

var (
	_ service.TaskBroadcaster    = (*Broadcaster)(nil)
	_ service.NotificationPusher = (*Broadcaster)(nil)
)

func NewBroadcaster(bus Bus, log *zap.Logger) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{bus: bus, log: log}
}

func (b *Broadcaster) TaskCreated(task *model.Task, actor *model.User) {
	b.publish(task.ProjectID, EventTaskCreated, &TaskCreatedPayload{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		NewTask:   taskPayload(task),
		CreatedBy: userRef(actor),
	})
}

func (b *Broadcaster) TaskUpdated(task *model.Task, actor *model.User) {
	b.publish(task.ProjectID, EventTaskUpdated, &TaskUpdatedPayload{
		TaskID:      task.ID,
		ProjectID:   task.ProjectID,
		UpdatedTask: taskPayload(task),
		UpdatedBy:   userRef(actor),
	})
}

func (b *Broadcaster) TaskDeleted(task *model.Task, actor *model.User) {
	b.publish(task.ProjectID, EventTaskDeleted, &TaskDeletedPayload{
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		DeletedBy: userRef(actor),
	})
}

func (b *Broadcaster) PushNotification(n *model.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.bus.PublishUser(ctx, n.UserID, EventNotification, service.ToNotificationResponse(n)); err != nil {
		b.log.Warn("推送通知失败", zap.Int64("user_id", n.UserID), zap.Error(err))
	}
}

func (b *Broadcaster) publish(projectID int64, event string, payload interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.bus.Publish(ctx, projectID, event, payload); err != nil {
		b.log.Warn("房间推送失败",
			zap.String("event", event),
			zap.Int64("project_id", projectID),
			zap.Error(err))
	}
}
