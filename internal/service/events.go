package service

import "collabboard/internal/model"

// TaskBroadcaster 任务变更推送到项目房间，REST 与实时通道的任务写操作都会调用
type TaskBroadcaster interface {
	TaskCreated(task *model.Task, actor *model.User)
	TaskUpdated(task *model.Task, actor *model.User)
	TaskDeleted(task *model.Task, actor *model.User)
}

// NotificationPusher 新通知推送到用户的在线连接
type NotificationPusher interface {
	PushNotification(n *model.Notification)
}

type nopBroadcaster struct{}

func (nopBroadcaster) TaskCreated(*model.Task, *model.User) {}
func (nopBroadcaster) TaskUpdated(*model.Task, *model.User) {}
func (nopBroadcaster) TaskDeleted(*model.Task, *model.User) {}

type nopPusher struct{}

func (nopPusher) PushNotification(*model.Notification) {}

// NopBroadcaster 不推送，未启用实时通道时使用
var NopBroadcaster TaskBroadcaster = nopBroadcaster{}

// NopPusher 不推送
var NopPusher NotificationPusher = nopPusher{}
