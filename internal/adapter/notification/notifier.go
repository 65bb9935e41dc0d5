package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"collabboard/internal/pkg/config"
)

// Message 外发通知消息
type Message struct {
	NotificationID int64     `json:"notification_id"`
	UserID         int64     `json:"user_id"`
	Type           string    `json:"type"`     // project, task, message, file, system
	Priority       string    `json:"priority"` // low, medium, high, urgent
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	RelatedID      *int64    `json:"related_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Notifier 通知器接口
type Notifier interface {
	// Send 发送通知
	Send(ctx context.Context, msg *Message) error
}

// New 按配置组装通知器，返回的 closer 用于释放连接
func New(cfg *config.NotificationConfig, logger *zap.Logger) (Notifier, func() error, error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		return NewLogNotifier(logger), noop, nil
	}

	var notifiers []Notifier
	var closers []func() error
	for _, provider := range cfg.Providers {
		switch provider {
		case "log":
			notifiers = append(notifiers, NewLogNotifier(logger))
		case "lark":
			notifiers = append(notifiers, NewLarkNotifier(cfg.LarkWebhook, true, logger))
		case "amqp":
			n, err := NewAMQPNotifier(cfg.AMQP, logger)
			if err != nil {
				for _, c := range closers {
					_ = c()
				}
				return nil, noop, err
			}
			notifiers = append(notifiers, n)
			closers = append(closers, n.Close)
		default:
			return nil, noop, fmt.Errorf("不支持的通知渠道: %s", provider)
		}
	}

	closeAll := func() error {
		var lastErr error
		for _, c := range closers {
			if err := c(); err != nil {
				lastErr = err
			}
		}
		return lastErr
	}

	if len(notifiers) == 1 {
		return notifiers[0], closeAll, nil
	}
	return NewMultiNotifier(logger, notifiers...), closeAll, nil
}

// ============= 多通知器 =============

// MultiNotifier 多通知器(支持同时发送到多个渠道)
type MultiNotifier struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewMultiNotifier 创建多通知器
func NewMultiNotifier(logger *zap.Logger, notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		notifiers: notifiers,
		logger:    logger,
	}
}

// Send 发送到所有通知器，单个渠道失败不影响其它渠道
func (m *MultiNotifier) Send(ctx context.Context, msg *Message) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, msg); err != nil {
			m.logger.Error("发送通知失败", zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// ============= 日志通知器(仅记录日志,不发送实际通知) =============

// LogNotifier 日志通知器
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 创建日志通知器
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

// Send 记录通知到日志
func (n *LogNotifier) Send(_ context.Context, msg *Message) error {
	n.logger.Info("📢 通知",
		zap.Int64("user_id", msg.UserID),
		zap.String("type", msg.Type),
		zap.String("priority", msg.Priority),
		zap.String("content", msg.Content))
	return nil
}
