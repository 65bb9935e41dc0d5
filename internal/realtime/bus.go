package realtime

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"collabboard/internal/pkg/config"
)

// Bus 房间事件的分发通道。单实例用 LocalBus，多实例部署用 RedisBus 在节点间转发
type Bus interface {
	Publish(ctx context.Context, projectID int64, event string, payload interface{}) error
	PublishUser(ctx context.Context, userID int64, event string, payload interface{}) error
	// Run 阻塞直到 ctx 结束
	Run(ctx context.Context) error
	Close() error
}

// NewBus 按配置选择实现
func NewBus(cfg *config.RealtimeConfig, registry *Registry, client *goredis.Client, log *zap.Logger) (Bus, error) {
	switch cfg.Bus {
	case "", "local":
		return NewLocalBus(registry), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("realtime.bus=redis 需要启用 redis")
		}
		return NewRedisBus(client, cfg.Channel, registry, log), nil
	default:
		return nil, fmt.Errorf("不支持的实时总线: %s", cfg.Bus)
	}
}

// LocalBus 直接投递到本进程的房间
type LocalBus struct {
	registry *Registry
}

func NewLocalBus(registry *Registry) *LocalBus {
	return &LocalBus{registry: registry}
}

func (b *LocalBus) Publish(_ context.Context, projectID int64, event string, payload interface{}) error {
	return b.registry.Broadcast(projectID, event, payload)
}

func (b *LocalBus) PublishUser(_ context.Context, userID int64, event string, payload interface{}) error {
	return b.registry.SendToUser(userID, event, payload)
}

func (b *LocalBus) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (b *LocalBus) Close() error {
	return nil
}
