package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	scopeRoom = "room"
	scopeUser = "user"
)

// redisEnvelope 节点间转发的消息，frame 是已编码的下行帧
type redisEnvelope struct {
	Scope  string          `json:"scope"`
	Target int64           `json:"target"`
	Frame  json.RawMessage `json:"frame"`
}

// RedisBus 通过 Redis Pub/Sub 把事件扇出到所有节点，每个节点再投递给本地连接
type RedisBus struct {
	client   *goredis.Client
	channel  string
	registry *Registry
	log      *zap.Logger
}

func NewRedisBus(client *goredis.Client, channel string, registry *Registry, log *zap.Logger) *RedisBus {
	if channel == "" {
		channel = "collabboard:rooms"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBus{client: client, channel: channel, registry: registry, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, projectID int64, event string, payload interface{}) error {
	return b.publish(ctx, scopeRoom, projectID, event, payload)
}

func (b *RedisBus) PublishUser(ctx context.Context, userID int64, event string, payload interface{}) error {
	return b.publish(ctx, scopeUser, userID, event, payload)
}

func (b *RedisBus) publish(ctx context.Context, scope string, target int64, event string, payload interface{}) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(redisEnvelope{Scope: scope, Target: target, Frame: frame})
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("发布实时消息失败: %w", err)
	}
	return nil
}

// Run 订阅频道并投递到本地连接
func (b *RedisBus) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("订阅实时频道失败: %w", err)
	}
	b.log.Info("实时总线已订阅", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver([]byte(msg.Payload))
		}
	}
}

func (b *RedisBus) deliver(payload []byte) {
	var env redisEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.log.Warn("无法解析实时消息", zap.Error(err))
		return
	}

	switch env.Scope {
	case scopeRoom:
		b.registry.BroadcastRaw(env.Target, env.Frame, "")
	case scopeUser:
		b.registry.SendRawToUser(env.Target, env.Frame)
	default:
		b.log.Warn("未知的实时消息范围", zap.String("scope", env.Scope))
	}
}

func (b *RedisBus) Close() error {
	return nil
}
