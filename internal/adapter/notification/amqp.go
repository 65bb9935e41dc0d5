package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"collabboard/internal/pkg/config"
)

// AMQPNotifier 将通知发布到 RabbitMQ topic exchange，供邮件/推送等下游消费
type AMQPNotifier struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
	logger     *zap.Logger
	mu         sync.Mutex
}

// NewAMQPNotifier 连接 RabbitMQ 并声明 exchange
func NewAMQPNotifier(cfg config.AMQPConfig, logger *zap.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("打开RabbitMQ通道失败: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("声明exchange失败: %w", err)
	}

	logger.Info("RabbitMQ通知通道已就绪", zap.String("exchange", cfg.Exchange))
	return &AMQPNotifier{
		conn:       conn,
		ch:         ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// routingKeyFor 路由键追加通知类型，如 notification.created.task
func (n *AMQPNotifier) routingKeyFor(msg *Message) string {
	if msg.Type == "" {
		return n.routingKey
	}
	return n.routingKey + "." + msg.Type
}

// Send 以 JSON 发布通知
func (n *AMQPNotifier) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	err = n.ch.PublishWithContext(ctx, n.exchange, n.routingKeyFor(msg), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("发布通知失败: %w", err)
	}
	return nil
}

// Close 关闭通道和连接
func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
