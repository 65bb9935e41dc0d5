package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"collabboard/internal/model"
	"collabboard/internal/pkg/config"
	"collabboard/internal/pkg/logger"
)

// Session 带身份的连接，网关的事件处理只依赖这个接口
type Session interface {
	Client
	User() *model.User
}

// Conn 一个 websocket 连接。send 通道从不关闭，关闭信号走 done
type Conn struct {
	id   string
	user *model.User
	ws   *websocket.Conn
	cfg  *config.RealtimeConfig
	log  *zap.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newConn(ws *websocket.Conn, user *model.User, cfg *config.RealtimeConfig, log *zap.Logger) *Conn {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 64
	}
	id := uuid.NewString()
	return &Conn{
		id:   id,
		user: user,
		ws:   ws,
		cfg:  cfg,
		log:  log.With(logger.ConnFields(id, user.ID)...),
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *Conn) ID() string        { return c.id }
func (c *Conn) UserID() int64     { return c.user.ID }
func (c *Conn) User() *model.User { return c.user }

func (c *Conn) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Close 可重复调用
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(c.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait()))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("写入失败，关闭连接", zap.Error(err))
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait()))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.writeWait()))
			return
		}
	}
}

// readPump 顺序处理入站消息，返回即表示连接已断开
func (c *Conn) readPump(handle func(raw []byte)) {
	defer c.Close()

	if c.cfg.MaxMessageSize > 0 {
		c.ws.SetReadLimit(c.cfg.MaxMessageSize)
	}
	_ = c.ws.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		msgType, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("连接异常断开", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		handle(raw)
	}
}

func (c *Conn) writeWait() time.Duration {
	if c.cfg.WriteWait > 0 {
		return c.cfg.WriteWait
	}
	return 10 * time.Second
}

func (c *Conn) pongWait() time.Duration {
	if c.cfg.PongWait > 0 {
		return c.cfg.PongWait
	}
	return 60 * time.Second
}

func (c *Conn) pingPeriod() time.Duration {
	if c.cfg.PingPeriod > 0 && c.cfg.PingPeriod < c.pongWait() {
		return c.cfg.PingPeriod
	}
	return c.pongWait() * 9 / 10
}
