package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"collabboard/internal/dto"
	"collabboard/internal/pkg/config"
	"collabboard/internal/pkg/logger"
	"collabboard/internal/service"
	pkgErrors "collabboard/pkg/errors"
	"collabboard/pkg/utils"
)

const bearerProtocol = "bearer"

// Gateway 实时通道入口：握手认证、事件解码、分发到服务层
type Gateway struct {
	cfg      *config.RealtimeConfig
	registry *Registry
	bus      Bus
	auth     service.AuthService
	chat     service.ChatService
	tasks    service.TaskService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewGateway(
	cfg *config.RealtimeConfig,
	registry *Registry,
	bus Bus,
	auth service.AuthService,
	chat service.ChatService,
	tasks service.TaskService,
	log *zap.Logger,
) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gateway{
		cfg:      cfg,
		registry: registry,
		bus:      bus,
		auth:     auth,
		chat:     chat,
		tasks:    tasks,
		log:      log,
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Subprotocols:    []string{bearerProtocol},
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// Handle gin 路由入口
func (g *Gateway) Handle(c *gin.Context) {
	g.ServeHTTP(c.Writer, c.Request)
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	user, err := g.auth.Authenticate(r.Context(), token)
	if err != nil {
		g.log.Debug("实时握手认证失败", zap.String("remote", r.RemoteAddr), zap.Error(err))
		rejectHandshake(w, err)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已写回错误响应
		g.log.Debug("websocket 升级失败", zap.Error(err))
		return
	}

	conn := newConn(ws, user, g.cfg, g.log)
	g.registry.Register(conn)
	g.log.Info("实时连接建立", logger.ConnFields(conn.ID(), user.ID)...)

	ctx, cancel := context.WithCancel(context.Background())
	go conn.writePump()
	conn.readPump(func(raw []byte) {
		g.Dispatch(ctx, conn, raw)
	})
	cancel()

	rooms := g.registry.Unregister(conn)
	g.log.Info("实时连接断开", append(logger.ConnFields(conn.ID(), user.ID), zap.Int64s("rooms", rooms))...)
}

// Dispatch 处理一条入站消息，任何失败都以 error 事件回给发起连接
func (g *Gateway) Dispatch(ctx context.Context, s Session, raw []byte) {
	var env Envelope
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("实时事件处理异常",
				zap.String("event", env.Event),
				zap.String("conn_id", s.ID()),
				zap.Any("panic", r),
				zap.Stack("stack"))
			g.replyError(s, env.Event, pkgErrors.ErrInternalError)
		}
	}()

	if err := json.Unmarshal(raw, &env); err != nil {
		g.replyError(s, "", pkgErrors.New(pkgErrors.CodeBadRequest, "invalid message format"))
		return
	}

	ev, err := Decode(&env)
	if err != nil {
		g.replyError(s, env.Event, pkgErrors.New(pkgErrors.CodeBadRequest, err.Error()))
		return
	}

	switch e := ev.(type) {
	case *JoinRoom:
		err = g.joinRoom(ctx, s, e)
	case *LeaveRoom:
		g.registry.Leave(e.ProjectID.Int64(), s)
	case *SendMessage:
		err = g.sendMessage(ctx, s, e)
	case *CreateTask:
		_, err = g.tasks.Create(ctx, s.User(), &dto.CreateTaskRequest{
			Title:       e.Title,
			Description: e.Description,
			AssignedTo:  e.AssignedTo.Int64(),
			ProjectID:   e.ProjectID.Int64(),
		})
	case *UpdateTask:
		req := &dto.UpdateTaskRequest{
			Title:       e.NewTitle,
			Description: e.NewDescription,
			Status:      e.NewStatus,
		}
		if e.NewAssignedTo != nil {
			assignee := e.NewAssignedTo.Int64()
			req.AssignedTo = &assignee
		}
		_, err = g.tasks.Update(ctx, s.User(), e.TaskID.Int64(), req)
	case *DeleteTask:
		err = g.tasks.Delete(ctx, s.User(), e.TaskID.Int64())
	default:
		err = fmt.Errorf("unhandled event: %s", env.Event)
	}

	if err != nil {
		g.log.Debug("实时事件失败",
			zap.String("event", env.Event),
			zap.String("conn_id", s.ID()),
			zap.Error(err))
		g.replyError(s, env.Event, err)
	}
}

// joinRoom 先校验权限并读取历史，成功后才加入房间
func (g *Gateway) joinRoom(ctx context.Context, s Session, e *JoinRoom) error {
	projectID := e.ProjectID.Int64()
	history, err := g.chat.Recent(ctx, s.UserID(), projectID, g.cfg.HistoryLimit)
	if err != nil {
		return err
	}

	g.registry.Join(projectID, s)
	if history == nil {
		history = []*dto.ChatMessageResponse{}
	}
	g.reply(s, EventRecentMessages, history)
	return nil
}

func (g *Gateway) sendMessage(ctx context.Context, s Session, e *SendMessage) error {
	msg, err := g.chat.Send(ctx, s.User(), e.ProjectID.Int64(), e.Message)
	if err != nil {
		return err
	}
	if err := g.bus.Publish(ctx, msg.ProjectID, EventNewMessage, msg); err != nil {
		g.log.Error("聊天消息推送失败", zap.Int64("message_id", msg.ID), zap.Error(err))
		return pkgErrors.Wrap(pkgErrors.CodeInternalError, "消息已保存但推送失败", err)
	}
	return nil
}

func (g *Gateway) reply(s Session, event string, payload interface{}) {
	frame, err := Encode(event, payload)
	if err != nil {
		g.log.Error("编码实时消息失败", zap.String("event", event), zap.Error(err))
		return
	}
	if !s.Send(frame) {
		g.log.Warn("实时回复丢弃", zap.String("event", event), zap.String("conn_id", s.ID()))
	}
}

func (g *Gateway) replyError(s Session, event string, err error) {
	g.reply(s, EventError, &ErrorPayload{
		Message: pkgErrors.MessageOf(err),
		Code:    pkgErrors.CodeOf(err),
		Event:   event,
	})
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range g.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// tokenFromRequest 依次从 query、Authorization 头、Sec-WebSocket-Protocol 取 Token
func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// 浏览器无法设置握手头，约定 Sec-WebSocket-Protocol: bearer, <token>
	protocols := websocket.Subprotocols(r)
	if len(protocols) >= 2 && strings.EqualFold(protocols[0], bearerProtocol) {
		return protocols[1]
	}
	return ""
}

func rejectHandshake(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(utils.Response{
		Code:    pkgErrors.CodeUnauthorized,
		Message: pkgErrors.MessageOf(err),
	})
}
