package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"collabboard/internal/model"
	"collabboard/internal/pkg/config"
	"collabboard/internal/pkg/jwt"
	"collabboard/internal/repository/memory"
	"collabboard/internal/service"
	"collabboard/pkg/constants"
)

// fakeSession 记录收到的帧，limit>0 时模拟发送缓冲已满
type fakeSession struct {
	id          string
	user        *model.User
	limit       int
	panicOnUser bool

	mu     sync.Mutex
	frames [][]byte
}

func newSession(id string, user *model.User) *fakeSession {
	return &fakeSession{id: id, user: user}
}

func (s *fakeSession) ID() string    { return s.id }
func (s *fakeSession) UserID() int64 { return s.user.ID }

func (s *fakeSession) User() *model.User {
	if s.panicOnUser {
		panic("boom")
	}
	return s.user
}

func (s *fakeSession) Send(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.limit > 0 && len(s.frames) >= s.limit {
		return false
	}
	s.frames = append(s.frames, frame)
	return true
}

func (s *fakeSession) envelopes(t *testing.T) []Envelope {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Envelope, len(s.frames))
	for i, f := range s.frames {
		require.NoError(t, json.Unmarshal(f, &out[i]))
	}
	return out
}

// events 指定事件的 data，按收到顺序
func (s *fakeSession) events(t *testing.T, name string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	for _, env := range s.envelopes(t) {
		if env.Event == name {
			out = append(out, env.Data)
		}
	}
	return out
}

func (s *fakeSession) lastError(t *testing.T) ErrorPayload {
	t.Helper()
	errs := s.events(t, EventError)
	require.NotEmpty(t, errs, "expected an error event")
	var p ErrorPayload
	require.NoError(t, json.Unmarshal(errs[len(errs)-1], &p))
	return p
}

// gatewayFixture Alice 创建 P1，Bob 是成员，Carol 不在项目中
type gatewayFixture struct {
	ctx   context.Context
	store *memory.Store

	alice, bob, carol *model.User
	p1                *model.Project

	registry *Registry
	tokens   *jwt.Manager
	projects service.ProjectService
	tasks    service.TaskService
	chat     service.ChatService
	gateway  *Gateway
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	f := &gatewayFixture{ctx: context.Background(), store: memory.NewStore()}
	s := f.store

	f.alice = s.SeedUser(&model.User{Name: "Alice", Email: "alice@example.com", Role: constants.RoleMember})
	f.bob = s.SeedUser(&model.User{Name: "Bob", Email: "bob@example.com", Role: constants.RoleMember})
	f.carol = s.SeedUser(&model.User{Name: "Carol", Email: "carol@example.com", Role: constants.RoleMember})

	p1 := model.NewProject("P1", "first project", time.Now().Add(10*24*time.Hour), f.alice.ID)
	p1.AddMember(f.bob.ID, constants.ProjectRoleMember)
	f.p1 = s.SeedProject(p1)

	cfg := &config.RealtimeConfig{
		HistoryLimit:   50,
		SendBuffer:     16,
		MaxMessageSize: 64 * 1024,
		WriteWait:      time.Second,
		PongWait:       5 * time.Second,
		PingPeriod:     4 * time.Second,
	}

	f.registry = NewRegistry(nil)
	bus := NewLocalBus(f.registry)
	broadcaster := NewBroadcaster(bus, nil)

	f.tokens = jwt.NewManager(config.JWTConfig{Secret: "realtime-test", AccessTokenExpire: 3600, RefreshTokenExpire: 7200})
	authSvc := service.NewAuthService(&config.AuthConfig{Local: config.LocalConfig{Enabled: true}}, f.tokens, s.Users(), nil)
	authz := service.NewAuthorizationService(s.Projects())
	notifications := service.NewNotificationService(s.Notifications(), s.Users(), nil, broadcaster, nil)
	f.projects = service.NewProjectService(s.Projects(), s.Tasks(), s.ChatMessages(), s.Files(), s.Users(), s,
		authz, notifications, nil, nil)
	f.tasks = service.NewTaskService(s.Tasks(), s.Projects(), s.Users(), authz, notifications, broadcaster, nil)
	f.chat = service.NewChatService(s.ChatMessages(), authz, cfg.HistoryLimit)
	f.gateway = NewGateway(cfg, f.registry, bus, authSvc, f.chat, f.tasks, nil)

	return f
}

// connect 模拟握手成功后的登记
func (f *gatewayFixture) connect(user *model.User) *fakeSession {
	s := newSession(fmt.Sprintf("conn-%s", user.Name), user)
	f.registry.Register(s)
	return s
}

func (f *gatewayFixture) dispatch(t *testing.T, s Session, event string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"event": event, "data": data})
	require.NoError(t, err)
	f.gateway.Dispatch(f.ctx, s, raw)
}

func (f *gatewayFixture) token(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := f.tokens.GenerateAccessToken(jwt.Identity{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})
	require.NoError(t, err)
	return token
}
