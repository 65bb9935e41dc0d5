package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"collabboard/internal/adapter/notification"
	"collabboard/internal/adapter/storage"
	"collabboard/internal/model"
	"collabboard/internal/pkg/config"
	"collabboard/internal/repository/memory"
	"collabboard/pkg/constants"
)

type taskEvent struct {
	kind  string
	task  *model.Task
	actor *model.User
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []taskEvent
}

func (b *recordingBroadcaster) add(kind string, task *model.Task, actor *model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, taskEvent{kind: kind, task: task, actor: actor})
}

func (b *recordingBroadcaster) TaskCreated(t *model.Task, a *model.User) { b.add("created", t, a) }
func (b *recordingBroadcaster) TaskUpdated(t *model.Task, a *model.User) { b.add("updated", t, a) }
func (b *recordingBroadcaster) TaskDeleted(t *model.Task, a *model.User) { b.add("deleted", t, a) }

func (b *recordingBroadcaster) kinds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.kind
	}
	return out
}

type recordingPusher struct {
	mu     sync.Mutex
	pushed []*model.Notification
}

func (p *recordingPusher) PushNotification(n *model.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, n)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg *notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

// fixture Alice 创建 P1，Bob 是 P1 的普通成员，Carol 不在项目中
type fixture struct {
	ctx   context.Context
	store *memory.Store

	alice, bob, carol *model.User
	p1                *model.Project

	broadcaster *recordingBroadcaster
	pusher      *recordingPusher
	notifier    *recordingNotifier
	blobs       *storage.MockStore

	authz         AuthorizationService
	notifications NotificationService
	projects      ProjectService
	tasks         TaskService
	chat          ChatService
	files         FileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:         context.Background(),
		store:       memory.NewStore(),
		broadcaster: &recordingBroadcaster{},
		pusher:      &recordingPusher{},
		notifier:    &recordingNotifier{},
		blobs:       storage.NewMockStore(),
	}
	s := f.store

	f.alice = s.SeedUser(&model.User{Name: "Alice", Email: "alice@example.com", Role: constants.RoleMember})
	f.bob = s.SeedUser(&model.User{Name: "Bob", Email: "bob@example.com", Role: constants.RoleMember})
	f.carol = s.SeedUser(&model.User{Name: "Carol", Email: "carol@example.com", Role: constants.RoleMember})

	p1 := model.NewProject("P1", "first project", time.Now().Add(10*24*time.Hour), f.alice.ID)
	p1.AddMember(f.bob.ID, constants.ProjectRoleMember)
	f.p1 = s.SeedProject(p1)

	f.authz = NewAuthorizationService(s.Projects())
	f.notifications = NewNotificationService(s.Notifications(), s.Users(), f.notifier, f.pusher, nil)
	f.projects = NewProjectService(s.Projects(), s.Tasks(), s.ChatMessages(), s.Files(), s.Users(), s,
		f.authz, f.notifications, f.blobs, nil)
	f.tasks = NewTaskService(s.Tasks(), s.Projects(), s.Users(), f.authz, f.notifications, f.broadcaster, nil)
	f.chat = NewChatService(s.ChatMessages(), f.authz, 50)
	f.files = NewFileService(&config.StorageConfig{
		MaxFileSize:  1024,
		AllowedTypes: []string{"png", "pdf", "txt"},
	}, s.Files(), f.authz, f.notifications, f.blobs, nil)

	return f
}

// notificationsOf 用户收到的通知，最新的在前
func (f *fixture) notificationsOf(t *testing.T, userID int64) []*model.Notification {
	t.Helper()
	list, _, err := f.store.Notifications().List(f.ctx, userID, 1, 100, false)
	require.NoError(t, err)
	return list
}
