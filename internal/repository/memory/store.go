// Package memory 提供仓储接口的内存实现，用于单元测试和本地联调
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"collabboard/internal/model"
	"collabboard/internal/repository"
)

// Store 所有表共用一把锁，返回给调用方的都是副本
type Store struct {
	mu sync.RWMutex

	seq           int64
	users         map[int64]*model.User
	projects      map[int64]*model.Project
	tasks         map[int64]*model.Task
	messages      []*model.ChatMessage
	files         map[int64]*model.File
	notifications map[int64]*model.Notification

	// 测试注入错误：先放行 FailAfter 次写入，之后的写入都返回 FailWrites
	FailWrites error
	FailAfter  int
}

func NewStore() *Store {
	return &Store{
		users:         make(map[int64]*model.User),
		projects:      make(map[int64]*model.Project),
		tasks:         make(map[int64]*model.Task),
		files:         make(map[int64]*model.File),
		notifications: make(map[int64]*model.Notification),
	}
}

func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

func (s *Store) Projects() repository.ProjectRepository { return &projectRepo{s} }

func (s *Store) Tasks() repository.TaskRepository { return &taskRepo{s} }

func (s *Store) ChatMessages() repository.ChatMessageRepository { return &chatRepo{s} }

func (s *Store) Files() repository.FileRepository { return &fileRepo{s} }

func (s *Store) Notifications() repository.NotificationRepository { return &notificationRepo{s} }

var _ repository.Transactor = (*Store)(nil)

// writeErr 调用方需持有写锁
func (s *Store) writeErr() error {
	if s.FailWrites == nil {
		return nil
	}
	if s.FailAfter > 0 {
		s.FailAfter--
		return nil
	}
	return s.FailWrites
}

type snapshot struct {
	seq           int64
	users         map[int64]*model.User
	projects      map[int64]*model.Project
	tasks         map[int64]*model.Task
	messages      []*model.ChatMessage
	files         map[int64]*model.File
	notifications map[int64]*model.Notification
}

// Transaction fn 失败时整体回滚到执行前的快照
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &snapshot{
		seq:      s.seq,
		users:    lo.MapValues(s.users, func(u *model.User, _ int64) *model.User { return copyUser(u) }),
		projects: lo.MapValues(s.projects, func(p *model.Project, _ int64) *model.Project { return copyProject(p) }),
		tasks: lo.MapValues(s.tasks, func(t *model.Task, _ int64) *model.Task {
			c := *t
			return &c
		}),
		messages: lo.Map(s.messages, func(m *model.ChatMessage, _ int) *model.ChatMessage {
			c := *m
			return &c
		}),
		files: lo.MapValues(s.files, func(f *model.File, _ int64) *model.File {
			c := *f
			return &c
		}),
		notifications: lo.MapValues(s.notifications, func(n *model.Notification, _ int64) *model.Notification {
			c := *n
			return &c
		}),
	}
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = snap.seq
	s.users = snap.users
	s.projects = snap.projects
	s.tasks = snap.tasks
	s.messages = snap.messages
	s.files = snap.files
	s.notifications = snap.notifications
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) touch(b *model.BaseModel) {
	now := time.Now()
	if b.ID == 0 {
		b.ID = s.nextID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// newestFirst 按创建时间倒序，时间相同按ID倒序
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}

func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if pageSize <= 0 || start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func copyUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func copyProject(p *model.Project) *model.Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Members = append(c.Members[:0:0], p.Members...)
	c.Creator = nil
	return &c
}

// SeedUser 直接写入用户，测试用
func (s *Store) SeedUser(u *model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(&u.BaseModel)
	if u.Role == "" {
		u.Role = "member"
	}
	s.users[u.ID] = copyUser(u)
	return u
}

// SeedProject 直接写入项目，测试用
func (s *Store) SeedProject(p *model.Project) *model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(&p.BaseModel)
	s.projects[p.ID] = copyProject(p)
	return p
}

// MessageCount 项目聊天消息数，测试用
func (s *Store) MessageCount(projectID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if m.ProjectID == projectID {
			n++
		}
	}
	return n
}
