package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard/internal/model"
	"collabboard/internal/pkg/config"
	"collabboard/internal/repository/memory"
	"collabboard/internal/service"
	"collabboard/pkg/constants"
)

type fixture struct {
	ctx        context.Context
	store      *memory.Store
	alice, bob *model.User
	scheduler  *Scheduler
}

func newFixture(t *testing.T, cfg *config.SchedulerConfig) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{ctx: context.Background(), store: s}
	f.alice = s.SeedUser(&model.User{Name: "Alice", Email: "alice@example.com"})
	f.bob = s.SeedUser(&model.User{Name: "Bob", Email: "bob@example.com"})

	notifications := service.NewNotificationService(s.Notifications(), s.Users(), nil, nil, nil)
	f.scheduler = NewScheduler(cfg, s.Projects(), s.Notifications(), notifications, nil)
	return f
}

func (f *fixture) project(t *testing.T, title string, deadline time.Time, members ...int64) *model.Project {
	t.Helper()
	p := model.NewProject(title, title, deadline, f.alice.ID)
	for _, id := range members {
		p.AddMember(id, constants.ProjectRoleMember)
	}
	return f.store.SeedProject(p)
}

func (f *fixture) inbox(t *testing.T, userID int64) []*model.Notification {
	t.Helper()
	list, _, err := f.store.Notifications().List(f.ctx, userID, 1, 100, false)
	require.NoError(t, err)
	return list
}

func TestRemindDeadlines(t *testing.T) {
	f := newFixture(t, &config.SchedulerConfig{ReminderWindow: 72 * time.Hour})
	now := time.Now()
	soon := f.project(t, "Soon", now.Add(12*time.Hour), f.bob.ID)
	later := f.project(t, "Later", now.Add(50*time.Hour))
	f.project(t, "Far", now.Add(10*24*time.Hour), f.bob.ID)
	f.project(t, "Past", now.Add(-time.Hour), f.bob.ID)

	sent, err := f.scheduler.RemindDeadlines(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	bobInbox := f.inbox(t, f.bob.ID)
	require.Len(t, bobInbox, 1)
	assert.Equal(t, soon.ID, *bobInbox[0].RelatedID)
	assert.Equal(t, constants.PriorityUrgent, bobInbox[0].Priority)
	assert.Equal(t, constants.NotificationTypeProject, bobInbox[0].Type)

	aliceInbox := f.inbox(t, f.alice.ID)
	require.Len(t, aliceInbox, 2)
	byProject := map[int64]string{}
	for _, n := range aliceInbox {
		byProject[*n.RelatedID] = n.Priority
	}
	assert.Equal(t, constants.PriorityUrgent, byProject[soon.ID])
	assert.Equal(t, constants.PriorityHigh, byProject[later.ID])
}

func TestRemindDeadlinesOncePerDay(t *testing.T) {
	f := newFixture(t, &config.SchedulerConfig{})
	f.project(t, "Soon", time.Now().Add(30*time.Hour), f.bob.ID)

	sent, err := f.scheduler.RemindDeadlines(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	sent, err = f.scheduler.RemindDeadlines(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, f.inbox(t, f.bob.ID), 1)
}

func TestReminderMessage(t *testing.T) {
	assert.Equal(t, "项目「P1」今天截止", reminderMessage("P1", 0))
	assert.Equal(t, "项目「P1」将在 2 天后截止", reminderMessage("P1", 2))
}

func TestPurgeNotifications(t *testing.T) {
	f := newFixture(t, &config.SchedulerConfig{NotificationRetention: 24 * time.Hour})
	repo := f.store.Notifications()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Create(f.ctx, &model.Notification{UserID: f.bob.ID, Message: "old read", IsRead: true, CreatedAt: old}))
	require.NoError(t, repo.Create(f.ctx, &model.Notification{UserID: f.bob.ID, Message: "old unread", CreatedAt: old}))
	require.NoError(t, repo.Create(f.ctx, &model.Notification{UserID: f.bob.ID, Message: "fresh read", IsRead: true}))

	deleted, err := f.scheduler.PurgeNotifications(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	left := f.inbox(t, f.bob.ID)
	require.Len(t, left, 2)
	for _, n := range left {
		assert.NotEqual(t, "old read", n.Message)
	}
}

func TestStartRejectsBadCron(t *testing.T) {
	f := newFixture(t, &config.SchedulerConfig{ReminderCron: "not a cron"})
	assert.Error(t, f.scheduler.Start())
}

func TestStartRegistersJobs(t *testing.T) {
	f := newFixture(t, &config.SchedulerConfig{})
	require.NoError(t, f.scheduler.Start())
	defer f.scheduler.Stop()

	assert.Contains(t, f.scheduler.cronSchedules, jobDeadlineReminder)
	assert.Contains(t, f.scheduler.cronSchedules, jobNotificationPurge)
	assert.Len(t, f.scheduler.cron.Entries(), 2)
}
