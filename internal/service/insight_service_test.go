package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

func TestUrgencyLevel(t *testing.T) {
	cases := map[int]string{
		-1: UrgencyOverdue,
		0:  UrgencyCritical,
		3:  UrgencyCritical,
		4:  UrgencyUrgent,
		7:  UrgencyUrgent,
		14: UrgencyModerate,
		15: UrgencyLow,
	}
	for days, want := range cases {
		assert.Equal(t, want, UrgencyLevel(days), "days=%d", days)
	}
}

func TestProjectAnalytics(t *testing.T) {
	f := newFixture(t)

	seed := []struct {
		assignee int64
		status   string
	}{
		{f.bob.ID, constants.TaskStatusDone},
		{f.bob.ID, constants.TaskStatusDone},
		{f.bob.ID, constants.TaskStatusInProgress},
		{f.alice.ID, constants.TaskStatusTodo},
	}
	for _, s := range seed {
		require.NoError(t, f.store.Tasks().Create(f.ctx, &model.Task{
			Title: "t", Description: "d", Status: s.status, AssignedTo: s.assignee, ProjectID: f.p1.ID,
		}))
	}

	svc := NewAnalyticsService(f.store.Tasks(), f.store.Users(), f.authz).(*analyticsService)
	svc.now = func() time.Time { return f.p1.Deadline.Add(-36 * time.Hour) }

	a, err := svc.ProjectAnalytics(f.ctx, f.bob.ID, f.p1.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, a.TotalTasks)
	assert.Equal(t, dto.TaskCounts{Todo: 1, InProgress: 1, Done: 2}, a.TaskCounts)
	assert.Equal(t, 50, a.CompletionPercentage)
	assert.Equal(t, 2, a.AverageTasksPerMember)
	assert.Equal(t, 2, a.DaysRemaining)
	assert.Equal(t, UrgencyCritical, a.UrgencyLevel)
	assert.True(t, a.IsOnTrack)

	require.Len(t, a.WorkloadDistribution, 2)
	assert.Equal(t, "Bob", a.MostActiveMember.UserName)
	assert.Equal(t, 3, a.MostActiveMember.TotalTasks)
	assert.Equal(t, "Alice", a.LeastActiveMember.UserName)

	_, err = svc.ProjectAnalytics(f.ctx, f.carol.ID, f.p1.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrProjectAccess)
}

func TestProjectAnalyticsOverdue(t *testing.T) {
	f := newFixture(t)

	svc := NewAnalyticsService(f.store.Tasks(), f.store.Users(), f.authz).(*analyticsService)
	svc.now = func() time.Time { return f.p1.Deadline.Add(48 * time.Hour) }

	a, err := svc.ProjectAnalytics(f.ctx, f.alice.ID, f.p1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, a.CompletionPercentage)
	assert.Equal(t, -2, a.DaysRemaining)
	assert.Equal(t, UrgencyOverdue, a.UrgencyLevel)
	assert.False(t, a.IsOnTrack)
}

func TestCalendar(t *testing.T) {
	f := newFixture(t)

	later := f.store.SeedProject(model.NewProject("Later", "d", f.p1.Deadline.Add(24*time.Hour), f.bob.ID))
	require.NoError(t, f.store.Tasks().Create(f.ctx, &model.Task{
		Title: "Fix bug", Description: "d", Status: constants.TaskStatusTodo, AssignedTo: f.bob.ID, ProjectID: f.p1.ID,
	}))

	svc := NewCalendarService(f.store.Projects(), f.store.Tasks())

	cal, err := svc.Calendar(f.ctx, f.bob.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, cal.TotalProjects)
	assert.Equal(t, 1, cal.TotalTasks)
	require.Len(t, cal.Entries, 3)

	last := cal.Entries[2]
	assert.Equal(t, "Later", last.Title)
	assert.Equal(t, later.Deadline, last.Deadline)

	var task *dto.CalendarEntry
	for _, e := range cal.Entries {
		if e.Type == "task" {
			task = e
		}
	}
	require.NotNil(t, task)
	assert.Equal(t, "Fix bug", *task.TaskTitle)
	assert.Equal(t, f.p1.Deadline, task.Deadline)
	assert.Equal(t, "P1", task.ProjectTitle)

	_, err = svc.Calendar(f.ctx, f.alice.ID, f.bob.ID)
	assert.Equal(t, pkgErrors.CodeForbidden, pkgErrors.CodeOf(err))
}
