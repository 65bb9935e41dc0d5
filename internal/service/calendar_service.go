package service

import (
	"context"
	"fmt"
	"sort"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/repository"
	pkgErrors "collabboard/pkg/errors"
)

type CalendarService interface {
	// Calendar 用户参与项目的截止日期及指派给用户的任务，按截止时间升序；只能查看自己的日历
	Calendar(ctx context.Context, actorID, userID int64) (*dto.CalendarResponse, error)
}

type calendarService struct {
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
}

func NewCalendarService(projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) CalendarService {
	return &calendarService{projectRepo: projectRepo, taskRepo: taskRepo}
}

func (s *calendarService) Calendar(ctx context.Context, actorID, userID int64) (*dto.CalendarResponse, error) {
	if actorID != userID {
		return nil, pkgErrors.New(pkgErrors.CodeForbidden, "只能查看自己的日历")
	}

	projects, err := s.projectRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]*dto.CalendarEntry, 0, len(projects)+len(tasks))
	for _, p := range projects {
		entries = append(entries, &dto.CalendarEntry{
			ID:           fmt.Sprintf("project-%d", p.ID),
			Type:         "project",
			Title:        p.Title,
			Deadline:     p.Deadline,
			ProjectID:    p.ID,
			ProjectTitle: p.Title,
			CreatedAt:    p.CreatedAt,
		})
	}

	taskCount := 0
	for _, t := range tasks {
		// 项目已删除的任务不展示
		if t.Project == nil {
			continue
		}
		entries = append(entries, taskEntry(t))
		taskCount++
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Deadline.Before(entries[j].Deadline)
	})

	return &dto.CalendarResponse{
		Entries:       entries,
		TotalProjects: len(projects),
		TotalTasks:    taskCount,
	}, nil
}

// taskEntry 任务没有独立截止时间，使用所属项目的截止时间
func taskEntry(t *model.Task) *dto.CalendarEntry {
	title := t.Title
	return &dto.CalendarEntry{
		ID:           fmt.Sprintf("task-%d", t.ID),
		Type:         "task",
		Title:        t.Title,
		TaskTitle:    &title,
		Deadline:     t.Project.Deadline,
		ProjectID:    t.ProjectID,
		ProjectTitle: t.Project.Title,
		CreatedAt:    t.CreatedAt,
	}
}
