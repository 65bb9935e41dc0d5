package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/repository"
	"collabboard/pkg/constants"
)

// 紧急程度
const (
	UrgencyOverdue  = "overdue"
	UrgencyCritical = "critical"
	UrgencyUrgent   = "urgent"
	UrgencyModerate = "moderate"
	UrgencyLow      = "low"
)

// onTrackCompletion 完成率达到该值视为进度正常
const onTrackCompletion = 70

type AnalyticsService interface {
	ProjectAnalytics(ctx context.Context, userID, projectID int64) (*dto.ProjectAnalytics, error)
}

type analyticsService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	authz    AuthorizationService
	now      func() time.Time
}

func NewAnalyticsService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, authz AuthorizationService) AnalyticsService {
	return &analyticsService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		authz:    authz,
		now:      time.Now,
	}
}

func countByStatus(tasks []*model.Task) dto.TaskCounts {
	var c dto.TaskCounts
	for _, t := range tasks {
		switch t.Status {
		case constants.TaskStatusTodo:
			c.Todo++
		case constants.TaskStatusInProgress:
			c.InProgress++
		case constants.TaskStatusDone:
			c.Done++
		}
	}
	return c
}

// UrgencyLevel 按剩余天数划分紧急程度
func UrgencyLevel(daysRemaining int) string {
	switch {
	case daysRemaining < 0:
		return UrgencyOverdue
	case daysRemaining <= 3:
		return UrgencyCritical
	case daysRemaining <= 7:
		return UrgencyUrgent
	case daysRemaining <= 14:
		return UrgencyModerate
	default:
		return UrgencyLow
	}
}

func (s *analyticsService) ProjectAnalytics(ctx context.Context, userID, projectID int64) (*dto.ProjectAnalytics, error) {
	project, err := s.authz.RequireAccess(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	memberIDs := project.MemberIDs()
	users, err := s.userRepo.FindByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	userMap := lo.KeyBy(users, func(u *model.User) int64 { return u.ID })
	tasksByUser := lo.GroupBy(tasks, func(t *model.Task) int64 { return t.AssignedTo })

	// 只统计项目成员
	workload := make([]*dto.MemberWorkload, 0, len(memberIDs))
	for _, uid := range memberIDs {
		assigned := tasksByUser[uid]
		w := &dto.MemberWorkload{
			UserID:        uid,
			TotalTasks:    len(assigned),
			TasksByStatus: countByStatus(assigned),
		}
		if u, ok := userMap[uid]; ok {
			w.UserName = u.Name
			w.UserEmail = u.Email
		}
		workload = append(workload, w)
	}
	sort.SliceStable(workload, func(i, j int) bool {
		return workload[i].TotalTasks > workload[j].TotalTasks
	})

	counts := countByStatus(tasks)
	completion := 0
	if len(tasks) > 0 {
		completion = int(math.Round(float64(counts.Done) / float64(len(tasks)) * 100))
	}

	average := 0
	if len(memberIDs) > 0 {
		average = int(math.Round(float64(len(tasks)) / float64(len(memberIDs))))
	}

	now := s.now()
	daysRemaining := int(math.Ceil(project.Deadline.Sub(now).Hours() / 24))

	result := &dto.ProjectAnalytics{
		ProjectID:             project.ID,
		ProjectTitle:          project.Title,
		TotalTasks:            len(tasks),
		TaskCounts:            counts,
		CompletionPercentage:  completion,
		WorkloadDistribution:  workload,
		AverageTasksPerMember: average,
		CreatedAt:             project.CreatedAt,
		Deadline:              project.Deadline,
		DaysRemaining:         daysRemaining,
		IsOnTrack:             completion >= onTrackCompletion || project.Deadline.After(now),
		UrgencyLevel:          UrgencyLevel(daysRemaining),
	}
	if len(workload) > 0 {
		result.MostActiveMember = workload[0]
		result.LeastActiveMember = workload[len(workload)-1]
	}
	return result, nil
}
