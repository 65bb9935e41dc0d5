package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/repository"
)

const (
	dashboardRecentLimit = 5
	recentUserWindow     = 7 * 24 * time.Hour
)

// AdminService 管理端统计与列表，写操作复用项目、任务、用户服务
type AdminService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	ListProjects(ctx context.Context, query *dto.AdminProjectQuery) ([]*dto.ProjectResponse, int64, error)
	ListTasks(ctx context.Context, query *dto.AdminTaskQuery) ([]*dto.TaskResponse, int64, error)
}

type adminService struct {
	userRepo         repository.UserRepository
	projectRepo      repository.ProjectRepository
	taskRepo         repository.TaskRepository
	notificationRepo repository.NotificationRepository
	now              func() time.Time
}

func NewAdminService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	notificationRepo repository.NotificationRepository,
) AdminService {
	return &adminService{
		userRepo:         userRepo,
		projectRepo:      projectRepo,
		taskRepo:         taskRepo,
		notificationRepo: notificationRepo,
		now:              time.Now,
	}
}

func (s *adminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var stats dto.DashboardStats
	var err error

	if stats.TotalUsers, err = s.userRepo.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.TotalProjects, err = s.projectRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalTasks, err = s.taskRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalNotifications, err = s.notificationRepo.Count(ctx); err != nil {
		return nil, err
	}

	since := s.now().Add(-recentUserWindow)
	if stats.RecentUsers, err = s.userRepo.Count(ctx, &since); err != nil {
		return nil, err
	}
	if stats.UsersByRole, err = s.userRepo.CountByRole(ctx); err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.Recent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}
	recentProjects, err := projectResponses(ctx, s.userRepo, projects...)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.Recent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Stats:          stats,
		RecentProjects: recentProjects,
		RecentTasks:    lo.Map(tasks, func(t *model.Task, _ int) *dto.TaskResponse { return ToTaskResponse(t) }),
	}, nil
}

func (s *adminService) ListProjects(ctx context.Context, query *dto.AdminProjectQuery) ([]*dto.ProjectResponse, int64, error) {
	projects, total, err := s.projectRepo.List(ctx, query.GetPage(), query.GetPageSize(), query.Keyword, query.Status)
	if err != nil {
		return nil, 0, err
	}
	resp, err := projectResponses(ctx, s.userRepo, projects...)
	if err != nil {
		return nil, 0, err
	}
	return resp, total, nil
}

func (s *adminService) ListTasks(ctx context.Context, query *dto.AdminTaskQuery) ([]*dto.TaskResponse, int64, error) {
	tasks, total, err := s.taskRepo.List(ctx, query.GetPage(), query.GetPageSize(), query.Keyword, query.Status)
	if err != nil {
		return nil, 0, err
	}
	return lo.Map(tasks, func(t *model.Task, _ int) *dto.TaskResponse { return ToTaskResponse(t) }), total, nil
}
