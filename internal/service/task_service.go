package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/pkg/auth"
	"collabboard/internal/repository"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

// TaskService REST 和实时通道共用的任务写入口，每次写成功后都会推送到项目房间
type TaskService interface {
	Create(ctx context.Context, actor *model.User, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	Update(ctx context.Context, actor *model.User, taskID int64, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, actor *model.User, taskID int64) error
	ListByProject(ctx context.Context, userID, projectID int64) ([]*dto.TaskResponse, error)

	// 管理端，不校验项目成员身份
	AdminUpdate(ctx context.Context, actor *model.User, taskID int64, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	AdminDelete(ctx context.Context, actor *model.User, taskID int64) error
}

type taskService struct {
	repo          repository.TaskRepository
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	authz         AuthorizationService
	notifications NotificationService
	broadcaster   TaskBroadcaster
	log           *zap.Logger
}

func NewTaskService(
	repo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	authz AuthorizationService,
	notifications NotificationService,
	broadcaster TaskBroadcaster,
	log *zap.Logger,
) TaskService {
	if broadcaster == nil {
		broadcaster = NopBroadcaster
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &taskService{
		repo:          repo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		authz:         authz,
		notifications: notifications,
		broadcaster:   broadcaster,
		log:           log,
	}
}

// assignee 被指派人必须存在且是项目成员
func (s *taskService) assignee(ctx context.Context, project *model.Project, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !project.CanAccess(user.ID) {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "被指派人不是项目成员")
	}
	return user, nil
}

func (s *taskService) Create(ctx context.Context, actor *model.User, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	project, err := s.authz.Require(ctx, actor.ID, req.ProjectID, auth.PermTaskCreate)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "任务标题和描述不能为空")
	}

	assignee, err := s.assignee(ctx, project, req.AssignedTo)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:       title,
		Description: description,
		Status:      constants.TaskStatusTodo,
		AssignedTo:  assignee.ID,
		ProjectID:   project.ID,
		CreatedBy:   actor.ID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	task.Assignee = assignee
	task.Project = project

	if assignee.ID != actor.ID {
		s.notifications.Notify(ctx, &model.Notification{
			UserID:    assignee.ID,
			Message:   fmt.Sprintf("你被指派了新任务「%s」（项目「%s」）", task.Title, project.Title),
			Type:      constants.NotificationTypeTask,
			RelatedID: &task.ID,
			Priority:  constants.PriorityHigh,
		})
	}

	s.broadcaster.TaskCreated(task, actor)
	return ToTaskResponse(task), nil
}

func (s *taskService) Update(ctx context.Context, actor *model.User, taskID int64, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// 每次写操作都重新校验成员身份
	project, err := s.authz.Require(ctx, actor.ID, task.ProjectID, auth.PermTaskUpdate)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, actor, task, project, req)
}

func (s *taskService) AdminUpdate(ctx context.Context, actor *model.User, taskID int64, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, actor, task, project, req)
}

// apply 只更新传入的字段
func (s *taskService) apply(ctx context.Context, actor *model.User, task *model.Task, project *model.Project, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	fields := make(map[string]interface{})

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "任务标题不能为空")
		}
		fields["title"] = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "任务描述不能为空")
		}
		fields["description"] = description
	}

	statusChanged := false
	if req.Status != nil {
		if !model.IsValidTaskStatus(*req.Status) {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, fmt.Sprintf("无效的任务状态: %s", *req.Status))
		}
		if *req.Status != task.Status {
			fields["status"] = *req.Status
			statusChanged = true
		}
	}

	var newAssignee *model.User
	if req.AssignedTo != nil && *req.AssignedTo != task.AssignedTo {
		assignee, err := s.assignee(ctx, project, *req.AssignedTo)
		if err != nil {
			return nil, err
		}
		fields["assigned_to"] = assignee.ID
		newAssignee = assignee
	}

	// 无字段变化也广播当前状态，实时端总能收到回应
	if len(fields) > 0 {
		if err := s.repo.Updates(ctx, task.ID, fields); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.FindByID(ctx, task.ID, repository.WithPreload("Assignee"), repository.WithPreload("Project"))
	if err != nil {
		return nil, err
	}

	if newAssignee != nil && newAssignee.ID != actor.ID {
		s.notifications.Notify(ctx, &model.Notification{
			UserID:    newAssignee.ID,
			Message:   fmt.Sprintf("你被指派了任务「%s」（项目「%s」）", updated.Title, project.Title),
			Type:      constants.NotificationTypeTask,
			RelatedID: &updated.ID,
			Priority:  constants.PriorityHigh,
		})
	}

	if statusChanged && updated.Status != constants.TaskStatusTodo {
		for _, uid := range uniqueExcept(actor.ID, updated.AssignedTo, project.CreatedBy) {
			s.notifications.Notify(ctx, &model.Notification{
				UserID:    uid,
				Message:   fmt.Sprintf("任务「%s」状态变更为 %s", updated.Title, updated.Status),
				Type:      constants.NotificationTypeTask,
				RelatedID: &updated.ID,
				Priority:  constants.PriorityMedium,
			})
		}
	}

	s.broadcaster.TaskUpdated(updated, actor)
	return ToTaskResponse(updated), nil
}

// uniqueExcept 去重并排除 except
func uniqueExcept(except int64, ids ...int64) []int64 {
	return lo.Without(lo.Uniq(ids), except, 0)
}

func (s *taskService) Delete(ctx context.Context, actor *model.User, taskID int64) error {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.authz.Require(ctx, actor.ID, task.ProjectID, auth.PermTaskDelete); err != nil {
		return err
	}
	return s.remove(ctx, actor, task)
}

func (s *taskService) AdminDelete(ctx context.Context, actor *model.User, taskID int64) error {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	return s.remove(ctx, actor, task)
}

func (s *taskService) remove(ctx context.Context, actor *model.User, task *model.Task) error {
	if err := s.repo.Delete(ctx, task.ID); err != nil {
		return err
	}
	s.log.Debug("删除任务", zap.Int64("task_id", task.ID), zap.Int64("actor", actor.ID))
	s.broadcaster.TaskDeleted(task, actor)
	return nil
}

func (s *taskService) ListByProject(ctx context.Context, userID, projectID int64) ([]*dto.TaskResponse, error) {
	if _, err := s.authz.RequireAccess(ctx, userID, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.TaskResponse, len(tasks))
	for i, t := range tasks {
		resp[i] = ToTaskResponse(t)
	}
	return resp, nil
}
