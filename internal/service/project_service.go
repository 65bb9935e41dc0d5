package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"collabboard/internal/adapter/storage"
	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/pkg/auth"
	"collabboard/internal/repository"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

type ProjectService interface {
	Create(ctx context.Context, actor *model.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	Get(ctx context.Context, userID, projectID int64) (*dto.ProjectResponse, error)
	// List 当前用户创建或参与的项目
	List(ctx context.Context, userID int64) ([]*dto.ProjectResponse, error)
	Update(ctx context.Context, userID, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, userID, projectID int64) error

	AddMember(ctx context.Context, userID, projectID int64, req *dto.AddProjectMemberRequest) (*dto.ProjectResponse, error)
	RemoveMember(ctx context.Context, userID, projectID, memberID int64) (*dto.ProjectResponse, error)

	// 管理端，不校验项目成员身份
	AdminUpdate(ctx context.Context, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	AdminDelete(ctx context.Context, projectID int64) error
}

type projectService struct {
	repo          repository.ProjectRepository
	taskRepo      repository.TaskRepository
	chatRepo      repository.ChatMessageRepository
	fileRepo      repository.FileRepository
	userRepo      repository.UserRepository
	tx            repository.Transactor
	authz         AuthorizationService
	notifications NotificationService
	blobs         storage.BlobStore
	log           *zap.Logger
	now           func() time.Time
}

func NewProjectService(
	repo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	chatRepo repository.ChatMessageRepository,
	fileRepo repository.FileRepository,
	userRepo repository.UserRepository,
	tx repository.Transactor,
	authz AuthorizationService,
	notifications NotificationService,
	blobs storage.BlobStore,
	log *zap.Logger,
) ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &projectService{
		repo:          repo,
		taskRepo:      taskRepo,
		chatRepo:      chatRepo,
		fileRepo:      fileRepo,
		userRepo:      userRepo,
		tx:            tx,
		authz:         authz,
		notifications: notifications,
		blobs:         blobs,
		log:           log,
		now:           time.Now,
	}
}

func (s *projectService) Create(ctx context.Context, actor *model.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "项目名称和描述不能为空")
	}
	if !req.Deadline.After(s.now()) {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "截止时间必须晚于当前时间")
	}

	// 创建者以 manager 身份加入
	project := model.NewProject(title, description, req.Deadline, actor.ID)
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	project.Creator = actor

	s.notifications.Notify(ctx, &model.Notification{
		UserID:    actor.ID,
		Message:   fmt.Sprintf("项目「%s」创建成功", project.Title),
		Type:      constants.NotificationTypeProject,
		RelatedID: &project.ID,
		Priority:  constants.PriorityMedium,
	})

	return s.toResponse(ctx, project)
}

func (s *projectService) toResponse(ctx context.Context, project *model.Project) (*dto.ProjectResponse, error) {
	list, err := projectResponses(ctx, s.userRepo, project)
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

func (s *projectService) Get(ctx context.Context, userID, projectID int64) (*dto.ProjectResponse, error) {
	project, err := s.authz.RequireAccess(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, project)
}

func (s *projectService) List(ctx context.Context, userID int64) ([]*dto.ProjectResponse, error) {
	projects, err := s.repo.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	return projectResponses(ctx, s.userRepo, projects...)
}

func (s *projectService) Update(ctx context.Context, userID, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if _, err := s.authz.Require(ctx, userID, projectID, auth.PermProjectUpdate); err != nil {
		return nil, err
	}
	return s.AdminUpdate(ctx, projectID, req)
}

func (s *projectService) AdminUpdate(ctx context.Context, projectID int64, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	fields := make(map[string]interface{})
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "项目名称不能为空")
		}
		fields["title"] = title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "项目描述不能为空")
		}
		fields["description"] = description
	}
	if req.Deadline != nil {
		if !req.Deadline.After(s.now()) {
			return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "截止时间必须晚于当前时间")
		}
		fields["deadline"] = *req.Deadline
	}

	if len(fields) > 0 {
		if _, err := s.repo.FindByID(ctx, projectID); err != nil {
			return nil, err
		}
		if err := s.repo.Updates(ctx, projectID, fields); err != nil {
			return nil, err
		}
	}

	project, err := s.repo.FindByID(ctx, projectID, repository.WithPreload("Creator"))
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, project)
}

func (s *projectService) Delete(ctx context.Context, userID, projectID int64) error {
	if _, err := s.authz.Require(ctx, userID, projectID, auth.PermProjectDelete); err != nil {
		return err
	}
	return s.AdminDelete(ctx, projectID)
}

// AdminDelete 级联删除任务、聊天记录和文件记录，提交后再尽力删除外部存储的文件
func (s *projectService) AdminDelete(ctx context.Context, projectID int64) error {
	if _, err := s.repo.FindByID(ctx, projectID); err != nil {
		return err
	}

	files, err := s.fileRepo.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.fileRepo.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		if err := s.taskRepo.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		if err := s.chatRepo.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, projectID)
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		if f.StorageID == "" || s.blobs == nil {
			continue
		}
		if err := s.blobs.Delete(ctx, f.StorageID); err != nil {
			s.log.Warn("删除项目文件失败",
				zap.Int64("project_id", projectID),
				zap.Int64("file_id", f.ID),
				zap.Error(err))
		}
	}

	s.log.Info("删除项目", zap.Int64("project_id", projectID), zap.Int("files", len(files)))
	return nil
}

func (s *projectService) AddMember(ctx context.Context, userID, projectID int64, req *dto.AddProjectMemberRequest) (*dto.ProjectResponse, error) {
	project, err := s.authz.Require(ctx, userID, projectID, auth.PermProjectMember)
	if err != nil {
		return nil, err
	}

	var member *model.User
	if req.UserID > 0 {
		member, err = s.userRepo.FindByID(ctx, req.UserID)
	} else {
		member, err = s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	}
	if err != nil {
		return nil, err
	}

	if member.ID == project.CreatedBy {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "项目创建者的角色不能修改")
	}

	role := req.Role
	if role == "" {
		role = constants.ProjectRoleMember
	}

	added := project.AddMember(member.ID, role)
	if err := s.repo.SaveMembers(ctx, project); err != nil {
		return nil, err
	}

	if added {
		s.notifications.Notify(ctx, &model.Notification{
			UserID:    member.ID,
			Message:   fmt.Sprintf("你已被加入项目「%s」", project.Title),
			Type:      constants.NotificationTypeProject,
			RelatedID: &project.ID,
			Priority:  constants.PriorityMedium,
		})
	}

	return s.toResponse(ctx, project)
}

// RemoveMember 移除后该用户在实时通道上的下一次操作即被拒绝
func (s *projectService) RemoveMember(ctx context.Context, userID, projectID, memberID int64) (*dto.ProjectResponse, error) {
	project, err := s.authz.Require(ctx, userID, projectID, auth.PermProjectMember)
	if err != nil {
		return nil, err
	}

	if memberID == project.CreatedBy {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "不能移除项目创建者")
	}
	if !project.RemoveMember(memberID) {
		return nil, pkgErrors.New(pkgErrors.CodeNotFound, "该用户不是项目成员")
	}
	if err := s.repo.SaveMembers(ctx, project); err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, &model.Notification{
		UserID:    memberID,
		Message:   fmt.Sprintf("你已被移出项目「%s」", project.Title),
		Type:      constants.NotificationTypeProject,
		RelatedID: &project.ID,
		Priority:  constants.PriorityMedium,
	})

	return s.toResponse(ctx, project)
}
