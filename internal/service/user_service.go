package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"collabboard/internal/dto"
	"collabboard/internal/repository"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

// UserService 管理端用户维护
type UserService interface {
	List(ctx context.Context, query *dto.AdminUserQuery) ([]*dto.UserResponse, int64, error)
	UpdateRole(ctx context.Context, actorID, userID int64, role string) (*dto.UserResponse, error)
	// Delete 用户仍创建有项目或被指派任务时拒绝删除
	Delete(ctx context.Context, actorID, userID int64) error
	ListRoles() []string
}

type userService struct {
	userRepo         repository.UserRepository
	projectRepo      repository.ProjectRepository
	taskRepo         repository.TaskRepository
	chatRepo         repository.ChatMessageRepository
	notificationRepo repository.NotificationRepository
	tx               repository.Transactor
	log              *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	chatRepo repository.ChatMessageRepository,
	notificationRepo repository.NotificationRepository,
	tx repository.Transactor,
	log *zap.Logger,
) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{
		userRepo:         userRepo,
		projectRepo:      projectRepo,
		taskRepo:         taskRepo,
		chatRepo:         chatRepo,
		notificationRepo: notificationRepo,
		tx:               tx,
		log:              log,
	}
}

func (s *userService) List(ctx context.Context, query *dto.AdminUserQuery) ([]*dto.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, query.GetPage(), query.GetPageSize(), query.Keyword, query.Role)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	return resp, total, nil
}

func (s *userService) UpdateRole(ctx context.Context, actorID, userID int64, role string) (*dto.UserResponse, error) {
	if role != constants.RoleMember && role != constants.RoleAdmin {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, fmt.Sprintf("无效的角色: %s", role))
	}
	if actorID == userID {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "不能修改自己的角色")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
			return nil, err
		}
		user.Role = role
	}
	return toUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return pkgErrors.New(pkgErrors.CodeBadRequest, "不能删除自己")
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}

	created, err := s.projectRepo.CountByCreator(ctx, userID)
	if err != nil {
		return err
	}
	if created > 0 {
		return pkgErrors.New(pkgErrors.CodeConflict, fmt.Sprintf("该用户创建了 %d 个项目，请先删除或转移项目", created))
	}

	assigned, err := s.taskRepo.CountByAssignee(ctx, userID)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return pkgErrors.New(pkgErrors.CodeConflict, fmt.Sprintf("该用户还有 %d 个指派任务，请先重新指派", assigned))
	}

	projects, err := s.projectRepo.ListByMember(ctx, userID)
	if err != nil {
		return err
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		// 从参与的项目中移除
		for _, p := range projects {
			if p.RemoveMember(userID) {
				if err := s.projectRepo.SaveMembers(ctx, p); err != nil {
					return err
				}
			}
		}
		if err := s.notificationRepo.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := s.chatRepo.DeleteBySender(ctx, userID); err != nil {
			return err
		}
		return s.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.log.Info("删除用户", zap.Int64("user_id", userID), zap.Int64("operator", actorID), zap.Int("projects", len(projects)))
	return nil
}

func (s *userService) ListRoles() []string {
	// 按固定顺序返回
	return []string{constants.RoleMember, constants.RoleAdmin}
}
