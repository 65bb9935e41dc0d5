package service

import (
	"context"
	"errors"

	"collabboard/internal/model"
	"collabboard/internal/pkg/auth"
	"collabboard/internal/repository"
	pkgErrors "collabboard/pkg/errors"
)

// AuthorizationService 项目级权限判断
// 判断逻辑：
//  1. 读取项目，创建者视为 manager，成员按 members 中记录的角色
//  2. 角色 -> 权限 的关系写死在 internal/pkg/auth 的 RolePermissions 中
//  3. 非成员没有任何权限
//
// REST 和实时通道在每次写操作前都要调用，判断失败时返回明确错误而不是静默忽略
type AuthorizationService interface {
	// CanAccessProject 创建者或任意成员
	CanAccessProject(ctx context.Context, userID, projectID int64) (bool, error)
	// CanManageProject 创建者或 manager 成员
	CanManageProject(ctx context.Context, userID, projectID int64) (bool, error)

	// Require 校验权限并返回项目；项目不存在返回 ErrProjectNotFound
	Require(ctx context.Context, userID, projectID int64, perm auth.Permission) (*model.Project, error)
	RequireAccess(ctx context.Context, userID, projectID int64) (*model.Project, error)
	RequireManage(ctx context.Context, userID, projectID int64) (*model.Project, error)
}

type authorizationService struct {
	projectRepo repository.ProjectRepository
}

// NewAuthorizationService 创建 AuthorizationService
func NewAuthorizationService(projectRepo repository.ProjectRepository) AuthorizationService {
	return &authorizationService{projectRepo: projectRepo}
}

// HasPermission 纯判断，不访问存储
func HasPermission(project *model.Project, userID int64, perm auth.Permission) bool {
	role := project.RoleOf(userID)
	if role == "" {
		return false
	}
	return auth.Allow([]string{role}, perm)
}

func (s *authorizationService) check(ctx context.Context, userID, projectID int64, perm auth.Permission) (bool, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrProjectNotFound) {
			// 项目不存在，视为无权限
			return false, nil
		}
		return false, err
	}
	return HasPermission(project, userID, perm), nil
}

func (s *authorizationService) CanAccessProject(ctx context.Context, userID, projectID int64) (bool, error) {
	return s.check(ctx, userID, projectID, auth.PermProjectView)
}

func (s *authorizationService) CanManageProject(ctx context.Context, userID, projectID int64) (bool, error) {
	return s.check(ctx, userID, projectID, auth.PermProjectUpdate)
}

func (s *authorizationService) Require(ctx context.Context, userID, projectID int64, perm auth.Permission) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if HasPermission(project, userID, perm) {
		return project, nil
	}
	if project.CanAccess(userID) {
		return nil, pkgErrors.ErrProjectManage
	}
	return nil, pkgErrors.ErrProjectAccess
}

func (s *authorizationService) RequireAccess(ctx context.Context, userID, projectID int64) (*model.Project, error) {
	return s.Require(ctx, userID, projectID, auth.PermProjectView)
}

func (s *authorizationService) RequireManage(ctx context.Context, userID, projectID int64) (*model.Project, error) {
	return s.Require(ctx, userID, projectID, auth.PermProjectUpdate)
}
