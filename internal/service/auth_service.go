package service

import (
	"context"
	"errors"
	"strings"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/pkg/config"
	"collabboard/internal/pkg/crypto"
	"collabboard/internal/pkg/jwt"
	"collabboard/internal/pkg/logger"
	"collabboard/internal/repository"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"

	"go.uber.org/zap"
)

type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// Authenticate 校验访问Token并解析为用户，REST 中间件和实时握手共用
	Authenticate(ctx context.Context, token string) (*model.User, error)
	Profile(ctx context.Context, userID int64) (*dto.UserInfo, error)
}

type authService struct {
	cfg         *config.AuthConfig
	tokens      *jwt.Manager
	userRepo    repository.UserRepository
	ldapService LDAPService
}

func NewAuthService(
	cfg *config.AuthConfig,
	tokens *jwt.Manager,
	userRepo repository.UserRepository,
	ldapService LDAPService,
) AuthService {
	return &authService{
		cfg:         cfg,
		tokens:      tokens,
		userRepo:    userRepo,
		ldapService: ldapService,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.LoginResponse, error) {
	if !s.cfg.Local.Enabled || !s.cfg.Local.AllowRegister {
		return nil, pkgErrors.New(pkgErrors.CodeForbidden, "未开放注册")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "姓名不能为空")
	}
	email := normalizeEmail(req.Email)

	// 检查邮箱是否已注册
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pkgErrors.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "该邮箱已注册")
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "密码加密失败", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		Password:     hash,
		Role:         constants.RoleMember,
		AuthProvider: constants.AuthTypeLocal,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("用户注册", zap.Int64("user_id", user.ID), zap.String("email", email))
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	var user *model.User
	var err error

	switch req.AuthType {
	case constants.AuthTypeLDAP:
		if !s.cfg.LDAP.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeAuthError, "LDAP认证未启用")
		}
		ldapUser, err := s.ldapService.Authenticate(req.Email, req.Password)
		if err != nil {
			return nil, err
		}
		if user, err = s.syncLDAPUser(ctx, ldapUser); err != nil {
			return nil, err
		}

	case constants.AuthTypeLocal, "":
		if !s.cfg.Local.Enabled {
			return nil, pkgErrors.New(pkgErrors.CodeAuthError, "本地认证未启用")
		}
		if user, err = s.authenticateLocal(ctx, req.Email, req.Password); err != nil {
			return nil, err
		}

	default:
		return nil, pkgErrors.New(pkgErrors.CodeBadRequest, "不支持的认证类型")
	}

	// 更新最后登录时间
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Warn("更新最后登录时间失败", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return s.issue(user)
}

func (s *authService) authenticateLocal(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pkgErrors.ErrUserNotFound) {
			return nil, pkgErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	// LDAP 用户没有本地密码
	if user.AuthProvider != constants.AuthTypeLocal || !crypto.CheckPassword(password, user.Password) {
		return nil, pkgErrors.ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) syncLDAPUser(ctx context.Context, info *LDAPUser) (*model.User, error) {
	email := normalizeEmail(info.Email)
	if email == "" {
		return nil, pkgErrors.New(pkgErrors.CodeAuthError, "LDAP用户缺少邮箱属性")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pkgErrors.ErrUserNotFound) {
		return nil, err
	}

	user = &model.User{
		Name:         info.DisplayName,
		Email:        email,
		Password:     "",
		Role:         constants.RoleMember,
		AuthProvider: constants.AuthTypeLDAP,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func identityOf(user *model.User) jwt.Identity {
	return jwt.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
		AuthType: user.AuthProvider,
	}
}

func (s *authService) issue(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(identityOf(user))
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成AccessToken失败", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(identityOf(user))
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "生成RefreshToken失败", err)
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.cfg.JWT.AccessTokenExpire,
		User:         toUserInfo(user),
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.tokens.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// 检查Token类型
	if claims.Type != constants.JWTTypeRefresh {
		return nil, pkgErrors.New(pkgErrors.CodeUnauthorized, "无效的RefreshToken")
	}

	// 重新读取用户，角色变更后立即生效
	user, err := s.resolve(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, claims.UserID)
}

func (s *authService) resolve(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrUserNotFound) {
			return nil, pkgErrors.New(pkgErrors.CodeUnauthorized, "Token对应的用户不存在")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Profile(ctx context.Context, userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}
