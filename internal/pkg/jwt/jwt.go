package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"collabboard/internal/pkg/config"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

// UserClaims 用户Claims
type UserClaims struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	AuthType string `json:"auth_type"` // ldap or local
	Type     string `json:"type"`      // access or refresh
	jwt.RegisteredClaims
}

// Manager 负责签发和校验Token
type Manager struct {
	secret        []byte
	accessExpire  time.Duration
	refreshExpire time.Duration
}

// NewManager 创建Token管理器
func NewManager(cfg config.JWTConfig) *Manager {
	return &Manager{
		secret:        []byte(cfg.Secret),
		accessExpire:  time.Duration(cfg.AccessTokenExpire) * time.Second,
		refreshExpire: time.Duration(cfg.RefreshTokenExpire) * time.Second,
	}
}

// Identity 签发Token所需的用户信息
type Identity struct {
	UserID   int64
	Email    string
	Name     string
	Role     string
	AuthType string
}

// GenerateAccessToken 生成访问Token
func (m *Manager) GenerateAccessToken(id Identity) (string, error) {
	return m.generate(id, constants.JWTTypeAccess, m.accessExpire)
}

// GenerateRefreshToken 生成刷新Token
func (m *Manager) GenerateRefreshToken(id Identity) (string, error) {
	return m.generate(id, constants.JWTTypeRefresh, m.refreshExpire)
}

func (m *Manager) generate(id Identity, tokenType string, expire time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:   id.UserID,
		Email:    id.Email,
		Name:     id.Name,
		Role:     id.Role,
		AuthType: id.AuthType,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken 解析Token
func (m *Manager) ParseToken(tokenString string) (*UserClaims, error) {
	if tokenString == "" {
		return nil, pkgErrors.ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgErrors.ErrTokenExpired
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeUnauthorized, "解析Token失败", err)
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, pkgErrors.ErrInvalidToken
}

// ValidateAccessToken 验证访问Token，刷新Token不可用于访问接口
func (m *Manager) ValidateAccessToken(tokenString string) (*UserClaims, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	// 检查是否过期
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, pkgErrors.ErrTokenExpired
	}

	if claims.Type != constants.JWTTypeAccess {
		return nil, pkgErrors.ErrInvalidToken
	}

	return claims, nil
}
