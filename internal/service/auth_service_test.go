package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard/internal/dto"
	"collabboard/internal/model"
	"collabboard/internal/pkg/config"
	"collabboard/internal/pkg/jwt"
	"collabboard/internal/repository/memory"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

type stubLDAP struct {
	user *LDAPUser
	err  error
}

func (s *stubLDAP) Authenticate(string, string) (*LDAPUser, error) {
	return s.user, s.err
}

func newAuthService(t *testing.T, store *memory.Store, ldapSvc LDAPService) AuthService {
	t.Helper()
	cfg := &config.AuthConfig{
		JWT:   config.JWTConfig{Secret: "test-secret", AccessTokenExpire: 3600, RefreshTokenExpire: 7200},
		LDAP:  config.LDAPConfig{Enabled: ldapSvc != nil},
		Local: config.LocalConfig{Enabled: true, AllowRegister: true},
	}
	return NewAuthService(cfg, jwt.NewManager(cfg.JWT), store.Users(), ldapSvc)
}

func TestSignupThenLogin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newAuthService(t, store, nil)

	resp, err := svc.Signup(ctx, &dto.SignupRequest{Name: " Alice ", Email: "Alice@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, constants.RoleMember, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, "Alice", user.Name)
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.SeedUser(&model.User{Name: "Alice", Email: "alice@example.com"})
	svc := newAuthService(t, store, nil)

	_, err := svc.Signup(ctx, &dto.SignupRequest{Name: "A", Email: "alice@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, pkgErrors.CodeConflict, pkgErrors.CodeOf(err))
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newAuthService(t, store, nil)

	_, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newAuthService(t, store, nil)

	resp, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, store.Users().Delete(ctx, resp.User.ID))

	_, err = svc.Authenticate(ctx, resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, pkgErrors.CodeUnauthorized, pkgErrors.CodeOf(err))
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	svc := newAuthService(t, memory.NewStore(), nil)

	_, err := svc.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, pkgErrors.ErrMissingToken)

	_, err = svc.Authenticate(context.Background(), "not-a-jwt")
	assert.Equal(t, pkgErrors.CodeUnauthorized, pkgErrors.CodeOf(err))
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newAuthService(t, store, nil)

	resp, err := svc.Signup(ctx, &dto.SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// 访问Token不能用于刷新
	_, err = svc.RefreshToken(ctx, resp.AccessToken)
	assert.Equal(t, pkgErrors.CodeUnauthorized, pkgErrors.CodeOf(err))
}

func TestLDAPLoginCreatesUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newAuthService(t, store, &stubLDAP{user: &LDAPUser{Username: "dave", Email: "Dave@corp.example", DisplayName: "Dave"}})

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "dave", Password: "pw", AuthType: constants.AuthTypeLDAP})
	require.NoError(t, err)
	assert.Equal(t, constants.AuthTypeLDAP, resp.User.AuthType)

	user, err := store.Users().FindByEmail(ctx, "dave@corp.example")
	require.NoError(t, err)
	assert.Equal(t, "Dave", user.Name)

	// LDAP 用户没有本地密码，不能走本地登录
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "dave@corp.example", Password: ""})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u := store.SeedUser(&model.User{Name: "Alice", Email: "alice@example.com", AuthProvider: constants.AuthTypeLocal})
	svc := newAuthService(t, store, nil)

	info, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", info.Email)

	_, err = svc.Profile(ctx, 999)
	assert.ErrorIs(t, err, pkgErrors.ErrUserNotFound)
}
