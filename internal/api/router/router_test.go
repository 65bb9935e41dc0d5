package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collabboard/internal/adapter/storage"
	"collabboard/internal/model"
	"collabboard/internal/pkg/config"
	"collabboard/internal/pkg/jwt"
	"collabboard/internal/repository/memory"
	"collabboard/internal/service"
	"collabboard/pkg/constants"
	pkgErrors "collabboard/pkg/errors"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
}

type testAPI struct {
	t       *testing.T
	store   *memory.Store
	tokens  *jwt.Manager
	blobs   *storage.MockStore
	engine  *gin.Engine
	admin   *model.User
	project *model.Project
	alice   *model.User
	bob     *model.User
}

func newTestAPI(t *testing.T, opts ...func(cfg *config.Config)) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memory.NewStore()
	api := &testAPI{t: t, store: s, blobs: storage.NewMockStore()}
	api.admin = s.SeedUser(&model.User{Name: "Root", Email: "root@example.com", Role: constants.RoleAdmin})
	api.alice = s.SeedUser(&model.User{Name: "Alice", Email: "alice@example.com", Role: constants.RoleMember})
	api.bob = s.SeedUser(&model.User{Name: "Bob", Email: "bob@example.com", Role: constants.RoleMember})
	p := model.NewProject("P1", "first", time.Now().Add(5*24*time.Hour), api.alice.ID)
	p.AddMember(api.bob.ID, constants.ProjectRoleMember)
	api.project = s.SeedProject(p)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Auth: config.AuthConfig{
			JWT:   config.JWTConfig{Secret: "router-test", AccessTokenExpire: 3600, RefreshTokenExpire: 7200},
			Local: config.LocalConfig{Enabled: true, AllowRegister: true},
		},
		Storage: config.StorageConfig{MaxFileSize: 1024, AllowedTypes: []string{"txt", "png"}},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	api.tokens = jwt.NewManager(cfg.Auth.JWT)

	authz := service.NewAuthorizationService(s.Projects())
	notifications := service.NewNotificationService(s.Notifications(), s.Users(), nil, nil, nil)
	projects := service.NewProjectService(s.Projects(), s.Tasks(), s.ChatMessages(), s.Files(), s.Users(), s,
		authz, notifications, api.blobs, nil)
	tasks := service.NewTaskService(s.Tasks(), s.Projects(), s.Users(), authz, notifications, nil, nil)

	svc := &Services{
		Auth:          service.NewAuthService(&cfg.Auth, api.tokens, s.Users(), nil),
		Projects:      projects,
		Tasks:         tasks,
		Chat:          service.NewChatService(s.ChatMessages(), authz, 50),
		Files:         service.NewFileService(&cfg.Storage, s.Files(), authz, notifications, api.blobs, nil),
		Notifications: notifications,
		Calendar:      service.NewCalendarService(s.Projects(), s.Tasks()),
		Analytics:     service.NewAnalyticsService(s.Tasks(), s.Users(), authz),
		Users:         service.NewUserService(s.Users(), s.Projects(), s.Tasks(), s.ChatMessages(), s.Notifications(), s, nil),
		Admin:         service.NewAdminService(s.Users(), s.Projects(), s.Tasks(), s.Notifications()),
	}
	api.engine = Setup(cfg, svc, nil)
	return api
}

func (a *testAPI) token(u *model.User) string {
	token, err := a.tokens.GenerateAccessToken(jwt.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path string, user *model.User, body interface{}) apiResponse {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(user))
	}
	return a.serve(req)
}

func (a *testAPI) serve(req *http.Request) apiResponse {
	a.t.Helper()
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var resp apiResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodGet, "/api/projects", nil, nil)
	assert.Equal(t, pkgErrors.CodeUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Token abc")
	assert.Equal(t, pkgErrors.CodeUnauthorized, api.serve(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	assert.Equal(t, pkgErrors.CodeUnauthorized, api.serve(req).Code)
}

func TestSignupLoginAndProfile(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodPost, "/api/auth/signup", nil, map[string]string{
		"name": "Dana", "email": "Dana@Example.com", "password": "secret1",
	})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)

	resp = api.do(http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email": "dana@example.com", "password": "secret1",
	})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	require.NotEmpty(t, login.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	resp = api.serve(req)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code)
	assert.Contains(t, string(resp.Data), "dana@example.com")

	resp = api.do(http.MethodPost, "/api/auth/signup", nil, map[string]string{"name": "x", "email": "bad"})
	assert.Equal(t, pkgErrors.CodeBadRequest, resp.Code)
}

func TestProjectAndTaskFlow(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodPost, "/api/projects", api.bob, map[string]interface{}{
		"title": "Launch", "description": "go live", "deadline": time.Now().Add(48 * time.Hour),
	})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	var project struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &project))

	resp = api.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/members", project.ID), api.bob,
		map[string]interface{}{"email": "alice@example.com"})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)

	resp = api.do(http.MethodPost, "/api/tasks", api.bob, map[string]interface{}{
		"title": "Ship", "description": "deploy it", "assigned_to": api.alice.ID, "project_id": project.ID,
	})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	var task struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &task))

	resp = api.do(http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), api.alice, map[string]interface{}{"status": "in-progress"})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	assert.Contains(t, string(resp.Data), `"in-progress"`)

	resp = api.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", project.ID), api.alice, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code)
	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &tasks))
	assert.Len(t, tasks, 1)

	resp = api.do(http.MethodGet, fmt.Sprintf("/api/analytics/%d", project.ID), api.alice, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)

	// 非成员
	resp = api.do(http.MethodGet, fmt.Sprintf("/api/tasks/%d", api.project.ID), api.admin, nil)
	assert.Equal(t, pkgErrors.CodeForbidden, resp.Code)

	resp = api.do(http.MethodDelete, fmt.Sprintf("/api/projects/%d/members/%d", project.ID, api.bob.ID), api.bob, nil)
	assert.Equal(t, pkgErrors.CodeBadRequest, resp.Code)

	resp = api.do(http.MethodGet, "/api/projects/abc", api.bob, nil)
	assert.Equal(t, pkgErrors.CodeBadRequest, resp.Code)
}

func TestChatHistoryEndpoint(t *testing.T) {
	api := newTestAPI(t)
	chat := service.NewChatService(api.store.ChatMessages(), service.NewAuthorizationService(api.store.Projects()), 50)
	_, err := chat.Send(context.Background(), api.alice, api.project.ID, "hi bob")
	require.NoError(t, err)

	resp := api.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/messages", api.project.ID), api.bob, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	assert.Contains(t, string(resp.Data), "hi bob")

	resp = api.do(http.MethodGet, fmt.Sprintf("/api/projects/%d/messages?limit=500", api.project.ID), api.bob, nil)
	assert.Equal(t, pkgErrors.CodeBadRequest, resp.Code)
}

func TestNotificationRoutes(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodPost, "/api/notifications", api.alice, map[string]interface{}{
		"user_id": api.bob.ID, "message": "ping",
	})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)

	resp = api.do(http.MethodGet, fmt.Sprintf("/api/notifications/%d?unreadOnly=true", api.bob.ID), api.bob, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	assert.Contains(t, string(resp.Data), "ping")

	resp = api.do(http.MethodPut, fmt.Sprintf("/api/notifications/mark-all-read/%d", api.bob.ID), api.bob, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	assert.JSONEq(t, `{"updated":1}`, string(resp.Data))

	resp = api.do(http.MethodGet, fmt.Sprintf("/api/notifications/%d", api.bob.ID), api.alice, nil)
	assert.Equal(t, pkgErrors.CodeForbidden, resp.Code)
}

func TestCalendarIsSelfOnly(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodGet, fmt.Sprintf("/api/calendar/%d", api.alice.ID), api.alice, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	assert.Contains(t, string(resp.Data), fmt.Sprintf("project-%d", api.project.ID))

	resp = api.do(http.MethodGet, fmt.Sprintf("/api/calendar/%d", api.alice.ID), api.bob, nil)
	assert.Equal(t, pkgErrors.CodeForbidden, resp.Code)
}

func TestFileUpload(t *testing.T) {
	api := newTestAPI(t)
	api.blobs.On("Put", mock.Anything, mock.Anything, int64(5), mock.Anything).
		Return(&storage.Object{URL: "/uploads/x.txt", StorageID: "x.txt", Size: 5}, nil).Once()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("project_id", fmt.Sprint(api.project.ID)))
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+api.token(api.bob))
	resp := api.serve(req)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	assert.Contains(t, string(resp.Data), "notes.txt")
	api.blobs.AssertExpectations(t)

	resp = api.do(http.MethodGet, fmt.Sprintf("/api/files/%d", api.project.ID), api.alice, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code)
	assert.Contains(t, string(resp.Data), "/uploads/x.txt")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodGet, "/api/admin/dashboard", api.alice, nil)
	assert.Equal(t, pkgErrors.CodeForbidden, resp.Code)

	resp = api.do(http.MethodGet, "/api/admin/dashboard", api.admin, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)

	resp = api.do(http.MethodGet, "/api/admin/users?page=1&page_size=2", api.admin, nil)
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	assert.Equal(t, int64(3), resp.Total)

	resp = api.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d", api.bob.ID), api.admin, map[string]string{"role": "admin"})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	assert.Contains(t, string(resp.Data), `"admin"`)

	resp = api.do(http.MethodPut, fmt.Sprintf("/api/admin/projects/%d", api.project.ID), api.admin, map[string]string{"title": "Renamed"})
	require.Equal(t, pkgErrors.CodeSuccess, resp.Code, resp.Message)
	assert.Contains(t, string(resp.Data), "Renamed")
}

func TestCORSPreflight(t *testing.T) {
	preflight := func(api *testAPI, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		api.engine.ServeHTTP(w, req)
		return w
	}

	// 未配置来源：放行所有来源，不带凭证
	w := preflight(newTestAPI(t), "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	api := newTestAPI(t, func(cfg *config.Config) {
		cfg.CORS.AllowOrigins = []string{"https://board.example.com"}
	})
	w = preflight(api, "https://board.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://board.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = preflight(api, "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
