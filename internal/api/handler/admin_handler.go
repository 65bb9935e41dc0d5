package handler

import (
	"github.com/gin-gonic/gin"

	"collabboard/internal/dto"
	"collabboard/internal/service"
	"collabboard/pkg/utils"
)

// AdminHandler 管理端接口，路由层已校验 admin 角色
type AdminHandler struct {
	adminService   service.AdminService
	userService    service.UserService
	projectService service.ProjectService
	taskService    service.TaskService
}

func NewAdminHandler(
	adminService service.AdminService,
	userService service.UserService,
	projectService service.ProjectService,
	taskService service.TaskService,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		userService:    userService,
		projectService: projectService,
		taskService:    taskService,
	}
}

// Dashboard 管理端首页统计
// @Summary 管理端统计
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.Response{data=dto.DashboardResponse}
// @Router /api/admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	resp, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.Success(c, resp)
}

// ListUsers 用户列表
// @Summary 用户列表
// @Tags Admin
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param search query string false "姓名或邮箱"
// @Param role query string false "角色"
// @Success 200 {object} utils.PageResponse{data=[]dto.UserResponse}
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query dto.AdminUserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), &query)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.PageSuccess(c, users, total, query.GetPage(), query.GetPageSize())
}

// ListRoles 系统角色
func (h *AdminHandler) ListRoles(c *gin.Context) {
	utils.Success(c, h.userService.ListRoles())
}

// UpdateUser 修改用户角色
// @Summary 修改用户角色
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int64 true "用户ID"
// @Param request body dto.UpdateUserRoleRequest true "角色"
// @Success 200 {object} utils.Response{data=dto.UserResponse}
// @Router /api/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), actor.ID, id, req.Role)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, user)
}

// DeleteUser 删除用户
// @Summary 删除用户
// @Tags Admin
// @Produce json
// @Param id path int64 true "用户ID"
// @Success 200 {object} utils.Response
// @Router /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actor.ID, id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}

// ListProjects 全部项目
// @Summary 项目列表
// @Tags Admin
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param search query string false "标题或描述"
// @Param status query string false "active/overdue"
// @Success 200 {object} utils.PageResponse{data=[]dto.ProjectResponse}
// @Router /api/admin/projects [get]
func (h *AdminHandler) ListProjects(c *gin.Context) {
	var query dto.AdminProjectQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	projects, total, err := h.adminService.ListProjects(c.Request.Context(), &query)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.PageSuccess(c, projects, total, query.GetPage(), query.GetPageSize())
}

// UpdateProject 修改任意项目
// @Summary 修改项目
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.UpdateProjectRequest true "更新项目请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/admin/projects/{id} [put]
func (h *AdminHandler) UpdateProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.projectService.AdminUpdate(c.Request.Context(), id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}

// DeleteProject 删除任意项目
// @Summary 删除项目
// @Tags Admin
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response
// @Router /api/admin/projects/{id} [delete]
func (h *AdminHandler) DeleteProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.AdminDelete(c.Request.Context(), id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}

// ListTasks 全部任务
// @Summary 任务列表
// @Tags Admin
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param search query string false "标题或描述"
// @Param status query string false "任务状态"
// @Success 200 {object} utils.PageResponse{data=[]dto.TaskResponse}
// @Router /api/admin/tasks [get]
func (h *AdminHandler) ListTasks(c *gin.Context) {
	var query dto.AdminTaskQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	tasks, total, err := h.adminService.ListTasks(c.Request.Context(), &query)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.PageSuccess(c, tasks, total, query.GetPage(), query.GetPageSize())
}

// UpdateTask 修改任意任务，同样推送到项目房间
// @Summary 修改任务
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path int64 true "任务ID"
// @Param request body dto.UpdateTaskRequest true "更新任务请求"
// @Success 200 {object} utils.Response{data=dto.TaskResponse}
// @Router /api/admin/tasks/{id} [put]
func (h *AdminHandler) UpdateTask(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.taskService.AdminUpdate(c.Request.Context(), actor, id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, task)
}

// DeleteTask 删除任意任务
// @Summary 删除任务
// @Tags Admin
// @Produce json
// @Param id path int64 true "任务ID"
// @Success 200 {object} utils.Response
// @Router /api/admin/tasks/{id} [delete]
func (h *AdminHandler) DeleteTask(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.AdminDelete(c.Request.Context(), actor, id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}
