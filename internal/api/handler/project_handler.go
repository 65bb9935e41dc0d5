package handler

import (
	"github.com/gin-gonic/gin"

	"collabboard/internal/dto"
	"collabboard/internal/service"
	"collabboard/pkg/utils"
)

type ProjectHandler struct {
	projectService service.ProjectService
	chatService    service.ChatService
}

func NewProjectHandler(projectService service.ProjectService, chatService service.ChatService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		chatService:    chatService,
	}
}

// Create 创建项目
// @Summary 创建项目
// @Tags Project
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectRequest true "创建项目请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), user, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}

// List 当前用户创建或参与的项目
// @Summary 获取项目列表
// @Tags Project
// @Produce json
// @Success 200 {object} utils.Response{data=[]dto.ProjectResponse}
// @Router /api/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), user.ID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, projects)
}

// GetByID 获取项目详情
// @Summary 获取项目详情
// @Tags Project
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}

// Update 更新项目
// @Summary 更新项目
// @Tags Project
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.UpdateProjectRequest true "更新项目请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), user.ID, id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}

// Delete 删除项目
// @Summary 删除项目（级联删除任务、聊天、文件）
// @Tags Project
// @Produce json
// @Param id path int64 true "项目ID"
// @Success 200 {object} utils.Response
// @Router /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), user.ID, id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}

// AddMember 添加项目成员
// @Summary 添加项目成员
// @Tags Project
// @Accept json
// @Produce json
// @Param id path int64 true "项目ID"
// @Param request body dto.AddProjectMemberRequest true "成员"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/projects/{id}/members [post]
func (h *ProjectHandler) AddMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AddProjectMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.projectService.AddMember(c.Request.Context(), user.ID, id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}

// RemoveMember 移除项目成员
// @Summary 移除项目成员
// @Tags Project
// @Produce json
// @Param id path int64 true "项目ID"
// @Param userId path int64 true "用户ID"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/projects/{id}/members/{userId} [delete]
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	project, err := h.projectService.RemoveMember(c.Request.Context(), user.ID, id, memberID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}

// Messages 聊天历史
// @Summary 项目聊天历史（时间正序，最多50条）
// @Tags Project
// @Produce json
// @Param id path int64 true "项目ID"
// @Param limit query int false "条数"
// @Success 200 {object} utils.Response{data=[]dto.ChatMessageResponse}
// @Router /api/projects/{id}/messages [get]
func (h *ProjectHandler) Messages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var query dto.ChatHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	messages, err := h.chatService.Recent(c.Request.Context(), user.ID, id, query.Limit)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, messages)
}
