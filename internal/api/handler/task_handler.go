package handler

import (
	"github.com/gin-gonic/gin"

	"collabboard/internal/dto"
	"collabboard/internal/service"
	"collabboard/pkg/utils"
)

// TaskHandler 任务写操作与实时通道共用 TaskService，同样会推送到项目房间
type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create 创建任务
// @Summary 创建任务
// @Tags Task
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "创建任务请求"
// @Success 200 {object} utils.Response{data=dto.TaskResponse}
// @Router /api/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), user, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, task)
}

// ListByProject 项目任务列表
// @Summary 项目任务列表
// @Tags Task
// @Produce json
// @Param projectId path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=[]dto.TaskResponse}
// @Router /api/tasks/{projectId} [get]
func (h *TaskHandler) ListByProject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByProject(c.Request.Context(), user.ID, projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, tasks)
}

// Update 更新任务
// @Summary 更新任务（只更新传入字段）
// @Tags Task
// @Accept json
// @Produce json
// @Param id path int64 true "任务ID"
// @Param request body dto.UpdateTaskRequest true "更新任务请求"
// @Success 200 {object} utils.Response{data=dto.TaskResponse}
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
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

	task, err := h.taskService.Update(c.Request.Context(), user, id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, task)
}

// Delete 删除任务
// @Summary 删除任务
// @Tags Task
// @Produce json
// @Param id path int64 true "任务ID"
// @Success 200 {object} utils.Response
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), user, id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}
