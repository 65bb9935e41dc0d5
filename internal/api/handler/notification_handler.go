package handler

import (
	"github.com/gin-gonic/gin"

	"collabboard/internal/dto"
	"collabboard/internal/service"
	"collabboard/pkg/utils"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Create 创建通知
// @Summary 创建通知
// @Tags Notification
// @Accept json
// @Produce json
// @Param request body dto.CreateNotificationRequest true "通知"
// @Success 200 {object} utils.Response{data=dto.NotificationResponse}
// @Router /api/notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	n, err := h.notificationService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, n)
}

// List 用户通知列表
// @Summary 通知列表（只能查看自己的）
// @Tags Notification
// @Produce json
// @Param userId path int64 true "用户ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param unreadOnly query bool false "只看未读"
// @Success 200 {object} utils.Response{data=dto.NotificationListResponse}
// @Router /api/notifications/{userId} [get]
func (h *NotificationHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var query dto.NotificationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.notificationService.List(c.Request.Context(), user.ID, userID, &query)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, resp)
}

// MarkRead 标记已读
// @Summary 标记通知已读
// @Tags Notification
// @Produce json
// @Param id path int64 true "通知ID"
// @Success 200 {object} utils.Response{data=dto.NotificationResponse}
// @Router /api/notifications/{id} [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	n, err := h.notificationService.MarkRead(c.Request.Context(), user.ID, id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, n)
}

// MarkAllRead 全部标记已读
// @Summary 全部标记已读
// @Tags Notification
// @Produce json
// @Param userId path int64 true "用户ID"
// @Success 200 {object} utils.Response
// @Router /api/notifications/mark-all-read/{userId} [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllRead(c.Request.Context(), user.ID, userID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, gin.H{"updated": updated})
}

// Delete 删除通知
// @Summary 删除通知
// @Tags Notification
// @Produce json
// @Param id path int64 true "通知ID"
// @Success 200 {object} utils.Response
// @Router /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), user.ID, id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}
