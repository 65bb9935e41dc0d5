package handler

import (
	"github.com/gin-gonic/gin"

	"collabboard/internal/service"
	"collabboard/pkg/utils"
)

// InsightHandler 日历与项目分析
type InsightHandler struct {
	calendarService  service.CalendarService
	analyticsService service.AnalyticsService
}

func NewInsightHandler(calendarService service.CalendarService, analyticsService service.AnalyticsService) *InsightHandler {
	return &InsightHandler{
		calendarService:  calendarService,
		analyticsService: analyticsService,
	}
}

// Calendar 用户日历
// @Summary 用户日历（项目截止日期与被指派的任务）
// @Tags Insight
// @Produce json
// @Param userId path int64 true "用户ID"
// @Success 200 {object} utils.Response{data=dto.CalendarResponse}
// @Router /api/calendar/{userId} [get]
func (h *InsightHandler) Calendar(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	resp, err := h.calendarService.Calendar(c.Request.Context(), user.ID, userID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, resp)
}

// Analytics 项目分析
// @Summary 项目进度与成员工作量
// @Tags Insight
// @Produce json
// @Param projectId path int64 true "项目ID"
// @Success 200 {object} utils.Response{data=dto.ProjectAnalytics}
// @Router /api/analytics/{projectId} [get]
func (h *InsightHandler) Analytics(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}

	resp, err := h.analyticsService.ProjectAnalytics(c.Request.Context(), user.ID, projectID)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, resp)
}
