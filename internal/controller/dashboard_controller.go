package controller

import (
	"hiring_tool_backend/internal/service"
	"hiring_tool_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	StreakService *service.StreakService
}

func NewDashboardController(streakService *service.StreakService) *DashboardController {
	return &DashboardController{StreakService: streakService}
}

// @Summary 连续打卡
// @Description 从今天往前统计连续有已完成待办的天数
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.StreakStatus}
// @Router /api/dashboard/streak [get]
func (c *DashboardController) GetStreak(ctx *gin.Context) {
	status, err := c.StreakService.Current(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, status)
}
