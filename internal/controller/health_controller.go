package controller

import (
	"errors"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Store repository.KVStore
}

// NewHealthController db 为 nil 表示未配置数据库
func NewHealthController(db *gorm.DB, store repository.KVStore) *HealthController {
	return &HealthController{DB: db, Store: store}
}

// @Summary 健康检查
// @Description 检查键值存储与数据库状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	components := gin.H{}

	if _, err := c.Store.Get(ctx.Request.Context(), util.KeyAuthToken); err != nil && !errors.Is(err, util.ErrKeyNotFound) {
		util.Error(ctx, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	components["storage"] = "up"

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			util.InternalServerError(ctx)
			return
		}
		if err := sqlDB.PingContext(ctx.Request.Context()); err != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		components["database"] = "up"
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
