package util

import (
	"hiring_tool_backend/internal/model"

	"github.com/gin-gonic/gin"
)

const ContextUserKey = "user"

// GetUserFromContext 读取鉴权中间件写入的当前用户
func GetUserFromContext(c *gin.Context) *model.PublicUser {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := v.(*model.PublicUser)
	if !ok {
		return nil
	}
	return user
}
