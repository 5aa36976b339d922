package middleware

import (
	"hiring_tool_backend/internal/service"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 令牌必须与当前持久化的会话令牌一致；websocket 握手时从 query 读取
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		if !auth.ValidateToken(ctx, tokenString) {
			logger.Log.Debug("Rejected bearer token", zap.String("path", c.FullPath()))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if user := auth.GetCurrentUser(ctx); user != nil {
			c.Set(util.ContextUserKey, user)
		}
		c.Next()
	}
}
