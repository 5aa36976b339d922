package util

import (
	"errors"
	"hiring_tool_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Kind    ErrorKind   `json:"kind,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err), zap.String("path", c.FullPath()))
	InternalServerError(c)
}

// StatusForKind 错误分类到 HTTP 状态码的映射
func StatusForKind(kind ErrorKind) int {
	switch kind {
	case KindValidation, KindInvalidFormat, KindWeakInput:
		return http.StatusBadRequest
	case KindDuplicateEmail, KindNoActiveSession:
		return http.StatusConflict
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindEmptyQuestionSet:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindStorageUnavailable:
		return http.StatusServiceUnavailable
	case KindRequestCanceled:
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// RespondError 按错误分类输出，未分类错误记日志并返回 500
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		LogInternalError(c, err)
		return
	}

	status := StatusForKind(appErr.Kind)
	if status >= http.StatusInternalServerError {
		logger.Log.Error("Request failed", zap.Error(err), zap.String("path", c.FullPath()))
	}

	c.JSON(status, Response{
		Code:    status,
		Message: appErr.Message,
		Kind:    appErr.Kind,
	})
}
