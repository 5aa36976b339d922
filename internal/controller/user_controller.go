package controller

import (
	"hiring_tool_backend/internal/service"
	"hiring_tool_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// UploadAvatar godoc
// @Summary 上传头像
// @Description 仅接受图片，大小不超过 2MB
// @Tags 用户
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "头像图片"
// @Success 200 {object} util.Response{data=model.PublicUser} "成功"
// @Failure 400 {object} util.Response "文件类型或大小不符合要求"
// @Router /api/user/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	updated, err := c.UserService.UploadAvatar(ctx.Request.Context(), user.ID, file, fileHeader.Size, fileHeader.Filename)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, updated)
}
