package controller

import (
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/service"
	"hiring_tool_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
	}
}

// SignUp godoc
// @Summary 注册新用户
// @Description 按顺序校验注册信息，成功后直接登录并返回令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body model.SignUpRequest true "用户注册信息"
// @Success 201 {object} util.Response{data=model.AuthResponse} "创建成功"
// @Failure 400 {object} util.Response "校验失败"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /api/auth/signup [post]
func (c *AuthController) SignUp(ctx *gin.Context) {
	var req model.SignUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AuthService.SignUp(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, resp)
}

// Login godoc
// @Summary 用户登录
// @Description 校验邮箱与密码，返回不含声明的会话令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body model.LoginRequest true "用户登录凭据"
// @Success 200 {object} util.Response{data=model.AuthResponse} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req model.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

// Logout godoc
// @Summary 退出登录
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "成功"
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context()); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"loggedIn": false})
}

// Status godoc
// @Summary 登录状态
// @Description 存储不可用时视为未登录
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/auth/status [get]
func (c *AuthController) Status(ctx *gin.Context) {
	rctx := ctx.Request.Context()
	util.Success(ctx, gin.H{
		"loggedIn": c.AuthService.IsLoggedIn(rctx),
		"user":     c.AuthService.GetCurrentUser(rctx),
	})
}

// GetProfile godoc
// @Summary 获取当前用户资料
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.PublicUser} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.UserService.GetProfile(ctx.Request.Context(), user.ID)
	if err != nil {
		if util.IsKind(err, util.KindNotFound) {
			// 凭据库中已无此用户时返回会话中保存的视图
			util.Success(ctx, user)
			return
		}
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}
