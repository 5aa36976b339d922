package controller

import (
	"hiring_tool_backend/internal/service"
	"hiring_tool_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type TodoController struct {
	TodoService *service.TodoService
}

func NewTodoController(todoService *service.TodoService) *TodoController {
	return &TodoController{TodoService: todoService}
}

// swagger:model CreateTodoRequest
type CreateTodoRequest struct {
	Date string `json:"date" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// swagger:model UpdateTodoRequest
type UpdateTodoRequest struct {
	Text string `json:"text" binding:"required"`
}

// @Summary 待办列表
// @Description 按日期查询，默认今天；date=all 返回全部
// @Tags 待办
// @Produce json
// @Security ApiKeyAuth
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} util.Response{data=[]model.Todo}
// @Router /api/todos [get]
func (c *TodoController) List(ctx *gin.Context) {
	date := ctx.DefaultQuery("date", util.DateKey(time.Now()))
	rctx := ctx.Request.Context()

	if date == "all" {
		todos, err := c.TodoService.All(rctx)
		if err != nil {
			util.RespondError(ctx, err)
			return
		}
		util.Success(ctx, todos)
		return
	}

	todos, err := c.TodoService.GetByDate(rctx, date)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, todos)
}

// @Summary 新增待办
// @Tags 待办
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateTodoRequest true "待办"
// @Success 201 {object} util.Response{data=model.Todo}
// @Router /api/todos [post]
func (c *TodoController) Create(ctx *gin.Context) {
	var req CreateTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	todo, err := c.TodoService.Add(ctx.Request.Context(), req.Date, req.Text)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, todo)
}

// @Summary 修改待办内容
// @Tags 待办
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "待办ID"
// @Param body body UpdateTodoRequest true "内容"
// @Success 200 {object} util.Response{data=model.Todo}
// @Router /api/todos/{id} [put]
func (c *TodoController) Update(ctx *gin.Context) {
	var req UpdateTodoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	todo, err := c.TodoService.Update(ctx.Request.Context(), ctx.Param("id"), req.Text)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, todo)
}

// @Summary 切换完成状态
// @Tags 待办
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "待办ID"
// @Success 200 {object} util.Response{data=model.Todo}
// @Router /api/todos/{id}/toggle [patch]
func (c *TodoController) Toggle(ctx *gin.Context) {
	todo, err := c.TodoService.Toggle(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, todo)
}

// @Summary 删除待办
// @Tags 待办
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "待办ID"
// @Success 200 {object} util.Response
// @Router /api/todos/{id} [delete]
func (c *TodoController) Delete(ctx *gin.Context) {
	if err := c.TodoService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}
