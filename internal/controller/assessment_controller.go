package controller

import (
	"fmt"
	"hiring_tool_backend/internal/service"
	"hiring_tool_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Runner        *service.AssessmentRunner
	ResultService *service.ResultService
	Hub           *service.SessionHub
}

func NewAssessmentController(runner *service.AssessmentRunner, resultService *service.ResultService, hub *service.SessionHub) *AssessmentController {
	return &AssessmentController{
		Runner:        runner,
		ResultService: resultService,
		Hub:           hub,
	}
}

// swagger:model StartSessionRequest
type StartSessionRequest struct {
	AssessmentID string `json:"assessmentId" binding:"required"`
}

// swagger:model SelectAnswerRequest
type SelectAnswerRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

// @Summary 开始测评
// @Description 开始指定测评并启动倒计时，已有会话会被关闭
// @Tags 测评
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body StartSessionRequest true "测评ID"
// @Success 201 {object} util.Response{data=model.SessionSnapshot}
// @Failure 404 {object} util.Response "测评不存在"
// @Failure 422 {object} util.Response "题库为空"
// @Router /api/assessments/session [post]
func (c *AssessmentController) Start(ctx *gin.Context) {
	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snap, err := c.Runner.Start(ctx.Request.Context(), req.AssessmentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, snap)
}

// @Summary 当前测评状态
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.SessionSnapshot}
// @Failure 409 {object} util.Response "没有进行中的测评"
// @Router /api/assessments/session [get]
func (c *AssessmentController) Current(ctx *gin.Context) {
	snap, ok := c.Runner.Snapshot()
	if !ok {
		util.RespondError(ctx, util.ErrNoActiveSession)
		return
	}
	util.Success(ctx, snap)
}

// @Summary 选择答案
// @Description 记录或覆盖当前题目的答案
// @Tags 测评
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SelectAnswerRequest true "选项ID"
// @Success 200 {object} util.Response{data=model.SessionSnapshot}
// @Router /api/assessments/session/answer [post]
func (c *AssessmentController) SelectAnswer(ctx *gin.Context) {
	var req SelectAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	snap, err := c.Runner.Select(req.OptionID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// @Summary 下一题
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.SessionSnapshot}
// @Router /api/assessments/session/next [post]
func (c *AssessmentController) Next(ctx *gin.Context) {
	snap, err := c.Runner.Next()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// @Summary 上一题
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.SessionSnapshot}
// @Router /api/assessments/session/previous [post]
func (c *AssessmentController) Previous(ctx *gin.Context) {
	snap, err := c.Runner.Previous()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// @Summary 提交测评
// @Description 重复提交返回同一结果
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.SessionSnapshot}
// @Router /api/assessments/session/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	snap, err := c.Runner.Submit(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// @Summary 重新作答
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.SessionSnapshot}
// @Failure 400 {object} util.Response "尚未提交"
// @Router /api/assessments/session/retake [post]
func (c *AssessmentController) Retake(ctx *gin.Context) {
	snap, err := c.Runner.Retake()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, snap)
}

// @Summary 关闭测评
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/assessments/session [delete]
func (c *AssessmentController) Close(ctx *gin.Context) {
	if err := c.Runner.Close(); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"closed": true})
}

// @Summary 测评实时推送
// @Description websocket，推送倒计时、提交与重做事件；令牌通过 query 传递
// @Tags 测评
// @Param token query string true "会话令牌"
// @Router /api/assessments/session/ws [get]
func (c *AssessmentController) ServeWs(ctx *gin.Context) {
	c.Hub.ServeWs(ctx.Writer, ctx.Request)
}

// @Summary 测评历史
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param assessmentId query string false "按测评过滤"
// @Success 200 {object} util.Response{data=[]model.AssessmentResultRecord}
// @Router /api/assessments/results [get]
func (c *AssessmentController) ListResults(ctx *gin.Context) {
	records, err := c.ResultService.List(ctx.Request.Context(), ctx.Query("assessmentId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

// @Summary 测评概览
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.ResultOverview}
// @Router /api/assessments/results/overview [get]
func (c *AssessmentController) Overview(ctx *gin.Context) {
	overview, err := c.ResultService.Overview(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// @Summary 表现分析
// @Description 按主题区分强弱项，并给出累计耗时与最近走势
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.PerformanceAnalytics}
// @Router /api/assessments/results/analytics [get]
func (c *AssessmentController) Analytics(ctx *gin.Context) {
	analytics, err := c.ResultService.Analytics(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, analytics)
}

// @Summary 推荐测评
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "数量，默认 3"
// @Success 200 {object} util.Response{data=[]model.SkillAssessment}
// @Router /api/assessments/recommended [get]
func (c *AssessmentController) Recommended(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	recommended, err := c.ResultService.Recommendations(ctx.Request.Context(), limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, recommended)
}

// @Summary 测评结果详情
// @Tags 测评
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "结果ID"
// @Success 200 {object} util.Response{data=model.AssessmentResultRecord}
// @Failure 404 {object} util.Response
// @Router /api/assessments/results/{id} [get]
func (c *AssessmentController) GetResult(ctx *gin.Context) {
	record, err := c.ResultService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, record)
}

// @Summary 下载证书
// @Description 仅通过的测评可生成 PDF 证书
// @Tags 测评
// @Produce application/pdf
// @Security ApiKeyAuth
// @Param id path string true "结果ID"
// @Success 200 {file} file
// @Failure 400 {object} util.Response "未通过"
// @Router /api/assessments/results/{id}/certificate [get]
func (c *AssessmentController) Certificate(ctx *gin.Context) {
	id := ctx.Param("id")
	pdf, err := c.ResultService.Certificate(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="certificate-%s.pdf"`, id))
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}
