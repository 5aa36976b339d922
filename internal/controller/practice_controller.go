package controller

import (
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/service"
	"hiring_tool_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PracticeController struct {
	PracticeService *service.PracticeService
}

func NewPracticeController(practiceService *service.PracticeService) *PracticeController {
	return &PracticeController{PracticeService: practiceService}
}

// @Summary 技能测评列表
// @Tags 练习
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.SkillAssessment}
// @Router /api/practice/assessments [get]
func (c *PracticeController) ListAssessments(ctx *gin.Context) {
	util.Success(ctx, c.PracticeService.ListSkillAssessments())
}

// @Summary 技能测评详情
// @Tags 练习
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测评ID"
// @Success 200 {object} util.Response{data=model.SkillAssessment}
// @Failure 404 {object} util.Response
// @Router /api/practice/assessments/{id} [get]
func (c *PracticeController) GetAssessment(ctx *gin.Context) {
	a, err := c.PracticeService.GetSkillAssessment(ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// @Summary 按主题获取题目
// @Description 主题精确匹配，未知主题返回空列表；不包含正确答案
// @Tags 练习
// @Produce json
// @Security ApiKeyAuth
// @Param topic query string true "主题"
// @Success 200 {object} util.Response{data=[]model.QuestionView}
// @Router /api/practice/questions [get]
func (c *PracticeController) GetQuestions(ctx *gin.Context) {
	topic := ctx.Query("topic")
	if topic == "" {
		util.Success(ctx, gin.H{"topics": c.PracticeService.Topics()})
		return
	}
	util.Success(ctx, c.PracticeService.GetQuestionViews(topic))
}

// @Summary 打字练习课程
// @Tags 练习
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TypingLesson}
// @Router /api/practice/typing/lessons [get]
func (c *PracticeController) ListTypingLessons(ctx *gin.Context) {
	util.Success(ctx, c.PracticeService.ListTypingLessons())
}

// @Summary 打字练习评分
// @Description 按课程原文计算准确率、WPM 与完成进度
// @Tags 练习
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body model.TypingAttempt true "输入内容与耗时"
// @Success 200 {object} util.Response{data=model.TypingScore}
// @Failure 404 {object} util.Response
// @Router /api/practice/typing/lessons/{id}/score [post]
func (c *PracticeController) ScoreTyping(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "Invalid lesson id")
		return
	}
	var attempt model.TypingAttempt
	if err := ctx.ShouldBindJSON(&attempt); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	score, err := c.PracticeService.ScoreTypingLesson(id, attempt)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, score)
}
