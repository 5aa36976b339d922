package app

import (
	"hiring_tool_backend/docs"
	"hiring_tool_backend/internal/middleware"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(s.auth))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerPracticeRoutes(authGroup, c)
		a.registerAssessmentRoutes(authGroup, c)
		a.registerTodoRoutes(authGroup, c)
	}

	router.NoRoute(util.NotFound)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		{
			auth.POST("/signup", c.auth.SignUp)
			auth.POST("/login", c.auth.Login)
			auth.GET("/status", c.auth.Status)
		}
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/auth/logout", c.auth.Logout)
	rg.GET("/profile", c.auth.GetProfile)
	rg.POST("/user/avatar", c.user.UploadAvatar)
	rg.GET("/dashboard/streak", c.dashboard.GetStreak)
}

func (a *App) registerPracticeRoutes(rg *gin.RouterGroup, c *controllers) {
	practice := rg.Group("/practice")
	{
		practice.GET("/assessments", c.practice.ListAssessments)
		practice.GET("/assessments/:id", c.practice.GetAssessment)
		practice.GET("/questions", c.practice.GetQuestions)
		practice.GET("/typing/lessons", c.practice.ListTypingLessons)
		practice.POST("/typing/lessons/:id/score", c.practice.ScoreTyping)
	}
}

func (a *App) registerAssessmentRoutes(rg *gin.RouterGroup, c *controllers) {
	session := rg.Group("/assessments/session")
	{
		session.POST("", c.assessment.Start)
		session.GET("", c.assessment.Current)
		session.DELETE("", c.assessment.Close)
		session.POST("/answer", c.assessment.SelectAnswer)
		session.POST("/next", c.assessment.Next)
		session.POST("/previous", c.assessment.Previous)
		session.POST("/submit", c.assessment.Submit)
		session.POST("/retake", c.assessment.Retake)
		session.GET("/ws", c.assessment.ServeWs)
	}

	rg.GET("/assessments/recommended", c.assessment.Recommended)

	results := rg.Group("/assessments/results")
	{
		results.GET("", c.assessment.ListResults)
		results.GET("/overview", c.assessment.Overview)
		results.GET("/analytics", c.assessment.Analytics)
		results.GET("/:id", c.assessment.GetResult)
		results.GET("/:id/certificate", c.assessment.Certificate)
	}
}

func (a *App) registerTodoRoutes(rg *gin.RouterGroup, c *controllers) {
	todos := rg.Group("/todos")
	{
		todos.GET("", c.todo.List)
		todos.POST("", c.todo.Create)
		todos.PUT("/:id", c.todo.Update)
		todos.PATCH("/:id/toggle", c.todo.Toggle)
		todos.DELETE("/:id", c.todo.Delete)
	}
}
