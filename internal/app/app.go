package app

import (
	"context"
	"fmt"
	"hiring_tool_backend/internal/config"
	"hiring_tool_backend/internal/controller"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/service"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/database"
	"hiring_tool_backend/pkg/logger"
	"hiring_tool_backend/pkg/monitoring"
	"hiring_tool_backend/pkg/security"
	"hiring_tool_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services        *services
	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	store   repository.KVStore
	user    *repository.UserRepository
	todo    *repository.TodoRepository
	results repository.ResultRepository
}

type services struct {
	auth     *service.AuthService
	storage  *service.StorageService
	user     *service.UserService
	practice *service.PracticeService
	todo     *service.TodoService
	streak   *service.StreakService
	result   *service.ResultService
	hub      *service.SessionHub
	runner   *service.AssessmentRunner
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	practice   *controller.PracticeController
	assessment *controller.AssessmentController
	todo       *controller.TodoController
	dashboard  *controller.DashboardController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
	logger.Log.Info("Config reloaded", zap.String("file", cfg.ConfigFile))
}

// newKVStore 按 storage.kv_backend 选择键值存储
func newKVStore(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (repository.KVStore, error) {
	switch cfg.Storage.KVBackend {
	case util.KVBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis kv backend selected but redis is not available")
		}
		return repository.NewRedisKVStore(rdb), nil
	case util.KVBackendDatabase:
		if db == nil {
			return nil, fmt.Errorf("database kv backend selected but database is not configured")
		}
		return repository.NewGormKVStore(db), nil
	default:
		return repository.NewMemoryKVStore(), nil
	}
}

func (a *App) initRepositories(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*repositories, error) {
	store, err := newKVStore(cfg, db, rdb)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("KV store selected", zap.String("backend", cfg.Storage.KVBackend))

	var results repository.ResultRepository
	if db != nil {
		results = repository.NewGormResultRepository(db)
	} else {
		results = repository.NewMemoryResultRepository()
		logger.Log.Warn("No database configured, assessment results are kept in memory")
	}

	return &repositories{
		store:   store,
		user:    repository.NewUserRepository(store, cfg.Auth.BcryptCost),
		todo:    repository.NewTodoRepository(store),
		results: results,
	}, nil
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	practice, err := service.NewPracticeService()
	if err != nil {
		return nil, fmt.Errorf("load practice catalog: %w", err)
	}
	s.practice = practice

	s.storage = service.NewStorageService(&cfg.Storage)
	s.auth = service.NewAuthService(repos.user, repos.store, cfg.Auth.Latency())
	s.user = service.NewUserService(repos.user, s.storage, s.auth)
	s.todo = service.NewTodoService(repos.todo)
	s.streak = service.NewStreakService(repos.todo, cfg.Assessment.StreakTarget, cfg.Assessment.StreakMaxDays)
	s.result = service.NewResultService(repos.results, s.practice, s.auth)

	s.hub = service.NewSessionHub(rdb)
	go s.hub.Run()

	s.runner = service.NewAssessmentRunner(s.practice, repos.results, s.hub, s.auth, cfg.Assessment.TickInterval())

	return s, nil
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.user),
		user:       controller.NewUserController(s.user),
		practice:   controller.NewPracticeController(s.practice),
		assessment: controller.NewAssessmentController(s.runner, s.result, s.hub),
		todo:       controller.NewTodoController(s.todo),
		dashboard:  controller.NewDashboardController(s.streak),
		health:     controller.NewHealthController(db, repos.store),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerConfigCallbacks 可热更新的配置项
func (a *App) registerConfigCallbacks(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetMode(cfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.auth.SetLatency(cfg.Auth.Latency())
	})
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	app := &App{Config: cfg}

	if cfg.Database.Driver != "" {
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		app.DB = db
	}

	// redis 仅在 kv_backend=redis 时必需，否则作为会话事件广播的可选通道
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		if cfg.Storage.KVBackend == util.KVBackendRedis {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		logger.Log.Warn("Redis unavailable, session events stay local", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos, err := app.initRepositories(cfg, app.DB, rdb)
	if err != nil {
		return nil, err
	}
	services, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		return nil, err
	}
	app.services = services
	controllers := app.initControllers(services, repos, app.DB)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("hiring-tool", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, services)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.registerConfigCallbacks(services)

	return app, nil
}

// Close 释放后台资源，Run 退出时也会调用
func (a *App) Close() {
	if a.services != nil {
		a.services.runner.Shutdown()
		a.services.hub.Stop()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		a.Close()
		return err
	}
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	// websocket 连接已被劫持，Shutdown 不会等待，需要单独关闭
	a.Close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Log.Info("Server exiting")
	return nil
}
