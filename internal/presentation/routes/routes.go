package routes

import (
	"ghibli-generator/internal/application/services"
	"ghibli-generator/internal/infrastructure/clients"
	"ghibli-generator/internal/infrastructure/config"
	"ghibli-generator/internal/infrastructure/logger"
	"ghibli-generator/internal/presentation/handlers"
	"ghibli-generator/internal/presentation/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "ghibli-generator/docs" // 导入swagger文档
)

// Router 路由器
type Router struct {
	engine            *gin.Engine
	config            *config.Config
	logger            logger.Logger
	generationService services.GenerationService
}

// NewRouter 创建路由器
func NewRouter(
	config *config.Config,
	logger logger.Logger,
	generationService services.GenerationService,
) *Router {
	// 设置Gin模式
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	return &Router{
		engine:            engine,
		config:            config,
		logger:            logger,
		generationService: generationService,
	}
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	// 全局中间件
	r.engine.Use(middleware.RequestIDMiddleware())
	r.engine.Use(middleware.RecoveryMiddleware(r.logger))
	r.engine.Use(middleware.LoggingMiddleware(r.logger))
	r.engine.Use(middleware.CORSMiddleware())

	generateHandler := handlers.NewGenerateHandler(
		r.generationService,
		&r.config.Generation,
		r.config.Server.MaxBodySize,
		r.logger,
	)
	healthHandler := handlers.NewHealthHandler(r.generationService)

	healthPath := r.config.Monitoring.HealthCheckPath
	if healthPath == "" {
		healthPath = "/health"
	}
	r.engine.GET(healthPath, healthHandler.Health)

	// 方法检查由处理器完成，以便返回统一的405响应体
	r.engine.Any(clients.GeneratePath, generateHandler.Generate)

	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// GetEngine 获取Gin引擎
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
