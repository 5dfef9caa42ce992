// @title Ghibli Image Generator API
// @version 1.0.0
// @description Upload an image and receive a Studio Ghibli style rendering generated by an OpenAI-compatible image edit service.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ghibli-generator/internal/application/services"
	"ghibli-generator/internal/infrastructure/clients"
	"ghibli-generator/internal/infrastructure/config"
	"ghibli-generator/internal/infrastructure/logger"
	"ghibli-generator/internal/presentation/routes"

	"github.com/joho/godotenv"
)

func main() {
	// 解析命令行参数
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	// .env 文件可选
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志记录器
	logger.InitGlobalLogger(&cfg.Logging)
	log := logger.GetLogger()

	log.Info("Starting Ghibli image generator")
	log.WithField("config", configPath).Info("Configuration loaded")

	if !cfg.OpenAI.IsConfigured() {
		log.Warn("OPENAI_API_KEY is not set, generation requests will be rejected")
	}

	// 上游客户端不设超时，由请求上下文决定何时放弃
	imageClient := clients.NewOpenAIImageClient(clients.OpenAIImageOptions{
		BaseURL: cfg.OpenAI.BaseURL,
		APIKey:  cfg.OpenAI.APIKey,
	})
	generationService := services.NewGenerationService(imageClient, &cfg.OpenAI, log)

	// 创建路由器
	router := routes.NewRouter(cfg, log, generationService)
	router.SetupRoutes()

	// 创建HTTP服务器
	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 启动服务器
	go func() {
		log.WithField("address", server.Addr).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err.Error()).Fatal("Failed to start HTTP server")
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// 优雅关闭服务器
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err.Error()).Fatal("Server forced to shutdown")
	} else {
		log.Info("Server shutdown complete")
	}
}
