// @title Hiring Tool 后端 API
// @version 1.0
// @description 求职练习与技能测评工具的本地后端服务。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"fmt"
	"hiring_tool_backend/internal/app"
	"hiring_tool_backend/internal/config"
	"hiring_tool_backend/pkg/configwatcher"
	"hiring_tool_backend/pkg/logger"
	"log"

	"github.com/common-nighthawk/go-figure"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件所在目录")
	watch := flag.Bool("watch", true, "配置文件变更时热更新")
	noBanner := flag.Bool("no-banner", false, "不打印启动横幅")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if !*noBanner {
		printStartUpBanner()
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer logger.Log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *watch && cfg.ConfigFile != "" {
		if err := configwatcher.Watch(ctx, cfg.ConfigFile, application.ApplyConfig); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	if err := application.Run(); err != nil {
		logger.Log.Error("Server stopped with error", zap.Error(err))
	}
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("HIRING TOOL", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("HIRING TOOL API (v%s)\n\n", version)
}
