package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"collabboard/internal/adapter/notification"
	"collabboard/internal/adapter/storage"
	"collabboard/internal/api/router"
	"collabboard/internal/pkg/config"
	"collabboard/internal/pkg/database"
	"collabboard/internal/pkg/jwt"
	"collabboard/internal/pkg/logger"
	"collabboard/internal/pkg/redis"
	"collabboard/internal/realtime"
	"collabboard/internal/repository"
	"collabboard/internal/scheduler"
	"collabboard/internal/service"

	_ "collabboard/docs" // Swagger docs
)

// @title CollabBoard API
// @version 1.0
// @description 项目协作平台 API 文档
// @description 提供项目、任务、聊天、文件、通知与实时协作等功能

// @contact.name API Support
// @contact.email support@example.com

// @host localhost:5000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

var (
	configFile = flag.String("config", "", "配置文件路径 (例如: -config=configs/config.yaml)")
	version    = flag.Bool("version", false, "显示版本信息")
)

const (
	appVersion = "1.0.0"
	appName    = "collabboard"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s version %s\n", appName, appVersion)
		os.Exit(0)
	}

	// init config logger
	var cfg *config.Config
	{
		// 优先级: 命令行参数 > 环境变量 > 默认路径
		configPath := getConfigPath()

		c, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("加载配置失败: %v\n", err)
			fmt.Println("\n使用方式:")
			fmt.Println("  1. 命令行参数指定:")
			fmt.Println("     ./collabboard -config=configs/config.yaml")
			fmt.Println("  2. 环境变量指定:")
			fmt.Println("     export CONFIG_FILE=configs/config.yaml")
			fmt.Println("     ./collabboard")
			os.Exit(1)
		}
		cfg = c

		if err := logger.Init(&cfg.Log); err != nil {
			fmt.Printf("初始化日志失败: %v\n", err)
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("Load config file: %s of %s", configPath, getConfigSource()))

		defer func() {
			_ = logger.Close()
		}()
	}

	logger.Info(fmt.Sprintf("服务 %s 启动中...", appName), zap.String("version", appVersion))

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer func() {
		_ = database.Close()
	}()
	logger.Info(fmt.Sprintf("数据库连接成功 %s:%v", cfg.Database.Host, cfg.Database.Port), zap.String("database", cfg.Database.Database))

	// Redis 仅在多实例广播时需要
	redisClient, err := redis.Init(&cfg.Redis)
	if err != nil {
		logger.Fatal("初始化Redis失败", zap.Error(err))
	}
	defer func() {
		_ = redis.Close()
	}()

	// 外部适配器
	notifier, closeNotifier, err := notification.New(&cfg.Notification, logger.Named("notifier"))
	if err != nil {
		logger.Fatal("初始化通知器失败", zap.Error(err))
	}
	defer func() {
		_ = closeNotifier()
	}()

	blobs, err := storage.New(&cfg.Storage)
	if err != nil {
		logger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 实时通道
	registry := realtime.NewRegistry(logger.Named("realtime"))
	bus, err := realtime.NewBus(&cfg.Realtime, registry, redisClient, logger.Named("bus"))
	if err != nil {
		logger.Fatal("初始化广播总线失败", zap.Error(err))
	}
	broadcaster := realtime.NewBroadcaster(bus, logger.Named("broadcaster"))

	// Repository
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	chatRepo := repository.NewChatMessageRepository(db)
	fileRepo := repository.NewFileRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	txm := repository.NewTransactor(db)

	// Service
	tokens := jwt.NewManager(cfg.Auth.JWT)
	authz := service.NewAuthorizationService(projectRepo)
	notifications := service.NewNotificationService(notificationRepo, userRepo, notifier, broadcaster, logger.Named("notification"))
	svc := &router.Services{
		Auth:          service.NewAuthService(&cfg.Auth, tokens, userRepo, service.NewLDAPService(&cfg.Auth.LDAP)),
		Projects:      service.NewProjectService(projectRepo, taskRepo, chatRepo, fileRepo, userRepo, txm, authz, notifications, blobs, logger.Named("project")),
		Tasks:         service.NewTaskService(taskRepo, projectRepo, userRepo, authz, notifications, broadcaster, logger.Named("task")),
		Chat:          service.NewChatService(chatRepo, authz, cfg.Realtime.HistoryLimit),
		Files:         service.NewFileService(&cfg.Storage, fileRepo, authz, notifications, blobs, logger.Named("file")),
		Notifications: notifications,
		Calendar:      service.NewCalendarService(projectRepo, taskRepo),
		Analytics:     service.NewAnalyticsService(taskRepo, userRepo, authz),
		Users:         service.NewUserService(userRepo, projectRepo, taskRepo, chatRepo, notificationRepo, txm, logger.Named("user")),
		Admin:         service.NewAdminService(userRepo, projectRepo, taskRepo, notificationRepo),
	}

	gateway := realtime.NewGateway(&cfg.Realtime, registry, bus, svc.Auth, svc.Chat, svc.Tasks, logger.Named("gateway"))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go func() {
		if err := bus.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("广播总线退出", zap.Error(err))
		}
	}()

	// 定时任务：截止提醒、通知清理
	var taskScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		taskScheduler = scheduler.NewScheduler(&cfg.Scheduler, projectRepo, notificationRepo, notifications, logger.Named("scheduler"))
		if err := taskScheduler.Start(); err != nil {
			logger.Warn("定时任务调度器启动失败", zap.Error(err))
		}
	}

	// 设置路由
	r := router.Setup(cfg, svc, gateway)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Info(fmt.Sprintf("%s 服务启动成功", cfg.Server.Name),
			zap.String("address", addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("bus", cfg.Realtime.Bus),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务正在关闭...")

	if taskScheduler != nil {
		taskScheduler.Stop()
		logger.Info("定时任务调度器已停止")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	stop()
	if err := bus.Close(); err != nil {
		logger.Warn("关闭广播总线失败", zap.Error(err))
	}

	logger.Info("服务已关闭")
}

// getConfigPath 获取配置文件路径
// 优先级: 命令行参数 > 环境变量 > 默认路径
func getConfigPath() string {
	if *configFile != "" {
		return *configFile
	}
	if envConfig := os.Getenv("CONFIG_FILE"); envConfig != "" {
		return envConfig
	}
	return "configs/config.yaml"
}

// getConfigSource 获取配置来源说明
func getConfigSource() string {
	if *configFile != "" {
		return "命令行参数"
	}
	if os.Getenv("CONFIG_FILE") != "" {
		return "环境变量"
	}
	return "默认配置"
}
