package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"collabboard/internal/api/handler"
	"collabboard/internal/api/middleware"
	"collabboard/internal/pkg/config"
	"collabboard/internal/realtime"
	"collabboard/internal/service"
	"collabboard/pkg/constants"
)

// Services 路由依赖的业务服务，由 main 统一组装
type Services struct {
	Auth          service.AuthService
	Projects      service.ProjectService
	Tasks         service.TaskService
	Chat          service.ChatService
	Files         service.FileService
	Notifications service.NotificationService
	Calendar      service.CalendarService
	Analytics     service.AnalyticsService
	Users         service.UserService
	Admin         service.AdminService
}

// Setup 设置路由，gateway 为 nil 时不注册实时通道
func Setup(cfg *config.Config, svc *Services, gateway *realtime.Gateway) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 实时通道，握手时自行校验 Token
	if gateway != nil {
		r.GET("/ws", gateway.Handle)
		r.GET("/socket", gateway.Handle)
	}

	// 本地存储的上传文件
	local := cfg.Storage.Local
	if (cfg.Storage.Provider == "" || cfg.Storage.Provider == "local") && local.BaseURL != "" && local.Dir != "" {
		r.Static(local.BaseURL, local.Dir)
	}

	// 初始化Handler
	authHandler := handler.NewAuthHandler(svc.Auth)
	projectHandler := handler.NewProjectHandler(svc.Projects, svc.Chat)
	taskHandler := handler.NewTaskHandler(svc.Tasks)
	fileHandler := handler.NewFileHandler(svc.Files)
	notificationHandler := handler.NewNotificationHandler(svc.Notifications)
	insightHandler := handler.NewInsightHandler(svc.Calendar, svc.Analytics)
	adminHandler := handler.NewAdminHandler(svc.Admin, svc.Users, svc.Projects, svc.Tasks)

	api := r.Group("/api")
	{
		// 认证相关(无需token)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		// 需要认证的路由
		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(svc.Auth))
		{
			authed.GET("/auth/me", authHandler.GetMe)
			authed.GET("/profile", authHandler.GetMe)

			// 项目管理
			projects := authed.Group("/projects")
			{
				projects.POST("", projectHandler.Create)                             // 创建项目
				projects.GET("", projectHandler.List)                                // 我创建或参与的项目
				projects.GET("/:id", projectHandler.GetByID)                         // 项目详情
				projects.PUT("/:id", projectHandler.Update)                          // 更新项目（需管理权限）
				projects.DELETE("/:id", projectHandler.Delete)                       // 删除项目（级联）
				projects.POST("/:id/members", projectHandler.AddMember)              // 添加成员
				projects.DELETE("/:id/members/:userId", projectHandler.RemoveMember) // 移除成员
				projects.GET("/:id/messages", projectHandler.Messages)               // 聊天历史
			}

			// 任务管理
			tasks := authed.Group("/tasks")
			{
				tasks.POST("", taskHandler.Create)
				tasks.GET("/:projectId", taskHandler.ListByProject)
				tasks.PUT("/:id", taskHandler.Update)
				tasks.DELETE("/:id", taskHandler.Delete)
			}

			// 文件
			files := authed.Group("/files")
			{
				files.POST("/upload", fileHandler.Upload)
				files.GET("/:projectId", fileHandler.List)
				files.DELETE("/:fileId", fileHandler.Delete)
			}

			// 通知
			notifications := authed.Group("/notifications")
			{
				notifications.POST("", notificationHandler.Create)
				notifications.GET("/:userId", notificationHandler.List)
				notifications.PUT("/mark-all-read/:userId", notificationHandler.MarkAllRead)
				notifications.PUT("/:id", notificationHandler.MarkRead)
				notifications.DELETE("/:id", notificationHandler.Delete)
			}

			authed.GET("/calendar/:userId", insightHandler.Calendar)
			authed.GET("/analytics/:projectId", insightHandler.Analytics)

			// 管理端
			admin := authed.Group("/admin")
			admin.Use(middleware.RequireRole(constants.RoleAdmin))
			{
				admin.GET("/dashboard", adminHandler.Dashboard)
				admin.GET("/roles", adminHandler.ListRoles)
				admin.GET("/users", adminHandler.ListUsers)
				admin.PUT("/users/:id", adminHandler.UpdateUser)
				admin.DELETE("/users/:id", adminHandler.DeleteUser)
				admin.GET("/projects", adminHandler.ListProjects)
				admin.PUT("/projects/:id", adminHandler.UpdateProject)
				admin.DELETE("/projects/:id", adminHandler.DeleteProject)
				admin.GET("/tasks", adminHandler.ListTasks)
				admin.PUT("/tasks/:id", adminHandler.UpdateTask)
				admin.DELETE("/tasks/:id", adminHandler.DeleteTask)
			}
		}
	}

	return r
}
