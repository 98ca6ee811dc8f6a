package main

import (
	"log"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"drivebox/config"
	"drivebox/database"
	"drivebox/handlers"
	"drivebox/middleware"
	"drivebox/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := config.GetConfig()

	// 初始化数据库
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 可选的 ClickHouse 访问日志存储
	var chConn driver.Conn
	if config.IsClickHouseEnabled() {
		chConn, err = database.OpenClickHouse(config.GetClickHouseConfig())
		if err != nil {
			log.Fatalf("初始化 ClickHouse 失败: %v", err)
		}
		defer chConn.Close()
	}

	// 对象存储（local 或 s3）
	storageCfg := config.LoadStorageConfig()
	objectStorage, err := services.NewObjectStorage(storageCfg)
	if err != nil {
		log.Fatalf("初始化对象存储失败: %v", err)
	}
	log.Printf("Object storage initialized - type: %s", storageCfg.Type)

	// 服务与处理器
	hierarchy := services.NewHierarchyService(db, objectStorage)
	accessLogs := services.NewAccessLogStore(db, chConn)

	jwtSecret := []byte(cfg.JWTSecret)
	authHandler := handlers.NewAuthHandler(db, hierarchy, jwtSecret)
	folderHandler := handlers.NewFolderHandler(hierarchy)
	fileHandler := handlers.NewFileHandler(hierarchy, objectStorage, accessLogs)

	// 创建 Gin 路由
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// CORS 配置
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true, // 允许所有来源（仅开发环境）
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// 本地存储时直接静态托管上传目录
	if !storageCfg.IsS3Enabled() {
		r.Static("/uploads", storageCfg.UploadDir)
	}

	// 公开路由
	public := r.Group("/api")
	public.Use(middleware.RateLimit(30))
	{
		public.POST("/login", authHandler.Login)
		public.POST("/register", authHandler.Register)
	}

	// 需要认证的路由
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", authHandler.GetCurrentUser)

		// 文件夹管理
		protected.GET("/folders", folderHandler.ListFolders)
		protected.POST("/folders", folderHandler.CreateFolder)
		protected.PATCH("/folders/:id", folderHandler.RenameFolder)
		protected.DELETE("/folders/:id", folderHandler.DeleteFolder)

		// 文件管理
		protected.GET("/files", fileHandler.ListFiles)
		protected.POST("/files", fileHandler.CreateFile)
		protected.POST("/files/upload", fileHandler.UploadFile)
		protected.PATCH("/files/:id", fileHandler.UpdateFile)
		protected.DELETE("/files/:id", fileHandler.DeleteFile)
		protected.GET("/files/:id/download", fileHandler.DownloadFile)
		protected.GET("/files/:id/presigned-url", fileHandler.GetPresignedURL)
		protected.GET("/files/:id/access-logs", fileHandler.GetAccessLogs)
	}

	// 启动服务器
	port := cfg.ServerPort
	log.Printf("Server starting on port %s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
