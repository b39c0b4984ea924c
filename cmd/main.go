package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"sourcing_dev_v1_202608/internal/controller"
	"sourcing_dev_v1_202608/internal/model"
	"sourcing_dev_v1_202608/internal/repository"
	"sourcing_dev_v1_202608/internal/router"
	"sourcing_dev_v1_202608/internal/service"
	"sourcing_dev_v1_202608/internal/task"
	"sourcing_dev_v1_202608/pkg/database"
	"sourcing_dev_v1_202608/pkg/utils"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 种子数据
	seedData(deps)

	// 4. 启动定时任务
	initTasks(deps)

	// 5. 初始化路由并启动服务
	r := router.SetupRouter(deps.Controllers)
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Entry   repository.EntryStore
	Profile repository.ProfileRepository
	History repository.HistoryRepository
	Setting repository.SettingRepository
	User    repository.UserRepository
}

// Services 服务集合
type Services struct {
	Auth    *service.AuthService
	Gemini  *service.GeminiService
	Extract *service.ExtractService
	Profile *service.ProfileService
	Export  *service.ExportService
	History *service.HistoryQuery
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	return database.InitDB(
		getEnv("SQLITE_PATH", "sourcing.db"),
		// Account
		&model.SysUser{},
		// Profile
		&model.SyncProfile{}, &model.AppSetting{},
		// History
		&model.ExportRecord{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Entry:   repository.NewEntryStore(),
		Profile: repository.NewProfileRepository(db),
		History: repository.NewHistoryRepository(db),
		Setting: repository.NewSettingRepository(db),
		User:    repository.NewUserRepository(db),
	}

	// -------- 网关 & 基础服务 --------
	geminiSvc := service.NewGeminiService(&service.GeminiConfig{
		ApiKey: getEnv("GEMINI_API_KEY", ""),
		Model:  getEnv("GEMINI_MODEL", ""),
	})
	syncClient := utils.NewSyncClient()

	// -------- 业务服务 --------
	services := &Services{Gemini: geminiSvc}
	services.Auth = service.NewAuthService(repos.User)
	services.Extract = service.NewExtractService(repos.Entry, geminiSvc)
	services.Profile = service.NewProfileService(repos.Profile, repos.Setting)
	services.Export = service.NewExportService(repos.Entry, services.Profile, repos.History, syncClient)
	services.History = service.NewHistoryQuery(repos.History)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:    controller.NewAuthController(services.Auth),
		Entry:   controller.NewEntryController(services.Extract),
		Export:  controller.NewExportController(services.Export, services.History),
		Profile: controller.NewProfileController(services.Profile),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// seedData 首次启动种入默认配置与管理员账号
func seedData(deps *Dependencies) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := deps.Services.Profile.EnsureSeed(ctx); err != nil {
		log.Fatalf("种入默认渠道配置失败: %v", err)
	}
	if err := deps.Services.Auth.EnsureAdmin(ctx,
		getEnv("ADMIN_USERNAME", "admin"),
		getEnv("ADMIN_PASSWORD", "admin123"),
	); err != nil {
		log.Fatalf("种入管理员账号失败: %v", err)
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	cleanupTask := task.NewEntryCleanupTask(deps.Repos.Entry)
	cleanupTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
