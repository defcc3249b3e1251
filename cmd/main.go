package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"alsaji_export_v1_202608/internal/controller"
	"alsaji_export_v1_202608/internal/model"
	"alsaji_export_v1_202608/internal/repository"
	"alsaji_export_v1_202608/internal/router"
	"alsaji_export_v1_202608/internal/service"
	"alsaji_export_v1_202608/internal/task"
	"alsaji_export_v1_202608/pkg/database"
	"alsaji_export_v1_202608/pkg/odoo"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	deps.Tasks.Start()
	defer deps.Tasks.Stop()

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Catalog, deps.Controllers.Export)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	Tasks       *task.TaskManager
}

// Repositories 仓库集合
type Repositories struct {
	Product       repository.ProductRepository
	Category      repository.CategoryRepository
	Brand         repository.BrandRepository
	Branch        repository.BranchRepository
	VehicleBrand  repository.VehicleBrandRepository
	VehicleModel  repository.VehicleModelRepository
	Compatibility repository.CompatibilityRepository
	ExportRun     repository.ExportRunRepository
}

// Services 服务集合
type Services struct {
	Catalog   *service.CatalogService
	Aggregate *service.AggregateService
	Compat    *service.CompatService
	Export    *service.ExportService
}

// Controllers 控制器集合
type Controllers struct {
	Catalog *controller.CatalogController
	Export  *controller.ExportController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=alsaji port=5432 sslmode=disable")
	return database.InitDB(dsn,
		// 目录镜像
		&model.Product{}, &model.Category{}, &model.Brand{}, &model.Branch{},
		// 车辆
		&model.VehicleBrand{}, &model.VehicleModel{}, &model.CompatibilityRecord{},
		// 导出轮次
		&model.ExportRun{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Product:       repository.NewProductRepository(db),
		Category:      repository.NewCategoryRepository(db),
		Brand:         repository.NewBrandRepository(db),
		Branch:        repository.NewBranchRepository(db),
		VehicleBrand:  repository.NewVehicleBrandRepository(db),
		VehicleModel:  repository.NewVehicleModelRepository(db),
		Compatibility: repository.NewCompatibilityRepository(db),
		ExportRun:     repository.NewExportRunRepository(db),
	}

	// -------- 上游客户端 --------
	baseURL := getEnv("ODOO_BASE_URL", "http://localhost:8069")
	client := odoo.NewClient(odoo.Config{
		BaseURL:  baseURL,
		DB:       getEnv("ODOO_DB", "alsaji_copy"),
		Username: getEnv("ODOO_USERNAME", ""),
		Password: getEnv("ODOO_PASSWORD", ""),
		ProxyURL: getEnv("ODOO_PROXY_URL", ""),
	})

	// -------- 业务服务 --------
	prices := service.NewPriceResolver(envFloat("CURRENCY_RATE", 0))
	normalizer := service.NewNormalizer(baseURL, prices)

	services := &Services{
		Catalog:   service.NewCatalogService(client, normalizer),
		Aggregate: service.NewAggregateService(),
		Compat:    service.NewCompatService(),
	}

	mirror := repository.NewSnapshotMirror(
		repos.Product, repos.Category, repos.Brand, repos.Branch,
		repos.VehicleBrand, repos.VehicleModel, repos.Compatibility,
	)
	services.Export = service.NewExportService(
		services.Catalog, mirror, repos.ExportRun,
		services.Aggregate, services.Compat,
		getEnv("EXPORT_OUTPUT_DIR", "./data"),
	)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Catalog: controller.NewCatalogController(
			repos.Product, repos.Category, repos.Brand, repos.Branch,
			repos.VehicleBrand, repos.VehicleModel, repos.Compatibility,
			services.Aggregate, services.Compat,
		),
		Export: controller.NewExportController(services.Export),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Tasks:       task.NewTaskManager(services.Export, nil),
	}
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

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
