package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jig_platform_backend/internal/config"
	"jig_platform_backend/internal/controller"
	"jig_platform_backend/internal/repository"
	"jig_platform_backend/internal/service"
	"jig_platform_backend/pkg/configwatcher"
	"jig_platform_backend/pkg/database"
	"jig_platform_backend/pkg/logger"
	"jig_platform_backend/pkg/monitoring"
	"jig_platform_backend/pkg/security"
	"jig_platform_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	activity *repository.ActivityRepository
	module   *repository.ModuleRepository
	resource *repository.AdditionalResourceRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	media      *service.MediaService
	activity   *service.ActivityService
	module     *service.ModuleService
	resource   *service.ResourceService
	sessionHub *service.SessionHub
}

type controllers struct {
	auth     *controller.AuthController
	activity *controller.ActivityController
	module   *controller.ModuleController
	resource *controller.ResourceController
	media    *controller.MediaController
	session  *controller.SessionController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		activity: repository.NewActivityRepository(db),
		module:   repository.NewModuleRepository(db),
		resource: repository.NewAdditionalResourceRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.media = service.NewMediaService(s.storage)
	s.module = service.NewModuleService(repos.module, repos.activity, db, rdb)
	s.activity = service.NewActivityService(repos.activity, repos.module, db, rdb)
	s.resource = service.NewResourceService(repos.resource, repos.activity, s.storage)

	s.sessionHub = service.NewSessionHub(rdb, cfg.CORS.AllowedOrigins)
	go s.sessionHub.Run()

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth, a.Config.Server.Mode == "release"),
		activity: controller.NewActivityController(s.activity),
		module:   controller.NewModuleController(s.module),
		resource: controller.NewResourceController(s.resource),
		media:    controller.NewMediaController(s.media),
		session:  controller.NewSessionController(s.sessionHub),
		health:   controller.NewHealthController(db),
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

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	// release 模式默认跳过迁移，可用 -migrate 强制
	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != "release")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("jig-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 配置热加载：仅对回调方生效，不重启已建立的连接
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		updated, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		app.Config = updated
		for _, callback := range app.configCallbacks {
			callback(updated)
		}
		logger.Log.Info("Config reloaded")
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 清理 WebSocket 连接和 Redis 在线状态
	if a.services != nil && a.services.sessionHub != nil {
		a.services.sessionHub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
