package app

import (
	"jig_platform_backend/docs"
	"jig_platform_backend/internal/config"
	"jig_platform_backend/internal/middleware"
	"jig_platform_backend/internal/model"
	"jig_platform_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 编辑器/播放器使用的 /v1 接口
	a.registerV1Routes(router, c, cfg)

	// 3. 需要授权的管理接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerAuthorRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 公开资产详情(播放页直接访问 live 视图)
		public.GET("/activities/:id", c.activity.Get)
		public.GET("/activities/:id/resources", c.resource.List)
	}
}

// registerV1Routes 编辑器 iframe 与播放器直接消费的接口。
// 返回模块线格式而不是 code/message 信封。
func (a *App) registerV1Routes(router *gin.Engine, c *controllers, cfg *config.Config) {
	v1 := router.Group("/v1")
	{
		// 播放器读 live 槽位无需登录；draft 槽位在 handler 内要求作者或管理员
		v1.GET("/module/:slot/:activity/:module", middleware.TryAuthMiddleware(cfg), c.module.GetModule)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware(cfg))
		{
			authorized.POST("/module", c.module.CreateModule)
			authorized.POST("/module/clone", c.module.CloneModule)
			authorized.PATCH("/module/draft/:activity/:module", c.module.UpdateDraft)
			authorized.DELETE("/module/:activity/:module", c.module.DeleteModule)
			authorized.PUT("/:asset_kind/:id/draft/publish", c.activity.Publish)
		}
	}
}

func (a *App) registerAuthorRoutes(group *gin.RouterGroup, c *controllers) {
	activities := group.Group("/activities")
	activities.Use(middleware.RoleMiddleware(model.Author))
	{
		activities.POST("", c.activity.Create)
		activities.GET("", c.activity.List)
		activities.PATCH("/:id", c.activity.Update)
		activities.DELETE("/:id", c.activity.Delete)
		activities.POST("/:id/resources", c.resource.Create)
		activities.POST("/:id/resources/upload", c.resource.Upload)
	}

	group.DELETE("/resources/:resource_id", middleware.RoleMiddleware(model.Author), c.resource.Delete)

	media := group.Group("/media")
	{
		media.POST("/image", c.media.UploadImage)
		media.POST("/audio", c.media.UploadAudio)
		media.POST("/video", c.media.UploadVideo)
	}

	session := group.Group("/session")
	{
		session.GET("/:activity/:module", c.session.Connect)
		session.GET("/:activity/:module/participants", c.session.Participants)
	}

	group.GET("/me", c.auth.Me)
}
