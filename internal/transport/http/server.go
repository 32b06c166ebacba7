package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"propertydesk/internal/bootstrap"
	"propertydesk/internal/guard"
	mysqlClient "propertydesk/internal/platform/mysql"
	rabbitmqClient "propertydesk/internal/platform/rabbitmq"
	redisClient "propertydesk/internal/platform/redis"
	"propertydesk/internal/session"
	"propertydesk/internal/transport/http/handler"
	"propertydesk/internal/transport/http/middleware"
)

func NewRouter(a *bootstrap.App) *gin.Engine {
	gin.SetMode(a.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(a.Logger.Named("http")), gin.Recovery())

	accessor := session.NewAccessor(a.Config.Auth.JWTSecret, a.Config.Auth.CookieName)
	routeGuard := guard.New(a.Profiles)
	router.Use(middleware.Session(accessor))

	healthHandler := handler.NewHealthHandler(a.Config.App.Name, a.Config.App.Env, a.StartedAt, map[string]handler.HealthCheck{
		"mysql": func(ctx context.Context) error { return mysqlClient.Ping(ctx, a.MySQL) },
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx, a.Redis) },
		"rabbitmq": func(context.Context) error {
			return rabbitmqClient.Ping(a.MQConn)
		},
	})
	authHandler := handler.NewAuthHandler(a.Auth, handler.CookieOptions{
		Name:   a.Config.Auth.CookieName,
		MaxAge: a.Config.JWTExpiration(),
		Secure: !a.Config.IsDev(),
	})
	propertyHandler := handler.NewPropertyHandler(a.Properties)
	scrapeHandler := handler.NewScrapeHandler(a.Properties)
	kbHandler := handler.NewKnowledgeBaseHandler(a.KnowledgeBase, a.Logger.Named("http.knowledge_base"))
	navigationHandler := handler.NewNavigationHandler(routeGuard, a.Config.App.WebDir)

	router.GET("/healthz", healthHandler.Check)

	api := router.Group("/api")
	api.GET("/navigation", navigationHandler.Decide)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", middleware.RequireSession(), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.RequireSession())
	protected.POST("/scrape-property", scrapeHandler.Scrape)
	protected.POST("/scrape-property/batch", propertyHandler.EnqueueScrapes)

	properties := protected.Group("/properties")
	properties.GET("", propertyHandler.List)
	properties.POST("", propertyHandler.Create)
	properties.POST("/scan", propertyHandler.Scan)
	properties.POST("/import", propertyHandler.ImportSpreadsheet)
	properties.POST("/import-pdf", propertyHandler.ImportPDF)
	properties.GET("/:id", propertyHandler.Get)
	properties.PATCH("/:id", propertyHandler.Update)
	properties.DELETE("/:id", propertyHandler.Delete)

	agents := protected.Group("/ai-agent")
	agents.POST("/assign-knowledge-base", kbHandler.Assign)
	agents.GET("/knowledge-base", kbHandler.List)
	agents.POST("/knowledge-base", kbHandler.Track)
	agents.GET("/agents", kbHandler.ListAgents)

	protected.POST("/admin/user-agents", kbHandler.BindAgent)

	router.NoRoute(middleware.PageGuard(routeGuard), navigationHandler.Page)
	return router
}
