package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "displaydeck/internal/app"
	"displaydeck/internal/bootstrap"
	"displaydeck/internal/cache"
	rabbitmqClient "displaydeck/internal/platform/rabbitmq"
	"displaydeck/internal/repository"
	"displaydeck/internal/transport/http/handler"
	"displaydeck/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = 8 << 20

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	operatorRepo := repository.NewOperatorRepository(app.MySQL)
	sessionRepo := repository.NewSessionRepository(app.MySQL)
	displayRepo := repository.NewDisplayRepository(app.MySQL)
	blobRepo := repository.NewBlobRepository(app.MySQL)

	latestCache := cache.NewLatestCache(app.Redis, time.Duration(app.Config.Redis.LatestTTLSeconds)*time.Second)
	cleanupPublisher := rabbitmqClient.NewCleanupPublisher(app.MQConn, app.Config.RabbitMQ.CleanupQueue)

	authService := appsvc.NewAuthService(
		operatorRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	sessionService := appsvc.NewSessionService(sessionRepo, latestCache)
	displayService := appsvc.NewDisplayService(displayRepo)
	blobService := appsvc.NewBlobService(blobRepo, app.Config.Storage.MaxUploadBytes)
	cleanupService := appsvc.NewCleanupService(displayService, blobRepo, app.Logger)

	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	displayHandler := handler.NewDisplayHandler(displayService)
	blobHandler := handler.NewBlobHandler(blobService, app.Config.Storage.MaxUploadBytes)
	adminHandler := handler.NewAdminHandler(blobService, cleanupService, cleanupPublisher.Publish)

	// Blob bytes live at the access-reference path; display clients fetch
	// them without credentials.
	router.GET("/files/:id", blobHandler.Fetch)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	sessionGroup := v1.Group("/sessions")
	sessionGroup.GET("/latest", sessionHandler.GetLatest)
	authed := sessionGroup.Group("")
	authed.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	authed.POST("/start", sessionHandler.Start)
	authed.GET("/current", sessionHandler.GetCurrent)
	authed.PUT("/display-settings", sessionHandler.UpdateDisplaySettings)
	authed.PUT("/slide-sequence", sessionHandler.UpdateSlideSequence)
	authed.PUT("/app-settings", sessionHandler.UpdateAppSettings)
	authed.POST("/logout", sessionHandler.Logout)
	authed.GET("/history", sessionHandler.ListHistory)

	displayGroup := v1.Group("/displays")
	displayGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	displayGroup.POST("", displayHandler.Create)
	displayGroup.GET("", displayHandler.List)
	displayGroup.GET("/:id", displayHandler.Get)
	displayGroup.PUT("/:id", displayHandler.Update)
	displayGroup.DELETE("/:id", displayHandler.Delete)

	blobGroup := v1.Group("/blobs")
	blobGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	blobGroup.POST("", blobHandler.Upload)
	blobGroup.GET("", blobHandler.ListMine)
	blobGroup.DELETE("/:id", blobHandler.Delete)

	adminGroup := v1.Group("/admin")
	adminGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret), middleware.RequireAdmin())
	adminGroup.GET("/blobs", adminHandler.ListAllBlobs)
	adminGroup.POST("/cleanup", adminHandler.Cleanup)
	adminGroup.POST("/purge-unused", adminHandler.PurgeUnused)
	adminGroup.POST("/purge-all", adminHandler.PurgeAll)
	adminGroup.POST("/blobs/delete", adminHandler.DeleteNamed)

	return router
}
