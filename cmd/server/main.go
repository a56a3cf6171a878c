package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neartalkapp/neartalk/internal/config"
	"github.com/neartalkapp/neartalk/internal/handler"
	"github.com/neartalkapp/neartalk/internal/middleware"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/repository"
	"github.com/neartalkapp/neartalk/internal/service"
	"github.com/neartalkapp/neartalk/internal/ws"
	"github.com/neartalkapp/neartalk/migrations"
	"github.com/neartalkapp/neartalk/pkg/cache"
	"github.com/neartalkapp/neartalk/pkg/notification"
	"github.com/neartalkapp/neartalk/pkg/storage"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           NearTalk API
// @version         1.0
// @description     Location-based anonymous chat: subscribe to your nearest station, broadcast to everyone there, message people directly.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey SessionAuth
// @in header
// @name session-id

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log.Printf("starting NearTalk API server [env=%s]", cfg.App.Env)

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	log.Println("connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.Printf("migration warning: %v", err)
		log.Println("falling back to GORM AutoMigrate")
		if err := db.AutoMigrate(
			&model.User{},
			&model.Session{},
			&model.Station{},
			&model.Subscription{},
			&model.PrivateMessage{},
			&model.StationMessage{},
			&model.Unread{},
			&model.PushSubscription{},
		); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}
	log.Println("database migrated")

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	log.Println("connected to Redis")

	// ==================== MinIO Storage ====================
	store, err := storage.NewObjectStore(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to connect to MinIO: %v", err)
	}
	log.Println("connected to MinIO")

	// ==================== Initialize Layers ====================
	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	stationRepo := repository.NewStationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	unreadRepo := repository.NewUnreadRepository(db)
	pushRepo := repository.NewPushRepository(db)

	// Live delivery registry and push dispatcher
	registry := ws.NewRegistry()
	dispatcher, err := notification.NewDispatcher(pushRepo, cfg.Push)
	if err != nil {
		log.Fatalf("failed to initialize push dispatcher: %v", err)
	}

	// Services
	profileCache := cache.NewProfileCache(rdb)
	authService := service.NewAuthService(userRepo, sessionRepo, profileCache, cfg.App.SessionTTL)
	stationService := service.NewStationService(stationRepo, userRepo, messageRepo, cfg.System)
	chatService := service.NewChatService(userRepo, stationRepo, messageRepo, unreadRepo, registry, dispatcher, profileCache, cfg.Chat)
	pushService := service.NewPushService(pushRepo)

	// Handlers
	userHandler := handler.NewUserHandler(authService)
	authHandler := handler.NewAuthHandler(authService)
	stationHandler := handler.NewStationHandler(stationService)
	chatHandler := handler.NewChatHandler(chatService)
	pushHandler := handler.NewPushHandler(pushService, dispatcher)
	uploadHandler := handler.NewUploadHandler(store)
	wsHandler := handler.NewWSHandler(registry)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Swagger
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	// Global middleware
	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "neartalk-api",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api/v1")
	{
		// Public
		api.POST("/users", userHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/push-notifications/vapid-key", pushHandler.VAPIDKey)

		// Protected
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(authService))
		{
			protected.POST("/auth/logout", authHandler.Logout)

			protected.GET("/users/:user_id", userHandler.GetUser)
			protected.PUT("/users/avatar", userHandler.UpdateAvatar)

			protected.POST("/stations", stationHandler.Create)
			protected.POST("/stations/subscribe", stationHandler.Subscribe)

			protected.POST("/messages", chatHandler.AddMessage)
			protected.GET("/messages/:receiver_id", chatHandler.GetChat)
			protected.GET("/chats", chatHandler.GetChats)
			protected.POST("/chats/unread", chatHandler.ResetUnread)

			protected.POST("/push-notifications/subscribe", pushHandler.Subscribe)
			protected.POST("/push-notifications/unsubscribe", pushHandler.Unsubscribe)

			protected.GET("/uploads", uploadHandler.PresignUpload)
			protected.GET("/images", uploadHandler.GetImage)
		}
	}

	// Live channel (association happens in-band via the connect event)
	router.GET("/ws", wsHandler.HandleWebSocket)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	log.Printf("NearTalk API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Printf("API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)
	log.Printf("WebSocket: ws://0.0.0.0:%s/ws", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}
