package routes

import (
	"github.com/campusswap/backend/internal/api/handlers"
	"github.com/campusswap/backend/internal/api/middleware"
	"github.com/campusswap/backend/internal/config"
	"github.com/campusswap/backend/internal/events"
	"github.com/campusswap/backend/internal/realtime"
	"github.com/campusswap/backend/internal/services"
	"github.com/campusswap/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, hub *realtime.Hub) {
	// Middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg))

	// Event bus: the realtime hub is a best-effort subscriber, fed
	// after the durable writes commit.
	bus := events.NewBus()
	bus.Subscribe(func(e events.Event) {
		if m, ok := e.(events.MessagePosted); ok {
			hub.Broadcast(m.ChatID, realtime.MessageEvent{
				Type:        "message",
				ID:          m.MessageID,
				Text:        m.Text,
				CreatedAt:   m.CreatedAt,
				AuthorID:    m.AuthorID,
				AuthorAlias: m.AuthorAlias,
			})
		}
	})

	// Initialize services
	emailService := services.NewEmailService(cfg)
	s3Service := services.NewS3Service(cfg.AWSRegion, cfg.S3Bucket, cfg.AWSAccessKey, cfg.AWSSecretKey)
	authService := services.NewAuthService(db, cfg.JWTSecret, emailService)
	notificationService := services.NewNotificationService(db)
	listingService := services.NewListingService(db, s3Service)
	chatService := services.NewChatService(db, notificationService, bus)
	messageService := services.NewMessageService(db, notificationService, bus)
	ratingService := services.NewRatingService(db, notificationService, bus)
	reportService := services.NewReportService(db, emailService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	listingHandler := handlers.NewListingHandler(listingService)
	chatHandler := handlers.NewChatHandler(chatService)
	messageHandler := handlers.NewMessageHandler(messageService)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reportHandler := handlers.NewReportHandler(reportService)
	wsHandler := handlers.NewWSHandler(hub, chatService, cfg.JWTSecret)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "message": "Server is running"})
	})

	// Realtime channel, one subscription per chat
	router.GET("/ws/chats/:chat_id", wsHandler.Subscribe)

	// API routes
	api := router.Group("/api/v1")

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/profile", middleware.AuthMiddleware(cfg), authHandler.GetProfile)
		auth.PUT("/profile", middleware.AuthMiddleware(cfg), authHandler.UpdateProfile)
	}

	// Listing routes
	listings := api.Group("/listings")
	{
		listings.GET("", listingHandler.GetListings)
		listings.GET("/:listing_id", listingHandler.GetListing)
		listings.POST("", middleware.AuthMiddleware(cfg), listingHandler.CreateListing)
		listings.GET("/mine", middleware.AuthMiddleware(cfg), listingHandler.MyListings)
		listings.PUT("/:listing_id", middleware.AuthMiddleware(cfg), listingHandler.UpdateListing)
		listings.DELETE("/:listing_id", middleware.AuthMiddleware(cfg), listingHandler.DeactivateListing)
		listings.POST("/:listing_id/images", middleware.AuthMiddleware(cfg), listingHandler.UploadImage)
	}

	// Chat routes
	chats := api.Group("/chats", middleware.AuthMiddleware(cfg))
	{
		chats.POST("", chatHandler.StartChat)
		chats.GET("", chatHandler.MyChats)
		chats.GET("/:chat_id", chatHandler.GetChat)
		chats.PATCH("/:chat_id/complete", chatHandler.CompleteExchange)
	}

	// Message routes
	messages := api.Group("/messages", middleware.AuthMiddleware(cfg))
	{
		messages.GET("", messageHandler.ListMessages)
		messages.POST("", messageHandler.PostMessage)
	}

	// Rating routes
	ratings := api.Group("/ratings", middleware.AuthMiddleware(cfg))
	{
		ratings.POST("", ratingHandler.RateChat)
	}
	api.GET("/users/:user_id/ratings", ratingHandler.ReceivedRatings)

	// Notification routes
	notifications := api.Group("/notifications", middleware.AuthMiddleware(cfg))
	{
		notifications.GET("", notificationHandler.List)
		notifications.PATCH("/:notification_id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
	}

	// Report routes
	reports := api.Group("/reports", middleware.AuthMiddleware(cfg))
	{
		reports.POST("", reportHandler.CreateReport)
		reports.GET("", middleware.AdminOnly(), reportHandler.ListReports)
		reports.PATCH("/:report_id/moderate", middleware.AdminOnly(), reportHandler.ModerateReport)
	}

	logger.Info("Routes initialized successfully")
}
