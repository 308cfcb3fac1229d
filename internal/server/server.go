package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/farrasdika/eventa/config"
	"github.com/farrasdika/eventa/internal/booking"
	"github.com/farrasdika/eventa/internal/handlers"
	"github.com/farrasdika/eventa/internal/middleware"
	"github.com/farrasdika/eventa/internal/models"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))

	setupRoutes(r, db, cfg)

	return r.Run(":" + cfg.Port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	bookingService := booking.NewService(booking.NewGormStore(db))
	store := handlers.NewGormStore(db)

	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret, cfg.Env == "production")
	eventHandler := handlers.NewEventHandler(store)
	ticketHandler := handlers.NewTicketHandler(store)
	bookingHandler := handlers.NewBookingHandler(bookingService, cfg.JWTSecret)

	r.Static("/uploads", "./uploads")

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	events := api.Group("/events")
	{
		events.GET("", eventHandler.ListEvents)
		events.GET("/:id", eventHandler.GetEvent)
	}

	organizerEvents := api.Group("/events")
	organizerEvents.Use(middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(models.RoleOrganizer))
	{
		organizerEvents.POST("", eventHandler.CreateEvent)
		organizerEvents.PUT("/:id", eventHandler.UpdateEvent)
		organizerEvents.DELETE("/:id", eventHandler.DeleteEvent)
	}

	tickets := api.Group("/tickets")
	tickets.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		tickets.GET("/:id", ticketHandler.GetTicket)
	}

	organizerTickets := api.Group("/tickets")
	organizerTickets.Use(middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(models.RoleOrganizer))
	{
		organizerTickets.POST("", ticketHandler.CreateTicket)
		organizerTickets.PUT("/:id", ticketHandler.UpdateTicket)
		organizerTickets.DELETE("/:id", ticketHandler.DeleteTicket)
	}

	bookings := api.Group("/bookings")
	bookings.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		bookings.POST("", bookingHandler.CreateBooking)
		bookings.GET("", bookingHandler.ListBookings)
		bookings.GET("/:id/qr", bookingHandler.GenerateBookingQR)
		bookings.POST("/validate", bookingHandler.ValidateBookingQR)
	}
}
