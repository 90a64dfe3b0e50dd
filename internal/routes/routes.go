package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/car2go/car2go-api/internal/audit"
	"github.com/car2go/car2go-api/internal/cache"
	"github.com/car2go/car2go-api/internal/config"
	"github.com/car2go/car2go-api/internal/handlers"
	infraRepo "github.com/car2go/car2go-api/internal/infra/repository"
	"github.com/car2go/car2go-api/internal/middleware"
	"github.com/car2go/car2go-api/internal/scheduler"
	"github.com/car2go/car2go-api/internal/storage"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	sched := scheduler.New(bookingRepo, auditDispatcher, cfg.SchedulerLockWait)

	carCache := cache.NewCarCache(cfg)
	imageStore := storage.NewImageStore(cfg)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	userHandler := handlers.NewUserHandler(db)
	carHandler := handlers.NewCarHandler(db, carCache, imageStore)
	bookingHandler := handlers.NewBookingHandler(db, bookingRepo, sched)
	supervisionHandler := handlers.NewSupervisionHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	paymentHandler, err := handlers.NewPaymentHandler(cfg)
	if err != nil {
		log.Printf("payments disabled: %v", err)
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PUBLIC CATALOGUE
		// ------------------------------
		api.GET("/cars", carHandler.List)
		api.GET("/cars/:id", carHandler.Get)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/users", userHandler.List)
			secured.GET("/users/:id", userHandler.Get)
			secured.PUT("/users/:id", userHandler.Update)
			secured.DELETE("/users/:id", userHandler.Delete)

			secured.POST("/cars", carHandler.Create)
			secured.PUT("/cars/:id", carHandler.Update)
			secured.DELETE("/cars/:id", carHandler.Delete)
			secured.POST("/cars/:id/image", carHandler.UploadImage)

			// ------------------------------
			// BOOKINGS
			// ------------------------------
			secured.POST("/bookings", bookingHandler.Create)
			secured.GET("/bookings", bookingHandler.List)
			secured.GET("/bookings/user", bookingHandler.ListMine)
			secured.GET("/bookings/:id", bookingHandler.Get)
			secured.PUT("/bookings/:id", bookingHandler.Update)
			secured.DELETE("/bookings/:id", bookingHandler.Delete)

			secured.POST("/supervisions", supervisionHandler.Create)
			secured.GET("/supervisions/:id", supervisionHandler.ListForApprentice)

			if paymentHandler != nil {
				secured.POST("/payments/intent", paymentHandler.CreateIntent)
			}

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
