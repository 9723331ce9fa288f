package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/directory"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/scheduling"
	"clinic-booking-server/internal/stats"
)

// SetupRoutes wires the components together and configures the application
// routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Core components
	dir := directory.New(db)
	ledger := scheduling.NewLedger(db)
	engine := scheduling.NewEngine(ledger, dir)
	aggregator := stats.New(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(db, cfg, dir)
	appointmentHandler := handlers.NewAppointmentHandler(engine)
	doctorHandler := handlers.NewDoctorHandler(dir)
	adminHandler := handlers.NewAdminHandler(db, dir, engine, aggregator)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			// Only patients book; the engine and state machine gate everything else per actor
			appointmentRoutes.POST("/book", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.Book)

			appointmentRoutes.PUT("/confirm/:id", appointmentHandler.Confirm)
			appointmentRoutes.PUT("/reject/:id", appointmentHandler.Reject)
			appointmentRoutes.PUT("/complete/:id", appointmentHandler.Complete)
			appointmentRoutes.PUT("/cancel/:id", appointmentHandler.Cancel)

			appointmentRoutes.GET("/my",
				middleware.RoleAuthMiddleware(models.RolePatient, models.RoleDoctor),
				appointmentHandler.GetMyAppointments)

			// Involved patient, assigned doctor, or admin (checked in handler)
			appointmentRoutes.GET("/:id", appointmentHandler.GetByID)
		}

		// Doctor directory routes
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/available", doctorHandler.GetAvailableDoctors)
			doctorRoutes.GET("/search", doctorHandler.SearchDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)
		}

		// Admin routes
		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.GET("/stats", adminHandler.GetStats)
			adminRoutes.GET("/users", adminHandler.GetUsers)
			adminRoutes.GET("/doctors", adminHandler.GetDoctors)
			adminRoutes.GET("/appointments", adminHandler.GetAppointments)
			adminRoutes.PUT("/doctors/:id/toggle-availability", adminHandler.ToggleDoctorAvailability)
			adminRoutes.PUT("/users/:id/toggle-active", adminHandler.ToggleUserActive)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
