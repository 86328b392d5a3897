package routes

import (
	"time"

	"medtrack-api/internal/adapters/http/handlers"
	"medtrack-api/internal/adapters/http/middleware"
	"medtrack-api/internal/adapters/persistence/repositories"
	"medtrack-api/internal/config"
	"medtrack-api/internal/core/authz"
	"medtrack-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	medicationRepo := repositories.NewMedicationRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo)
	medicationStore := services.NewMedicationStore(medicationRepo, cfg.Location)
	medicationService := services.NewMedicationService(medicationStore, medicationRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo, cfg.Location)
	feedbackService := services.NewFeedbackService(feedbackRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg, config.HealthCheck)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	medicationHandler := handlers.NewMedicationHandler(medicationService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)

	gate := authz.NewGate(cfg.JWT.Secret)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", middleware.CacheControl(5*time.Minute), healthHandler.APIInfo)

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, gate)
	setupProfileRoutes(apiV1.Group("/profile", middleware.Authorize(gate, "")), userHandler)
	setupUserRoutes(apiV1.Group("/users"), userHandler, gate)
	setupMedicationRoutes(
		apiV1.Group("/users/:userId/medications", middleware.Authorize(gate, "userId"), middleware.NoCacheHeaders()),
		medicationHandler,
	)
	setupAppointmentRoutes(apiV1.Group("/appointments", middleware.Authorize(gate, "")), appointmentHandler)
	setupFeedbackRoutes(apiV1.Group("/feedback", middleware.Authorize(gate, "")), feedbackHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, gate *authz.Gate) {
	// Public routes
	router.Post("/register", middleware.StrictRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.Authorize(gate, ""), handler.Me)
}

// setupProfileRoutes configures profile routes
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler, gate *authz.Gate) {
	router.Get("/", middleware.Authorize(gate, ""), middleware.AdminOnly(), handler.ListUsers)
	router.Get("/:userId", middleware.Authorize(gate, "userId"), handler.GetUser)
}

// setupMedicationRoutes configures the per-user medication routes
func setupMedicationRoutes(router fiber.Router, handler *handlers.MedicationHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)

	// Static views before /:id
	router.Get("/daily", handler.Daily)
	router.Get("/weekly", handler.Weekly)
	router.Get("/search", handler.Search)
	router.Get("/expired", handler.Expired)
	router.Get("/reminders", handler.Reminders)

	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
	router.Post("/:id/tick-off", handler.TickOff)
	router.Post("/:id/refill", handler.Refill)
}

// setupAppointmentRoutes configures appointment routes
func setupAppointmentRoutes(router fiber.Router, handler *handlers.AppointmentHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/date/:date", handler.GetByDate)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}

// setupFeedbackRoutes configures feedback routes
func setupFeedbackRoutes(router fiber.Router, handler *handlers.FeedbackHandler) {
	router.Post("/", handler.Submit)
	router.Get("/", middleware.AdminOnly(), handler.List)
}
