package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"medtrack-api/internal/adapters/http/middleware"
	"medtrack-api/internal/adapters/http/routes"
	"medtrack-api/internal/adapters/persistence/models"
	"medtrack-api/internal/adapters/persistence/repositories"
	"medtrack-api/internal/config"
	"medtrack-api/internal/core/services"
	"medtrack-api/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	_ "medtrack-api/docs" // Swagger docs
)

// @title MedTrack API
// @version 1.0
// @description Medication schedule, refill and appointment tracking API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	serve := serveCmd()

	rootCmd := &cobra.Command{
		Use:   "medtrack-api",
		Short: "MedTrack API server",
		RunE:  serve.RunE,
	}

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			return migrate(db)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user from ADMIN_* settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			return config.NewSeeder(db, cfg.Admin).Run(cmd.Context())
		},
	}
}

// bootstrap loads configuration, configures logging and opens the database
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to load configuration")
		return nil, nil, err
	}

	logger.Setup(cfg.LogLevel, cfg.IsDev())

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to connect to database")
		return nil, nil, err
	}
	return cfg, db, nil
}

func migrate(db *gorm.DB) error {
	if err := models.AutoMigrate(db); err != nil {
		log.Error().Err(err).Msg("❌ Failed to auto migrate")
		return err
	}
	log.Info().Msg("✅ Database migration completed")
	return nil
}

func runServer() error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer config.CloseDatabase()

	if err := migrate(db); err != nil {
		return err
	}

	if err := config.NewSeeder(db, cfg.Admin).Run(context.Background()); err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to seed admin user")
	}

	// Reminder dispatch
	medicationStore := services.NewMedicationStore(repositories.NewMedicationRepository(db), cfg.Location)
	authService := services.NewAuthService(
		repositories.NewUserRepository(db),
		repositories.NewRefreshTokenRepository(db),
		cfg,
	)
	reminderService := services.NewReminderService(
		medicationStore,
		services.NewNotificationService(cfg.Reminder.WebhookURL),
		authService,
		cfg.Reminder.Horizon,
	)
	if err := reminderService.Start(cfg.Reminder.Schedule); err != nil {
		log.Error().Err(err).Msg("❌ Failed to start reminder scheduler")
		return err
	}
	defer reminderService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "MedTrack API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	log.Info().Str("port", cfg.Port).Str("mode", cfg.AppMode).Msg("🚀 Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error().Err(err).Msg("❌ Failed to start server")
		return err
	}
	return nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("❌ Error during shutdown")
	}
	log.Info().Msg("✅ Server stopped gracefully")
}
