package main

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/config"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/database"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/routes"
	"github.com/ENGLISHWITHTOTO/totobackend/pkg/utils"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	if err := seedDefaultAdmin(cfg); err != nil {
		log.Fatalf("Failed to seed default admin: %v", err)
	}

	// 3. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, database.DB)

	// 4. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// seedDefaultAdmin creates the configured admin account on first boot.
// Skipped when the credentials are unset or the account already exists.
func seedDefaultAdmin(cfg *config.Config) error {
	if cfg.DefaultAdminEmail == "" || cfg.DefaultAdminPass == "" {
		return nil
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(database.DB)

	_, err := userRepo.GetByEmail(ctx, cfg.DefaultAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hashed, err := utils.HashPassword(cfg.DefaultAdminPass)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        cfg.DefaultAdminEmail,
		PasswordHash: hashed,
		Name:         "Administrator",
		Role:         models.RoleAdmin,
	}
	if err := userRepo.CreateUser(ctx, admin); err != nil {
		return err
	}

	log.Printf("Seeded default admin account %s", cfg.DefaultAdminEmail)
	return nil
}
