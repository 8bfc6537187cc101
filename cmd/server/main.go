package main

import (
	"errors"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/example/aurelia/internal/config"
	"github.com/example/aurelia/internal/database"
	"github.com/example/aurelia/internal/models"
	"github.com/example/aurelia/internal/routes"
	"github.com/example/aurelia/internal/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName: "Aurelia Backend",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "authorization, x-client-info, apikey, content-type",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	routes.Register(app, db, cfg)

	if err := seedAdmin(db); err != nil {
		log.Printf("[Main] admin seed failed: %v", err)
	}

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

// seedAdmin creates the bootstrap admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no matching user exists yet.
func seedAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("LOWER(email) = LOWER(?)", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		Email:          email,
		EmailConfirmed: true,
		PasswordHash:   hash,
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		role := models.UserRole{UserID: user.ID, Role: models.RoleAdmin}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		log.Printf("[Main] seeded admin account %s", email)
		return nil
	})
}
