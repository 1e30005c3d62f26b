package main

import (
	"log"

	"license-validation-service/internal/auth"
	"license-validation-service/internal/config"
	"license-validation-service/internal/database"
	"license-validation-service/internal/handler"
	"license-validation-service/internal/license"
	"license-validation-service/internal/middleware"
	"license-validation-service/internal/service"
	"license-validation-service/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config: ", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("open database: ", err)
	}

	licenseStore := store.New(db)
	checker := license.NewChecker(licenseStore)
	gate := auth.NewGate(cfg.AdminAPIKey, cfg.AdminAPIKeyHash)

	sheetSync, err := service.NewSheetSync(cfg.SheetSyncEnabled, cfg.SheetCredentialsPath, cfg.SheetSpreadsheetID, cfg.SheetName)
	if err != nil {
		log.Fatal("init sheet sync: ", err)
	}

	h := handler.New(licenseStore, checker, sheetSync)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	api.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "license-validation-service", "version": version})
	})

	// Public validation endpoint.
	api.Post("/validate", h.HandleValidate)

	// Administrative routes, gated by the shared secret.
	licenses := api.Group("/licenses")
	licenses.Use(middleware.APIKey(gate))
	licenses.Put("/", h.HandleLicenseUpsert)
	licenses.Get("/", h.HandleGetAllLicenses)
	licenses.Get("/:key", h.HandleGetLicense)
	licenses.Delete("/:key", h.HandleLicenseDeactivate)

	log.Fatal(app.Listen(cfg.ListenAddr))
}
