package main

import (
	"log"
	"time"

	config "github.com/fairuzullah/edu_lms/configs"
	"github.com/fairuzullah/edu_lms/database"
	"github.com/fairuzullah/edu_lms/handlers"
	"github.com/fairuzullah/edu_lms/routes"
	"github.com/fairuzullah/edu_lms/storage"
	"github.com/fairuzullah/edu_lms/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	db, err := database.Connect(config.Config("DATABASE_URL"))
	if err != nil {
		log.Fatalf("🔥 Database connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 Database migration failed: %v", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatalf("🔥 Database seeding failed: %v", err)
	}

	store := storage.New(config.ConfigOr("UPLOAD_DIR", "uploads"), config.ConfigOr("BASE_URL", "http://localhost:8080"))

	hub := websocket.NewHub()
	go hub.Run()

	h := handlers.New(db, store, hub)

	app := fiber.New(fiber.Config{
		Prefork:       false,
		AppName:       "Edu LMS",
		CaseSensitive: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  config.ConfigOr("CORS_ORIGINS", "*"),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Disposition, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Static("/uploads", "./"+config.ConfigOr("UPLOAD_DIR", "uploads"))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to Edu LMS API",
		})
	})

	routes.AuthRoutes(app, h)
	routes.ProfileRoutes(app, h)
	routes.CourseRoutes(app, h)
	routes.MaterialRoutes(app, h)
	routes.AssessmentRoutes(app, h)
	routes.SubmissionRoutes(app, h)
	routes.ClassRoutes(app, h)
	routes.UploadRoutes(app, h)
	routes.ChatRoutes(app, h)

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.ConfigOr("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
