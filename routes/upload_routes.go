package routes

import (
	"github.com/fairuzullah/edu_lms/handlers"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api")

	uploads := api.Group("/upload", middleware.Protected(), middleware.TouchLastLogin(h.DB))
	uploads.Post("/submission", middleware.LearnerRequired(), h.UploadSubmission)
	uploads.Post("/material", middleware.EducatorRequired(), h.UploadMaterial)
}
