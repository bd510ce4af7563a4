package routes

import (
	"github.com/fairuzullah/edu_lms/handlers"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/gofiber/fiber/v2"
)

func MaterialRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api")

	api.Get("/courses/:id/materials", middleware.Protected(), middleware.TouchLastLogin(h.DB), h.ListCourseMaterials)
	api.Post("/courses/:id/materials", middleware.Protected(), middleware.TouchLastLogin(h.DB), middleware.EducatorRequired(), h.CreateMaterial)

	materials := api.Group("/materials", middleware.Protected(), middleware.TouchLastLogin(h.DB))
	materials.Get("/:id", h.GetMaterial)
	materials.Get("/:id/file", h.MaterialFile)
	materials.Put("/:id", middleware.EducatorRequired(), h.UpdateMaterial)
	materials.Delete("/:id", middleware.EducatorRequired(), h.DeleteMaterial)
}
