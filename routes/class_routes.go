package routes

import (
	"github.com/fairuzullah/edu_lms/handlers"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/gofiber/fiber/v2"
)

func ClassRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api")

	api.Get("/courses/:id/classes", middleware.Protected(), middleware.TouchLastLogin(h.DB), h.ListCourseClasses)
	api.Post("/courses/:id/classes", middleware.Protected(), middleware.TouchLastLogin(h.DB), middleware.EducatorRequired(), h.CreateClass)

	classes := api.Group("/virtual-classes", middleware.Protected(), middleware.TouchLastLogin(h.DB), middleware.EducatorRequired())
	classes.Put("/:id", h.UpdateClass)
	classes.Delete("/:id", h.DeleteClass)
}
