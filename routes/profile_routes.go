package routes

import (
	"github.com/fairuzullah/edu_lms/handlers"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api")

	api.Get("/profile", middleware.Protected(), middleware.TouchLastLogin(h.DB), h.GetProfile)
	api.Get("/stats", middleware.Protected(), middleware.TouchLastLogin(h.DB), h.DashboardStats)

	educator := api.Group("/educator", middleware.Protected(), middleware.TouchLastLogin(h.DB), middleware.EducatorRequired())
	educator.Get("/student-progress", h.StudentProgress)
	educator.Get("/submission-stats", h.SubmissionStats)
	educator.Get("/recent-activities", h.RecentActivities)
	educator.Get("/upcoming-tasks", h.UpcomingTasks)
}
