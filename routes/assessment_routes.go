package routes

import (
	"github.com/fairuzullah/edu_lms/handlers"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/gofiber/fiber/v2"
)

func AssessmentRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api")

	api.Get("/courses/:id/assessments", middleware.Protected(), middleware.TouchLastLogin(h.DB), h.ListCourseAssessments)
	api.Post("/courses/:id/assessments", middleware.Protected(), middleware.TouchLastLogin(h.DB), middleware.EducatorRequired(), h.CreateAssessment)

	assessments := api.Group("/assessments", middleware.Protected(), middleware.TouchLastLogin(h.DB))
	assessments.Get("/:id", h.GetAssessment)
	assessments.Put("/:id", middleware.EducatorRequired(), h.UpdateAssessment)
	assessments.Delete("/:id", middleware.EducatorRequired(), h.DeleteAssessment)
	assessments.Get("/:id/submissions", middleware.EducatorRequired(), h.ListAssessmentSubmissions)
	assessments.Get("/:id/download-all", middleware.EducatorRequired(), h.DownloadAllSubmissions)
	assessments.Post("/:id/submit", middleware.LearnerRequired(), h.SubmitAssessment)
}
