package routes

import (
	"github.com/fairuzullah/edu_lms/handlers"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/gofiber/fiber/v2"
)

func SubmissionRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api")

	submissions := api.Group("/submissions", middleware.Protected(), middleware.TouchLastLogin(h.DB))
	submissions.Put("/:id", middleware.EducatorRequired(), h.GradeSubmission)
	// Author checks happen in the handler so admins can also act here.
	submissions.Put("/:id/edit", h.EditSubmission)
	submissions.Delete("/:id", h.DeleteSubmission)
	submissions.Get("/:id/file", h.SubmissionFile)

	api.Get("/learner/submissions", middleware.Protected(), middleware.TouchLastLogin(h.DB), middleware.LearnerRequired(), h.LearnerSubmissions)
	api.Get("/learner/recent-submissions", middleware.Protected(), middleware.TouchLastLogin(h.DB), middleware.LearnerRequired(), h.LearnerRecentSubmissions)
}
