package routes

import (
	"github.com/fairuzullah/edu_lms/handlers"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/gofiber/fiber/v2"
)

func CourseRoutes(app *fiber.App, h *handlers.Handler) {
	api := app.Group("/api")

	// Browsing published courses needs no credential.
	api.Get("/courses", h.ListCourses)
	api.Get("/courses/:id", h.GetCourse)

	courses := api.Group("/courses", middleware.Protected(), middleware.TouchLastLogin(h.DB))
	courses.Post("", middleware.EducatorRequired(), h.CreateCourse)
	courses.Put("/:id", middleware.EducatorRequired(), h.UpdateCourse)
	courses.Delete("/:id", middleware.EducatorRequired(), h.DeleteCourse)
	courses.Get("/:id/enrollment-stats", middleware.EducatorRequired(), h.EnrollmentStats)

	courses.Post("/:id/enroll", middleware.LearnerRequired(), h.Enroll)
	courses.Delete("/:id/unenroll", middleware.LearnerRequired(), h.Unenroll)

	api.Get("/educator/courses", middleware.Protected(), middleware.TouchLastLogin(h.DB), middleware.EducatorRequired(), h.EducatorCourses)
	api.Get("/learner/courses", middleware.Protected(), middleware.TouchLastLogin(h.DB), middleware.LearnerRequired(), h.LearnerCourses)

	enrollments := api.Group("/enrollments", middleware.Protected(), middleware.TouchLastLogin(h.DB))
	enrollments.Put("/:id/progress", middleware.EducatorRequired(), h.UpdateProgress)
}
