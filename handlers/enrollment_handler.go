package handlers

import (
	"errors"
	"time"

	"github.com/fairuzullah/edu_lms/authz"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Enroll creates an enrollment for the calling learner. Unpublished courses
// are invisible here even when the id is guessed.
func (h *Handler) Enroll(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not available for enrollment"})
	}
	p := middleware.Principal(c)

	var course models.Course
	if err := h.DB.First(&course, "id = ? AND is_published = ?", courseID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not available for enrollment"})
		}
		return storeError(c)
	}

	enrollment := models.Enrollment{
		LearnerID: p.ID,
		CourseID:  courseID,
	}
	if err := h.DB.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Already enrolled in this course"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enroll"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Successfully enrolled in course",
		"enrollment_id": enrollment.ID,
	})
}

func (h *Handler) Unenroll(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	p := middleware.Principal(c)

	res := h.DB.Where("learner_id = ? AND course_id = ?", p.ID, courseID).Delete(&models.Enrollment{})
	if res.Error != nil {
		return storeError(c)
	}

	return c.JSON(fiber.Map{
		"message":    "Successfully unenrolled from course",
		"unenrolled": res.RowsAffected > 0,
	})
}

// LearnerCourses lists the caller's enrollments, scoped by the credential.
func (h *Handler) LearnerCourses(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	type enrolledCourse struct {
		models.Course
		EducatorName string    `json:"educator_name"`
		EnrolledAt   time.Time `json:"enrolled_at"`
		Progress     int       `json:"progress"`
		Completed    bool      `json:"completed"`
	}

	var courses []enrolledCourse
	err := h.DB.Model(&models.Enrollment{}).
		Select("courses.*, users.full_name AS educator_name, enrollments.enrolled_at, enrollments.progress, enrollments.completed").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Joins("JOIN users ON users.id = courses.educator_id").
		Where("enrollments.learner_id = ?", p.ID).
		Order("enrollments.enrolled_at DESC").
		Scan(&courses).Error
	if err != nil {
		return storeError(c)
	}
	return c.JSON(courses)
}

type ProgressUpdateRequest struct {
	Progress  *int  `json:"progress"`
	Completed *bool `json:"completed"`
}

// UpdateProgress clamps progress into [0,100]; marking completed without an
// explicit progress value forces progress to 100.
func (h *Handler) UpdateProgress(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Enrollment not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindEnrollment, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Enrollment", "update this enrollment")
	}

	var req ProgressUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	updates := map[string]interface{}{}
	if req.Progress != nil {
		updates["progress"] = clamp(*req.Progress, 0, 100)
	}
	if req.Completed != nil {
		updates["completed"] = *req.Completed
		if *req.Completed && req.Progress == nil {
			updates["progress"] = 100
		}
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No updates provided"})
	}

	res := h.DB.Model(&models.Enrollment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Progress updated successfully",
		"updated": res.RowsAffected > 0,
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
