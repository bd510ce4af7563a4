package handlers

import (
	"github.com/fairuzullah/edu_lms/authz"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CourseRequest struct {
	Title         string  `json:"title" validate:"required"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Price         float64 `json:"price" validate:"gte=0"`
	DurationHours int     `json:"duration_hours" validate:"gte=0"`
}

type CourseUpdateRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Price         *float64 `json:"price"`
	DurationHours *int     `json:"duration_hours"`
	IsPublished   *bool    `json:"is_published"`
}

type CourseSummary struct {
	models.Course
	EducatorName  string `json:"educator_name"`
	EnrolledCount int64  `json:"enrolled_count"`
}

const enrolledCountExpr = "(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = courses.id) AS enrolled_count"

// ListCourses is public and only ever exposes published courses.
func (h *Handler) ListCourses(c *fiber.Ctx) error {
	q := h.DB.Model(&models.Course{}).
		Select("courses.*, users.full_name AS educator_name, " + enrolledCountExpr).
		Joins("JOIN users ON users.id = courses.educator_id").
		Where("courses.is_published = ?", true)

	if category := c.Query("category"); category != "" {
		q = q.Where("courses.category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		q = q.Where("(courses.title LIKE ? OR courses.description LIKE ?)", "%"+search+"%", "%"+search+"%")
	}
	if educatorID, ok := authz.ParseID(c.Query("educator_id")); ok {
		q = q.Where("courses.educator_id = ?", educatorID)
	}

	var courses []CourseSummary
	if err := q.Order("courses.created_at DESC").Scan(&courses).Error; err != nil {
		return storeError(c)
	}
	return c.JSON(courses)
}

func (h *Handler) GetCourse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	type courseDetail struct {
		CourseSummary
		MaterialCount   int64 `json:"material_count"`
		AssessmentCount int64 `json:"assessment_count"`
	}

	var course courseDetail
	res := h.DB.Model(&models.Course{}).
		Select("courses.*, users.full_name AS educator_name, "+enrolledCountExpr+
			", (SELECT COUNT(*) FROM materials m WHERE m.course_id = courses.id) AS material_count"+
			", (SELECT COUNT(*) FROM assessments a WHERE a.course_id = courses.id) AS assessment_count").
		Joins("JOIN users ON users.id = courses.educator_id").
		Where("courses.id = ?", id).
		Limit(1).Scan(&course)
	if res.Error != nil {
		return storeError(c)
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	return c.JSON(course)
}

// EducatorCourses lists the caller's own courses, unpublished included.
// The scope comes from the credential, never from a query parameter.
func (h *Handler) EducatorCourses(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	var courses []CourseSummary
	err := h.DB.Model(&models.Course{}).
		Select("courses.*, users.full_name AS educator_name, "+enrolledCountExpr).
		Joins("JOIN users ON users.id = courses.educator_id").
		Where("courses.educator_id = ?", p.ID).
		Order("courses.created_at DESC").
		Scan(&courses).Error
	if err != nil {
		return storeError(c)
	}
	return c.JSON(courses)
}

func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	p := middleware.Principal(c)
	course := models.Course{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		EducatorID:    p.ID,
		Price:         req.Price,
		DurationHours: req.DurationHours,
	}
	if course.Category == "" {
		course.Category = "General"
	}
	if course.DurationHours == 0 {
		course.DurationHours = 10
	}

	if err := h.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Course created successfully",
		"course":  course,
	})
}

func (h *Handler) UpdateCourse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindCourse, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Course", "update this course")
	}

	var req CourseUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DurationHours != nil {
		updates["duration_hours"] = *req.DurationHours
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No updates provided"})
	}

	res := h.DB.Model(&models.Course{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Course updated successfully",
		"updated": res.RowsAffected > 0,
	})
}

// DeleteCourse removes the course and everything reachable under it in one
// transaction; dependents are never orphaned.
func (h *Handler) DeleteCourse(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindCourse, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Course", "delete this course")
	}

	var deleted bool
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assessment_id IN (?)",
			tx.Model(&models.Assessment{}).Select("id").Where("course_id = ?", id),
		).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Assessment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Material{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.VirtualClass{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return storeError(c)
	}

	return c.JSON(fiber.Map{
		"message": "Course deleted successfully",
		"deleted": deleted,
	})
}
