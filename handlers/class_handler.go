package handlers

import (
	"time"

	"github.com/fairuzullah/edu_lms/authz"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/gofiber/fiber/v2"
)

type VirtualClassRequest struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description"`
	MeetingLink     string    `json:"meeting_link"`
	Schedule        time.Time `json:"schedule" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"gte=0"`
}

type VirtualClassUpdateRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	MeetingLink     *string    `json:"meeting_link"`
	Schedule        *time.Time `json:"schedule"`
	DurationMinutes *int       `json:"duration_minutes"`
	IsActive        *bool      `json:"is_active"`
}

func (h *Handler) ListCourseClasses(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var exists int64
	if err := h.DB.Model(&models.Course{}).Where("id = ?", courseID).Count(&exists).Error; err != nil {
		return storeError(c)
	}
	if exists == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	var classes []models.VirtualClass
	err := h.DB.Where("course_id = ? AND is_active = ?", courseID, true).
		Order("schedule ASC").Find(&classes).Error
	if err != nil {
		return storeError(c)
	}
	return c.JSON(classes)
}

func (h *Handler) CreateClass(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindCourse, courseID, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Course", "schedule classes for this course")
	}

	var req VirtualClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	class := models.VirtualClass{
		CourseID:        courseID,
		Title:           req.Title,
		Description:     req.Description,
		MeetingLink:     req.MeetingLink,
		Schedule:        req.Schedule,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}
	if class.DurationMinutes == 0 {
		class.DurationMinutes = 60
	}

	if err := h.DB.Create(&class).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to schedule class"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Virtual class scheduled successfully",
		"class_id": class.ID,
	})
}

func (h *Handler) UpdateClass(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Virtual class not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindVirtualClass, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Virtual class", "update this virtual class")
	}

	var req VirtualClassUpdateRequest
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
	if req.MeetingLink != nil {
		updates["meeting_link"] = *req.MeetingLink
	}
	if req.Schedule != nil {
		updates["schedule"] = *req.Schedule
	}
	if req.DurationMinutes != nil {
		updates["duration_minutes"] = *req.DurationMinutes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No updates provided"})
	}

	res := h.DB.Model(&models.VirtualClass{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Virtual class updated successfully",
		"updated": res.RowsAffected > 0,
	})
}

func (h *Handler) DeleteClass(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Virtual class not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindVirtualClass, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Virtual class", "delete this virtual class")
	}

	res := h.DB.Delete(&models.VirtualClass{}, id)
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Virtual class deleted successfully",
		"deleted": res.RowsAffected > 0,
	})
}
