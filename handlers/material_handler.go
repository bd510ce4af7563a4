package handlers

import (
	"errors"

	"github.com/fairuzullah/edu_lms/authz"
	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MaterialRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	MaterialType string `json:"material_type"`
	FileURL      string `json:"file_url"`
}

type MaterialUpdateRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	MaterialType *string `json:"material_type"`
	FileURL      *string `json:"file_url"`
}

func (h *Handler) ListCourseMaterials(c *fiber.Ctx) error {
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

	var materials []models.Material
	if err := h.DB.Where("course_id = ?", courseID).Order("created_at DESC").Find(&materials).Error; err != nil {
		return storeError(c)
	}
	return c.JSON(materials)
}

func (h *Handler) CreateMaterial(c *fiber.Ctx) error {
	courseID, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindCourse, courseID, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Course", "add materials to this course")
	}

	var req MaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	material := models.Material{
		CourseID:     courseID,
		Title:        req.Title,
		Description:  req.Description,
		MaterialType: req.MaterialType,
		FileURL:      req.FileURL,
	}
	if material.MaterialType == "" {
		material.MaterialType = "pdf"
	}

	if err := h.DB.Create(&material).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create material"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Material added successfully",
		"material_id": material.ID,
	})
}

func (h *Handler) GetMaterial(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}

	type materialDetail struct {
		models.Material
		CourseTitle  string `json:"course_title"`
		EducatorName string `json:"educator_name"`
	}

	var material materialDetail
	res := h.DB.Model(&models.Material{}).
		Select("materials.*, courses.title AS course_title, users.full_name AS educator_name").
		Joins("JOIN courses ON courses.id = materials.course_id").
		Joins("JOIN users ON users.id = courses.educator_id").
		Where("materials.id = ?", id).
		Limit(1).Scan(&material)
	if res.Error != nil {
		return storeError(c)
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}
	return c.JSON(material)
}

func (h *Handler) UpdateMaterial(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindMaterial, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Material", "update this material")
	}

	var req MaterialUpdateRequest
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
	if req.MaterialType != nil {
		updates["material_type"] = *req.MaterialType
	}
	if req.FileURL != nil {
		updates["file_url"] = *req.FileURL
	}
	if len(updates) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No updates provided"})
	}

	res := h.DB.Model(&models.Material{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Material updated successfully",
		"updated": res.RowsAffected > 0,
	})
}

func (h *Handler) DeleteMaterial(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}

	dec, err := h.Auth.CanManage(authz.KindMaterial, id, middleware.Principal(c))
	if err != nil {
		return storeError(c)
	}
	if dec.Outcome != authz.Permit {
		return decisionError(c, dec, "Material", "delete this material")
	}

	res := h.DB.Delete(&models.Material{}, id)
	if res.Error != nil {
		return storeError(c)
	}
	return c.JSON(fiber.Map{
		"message": "Material deleted successfully",
		"deleted": res.RowsAffected > 0,
	})
}

func (h *Handler) MaterialFile(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
	}

	var material models.Material
	err := h.DB.Preload("Course").First(&material, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Material not found"})
		}
		return storeError(c)
	}

	return c.JSON(fiber.Map{
		"file_url":       material.FileURL,
		"file_name":      fileName(material.FileURL),
		"material_title": material.Title,
		"course_title":   material.Course.Title,
	})
}
