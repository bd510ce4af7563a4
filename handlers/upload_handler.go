package handlers

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/fairuzullah/edu_lms/storage"
	"github.com/gofiber/fiber/v2"
)

// UploadSubmission stores a learner's answer file and hands back the URL
// to reference from /api/assessments/:id/submit.
func (h *Handler) UploadSubmission(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}

	p := middleware.Principal(c)
	fileURL, err := h.Store.SaveSubmission(p.ID, file)
	if err != nil {
		return uploadError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":   "File uploaded successfully",
		"file_url":  fileURL,
		"file_name": file.Filename,
		"file_size": file.Size,
		"file_type": strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), "."),
	})
}

func (h *Handler) UploadMaterial(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}

	p := middleware.Principal(c)
	fileURL, err := h.Store.SaveMaterial(p.ID, file)
	if err != nil {
		return uploadError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":   "Material file uploaded successfully",
		"file_url":  fileURL,
		"file_name": file.Filename,
		"file_size": file.Size,
		"file_type": strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), "."),
	})
}

func uploadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File exceeds the size limit"})
	case errors.Is(err, storage.ErrTypeNotAllowed):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File type is not allowed"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store file"})
	}
}
