package handlers

import (
	"errors"

	"github.com/fairuzullah/edu_lms/middleware"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	p := middleware.Principal(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", p.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return storeError(c)
	}
	return c.JSON(user)
}
