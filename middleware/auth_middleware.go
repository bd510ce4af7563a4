package middleware

import (
	"time"

	"github.com/fairuzullah/edu_lms/authz"
	config "github.com/fairuzullah/edu_lms/configs"
	"github.com/fairuzullah/edu_lms/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"error": "Invalid or missing authentication token"})
}

// Principal extracts the acting user from the verified token. The role and
// id embedded at login time are the only identity trusted for authorization.
func Principal(c *fiber.Ctx) authz.Principal {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)

	id, _ := claims["user_id"].(float64)
	role, _ := claims["role"].(string)

	return authz.Principal{ID: uint(id), Role: role}
}

// TouchLastLogin records activity for the authenticated user.
func TouchLastLogin(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := Principal(c)
		db.Model(&models.User{}).Where("id = ?", p.ID).
			UpdateColumn("last_login", time.Now())
		return c.Next()
	}
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Principal(c).Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Admin access required",
			})
		}
		return c.Next()
	}
}

// EducatorRequired admits educators and admins.
func EducatorRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Principal(c).Role
		if role != models.RoleEducator && role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Educator access required",
			})
		}
		return c.Next()
	}
}

func LearnerRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Principal(c).Role != models.RoleLearner {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Learner access required",
			})
		}
		return c.Next()
	}
}
