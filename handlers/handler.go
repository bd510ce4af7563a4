package handlers

import (
	"strings"

	"github.com/fairuzullah/edu_lms/authz"
	"github.com/fairuzullah/edu_lms/storage"
	"github.com/fairuzullah/edu_lms/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

// Handler carries the injected collaborators every endpoint needs: the
// store pool, the ownership resolver, the blob store and the chat hub.
type Handler struct {
	DB    *gorm.DB
	Auth  *authz.Resolver
	Store *storage.Store
	Hub   *websocket.Hub
}

func New(db *gorm.DB, store *storage.Store, hub *websocket.Hub) *Handler {
	return &Handler{
		DB:    db,
		Auth:  authz.NewResolver(db),
		Store: store,
		Hub:   hub,
	}
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	return authz.ParseID(c.Params(name))
}

// decisionError writes the response for a non-permit decision. Absent
// resources answer 404 before any ownership comparison leaks existence.
func decisionError(c *fiber.Ctx, dec authz.Decision, resource, action string) error {
	if dec.Outcome == authz.NotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": resource + " not found"})
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to " + action})
}

func fileName(fileURL string) string {
	if i := strings.LastIndexByte(fileURL, '/'); i >= 0 {
		return fileURL[i+1:]
	}
	return fileURL
}

func storeError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unexpected database error"})
}
