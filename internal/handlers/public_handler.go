package handlers

import (
	"log"
	"time"

	"obrolan/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PublicHandler handles the unauthenticated query routes: health, the
// username roster and public profiles.
type PublicHandler struct {
	directory *services.DirectoryService
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(directory *services.DirectoryService) *PublicHandler {
	return &PublicHandler{
		directory: directory,
	}
}

// RegisterRoutes registers the public routes with the Fiber app.
func (h *PublicHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
	router.Get("/public/users", h.HandleListUsers)
	router.Get("/profile/:username", h.HandleProfile)
}

// HandleHealth reports liveness.
func (h *PublicHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleListUsers returns every registered username.
func (h *PublicHandler) HandleListUsers(c *fiber.Ctx) error {
	usernames, err := h.directory.ListUsernames()
	if err != nil {
		log.Printf("Error listing usernames: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"users":   usernames,
	})
}

// HandleProfile returns the public profile projection of one user.
func (h *PublicHandler) HandleProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	profile, err := h.directory.Profile(username)
	if err != nil {
		log.Printf("Error fetching profile for %s: %v", username, err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"profile": profile,
	})
}
