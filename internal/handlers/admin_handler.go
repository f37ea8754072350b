package handlers

import (
	"fmt"
	"log"

	"obrolan/internal/apperrors"
	"obrolan/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the rank-administration routes and source disclosure.
type AdminHandler struct {
	adminService *services.AdminService
	validate     *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the admin routes with the Fiber app. identity is
// the middleware resolving the caller's username for the source route.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, identity fiber.Handler) {
	adminRoutes := router.Group("/admin")
	adminRoutes.Post("/set-rank", h.HandleSetRank)
	adminRoutes.Post("/publish-update", h.HandlePublishUpdate)
	adminRoutes.Post("/init-rank5", h.HandleInitRank5)

	router.Get("/code", identity, h.HandleSourceCode)
}

// SetRankRequest represents the request body for the rank mutation.
type SetRankRequest struct {
	AdminUsername  string `json:"adminUsername"`
	TargetUsername string `json:"targetUsername" validate:"required"`
	Rank           int    `json:"rank"`
}

// HandleSetRank mutates a target account's rank.
func (h *AdminHandler) HandleSetRank(c *fiber.Ctx) error {
	var req SetRankRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing set-rank request body: %v", err)
		return respondError(c, fmt.Errorf("invalid request body: %w", apperrors.ErrValidation))
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	message, err := h.adminService.SetRank(req.AdminUsername, req.TargetUsername, req.Rank)
	if err != nil {
		log.Printf("Error setting rank of %s: %v", req.TargetUsername, err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// PublishUpdateRequest represents the request body for the update broadcast.
type PublishUpdateRequest struct {
	AdminUsername string `json:"adminUsername"`
	Target        string `json:"target"`
}

// HandlePublishUpdate acknowledges an administrative update broadcast.
func (h *AdminHandler) HandlePublishUpdate(c *fiber.Ctx) error {
	var req PublishUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing publish-update request body: %v", err)
		return respondError(c, fmt.Errorf("invalid request body: %w", apperrors.ErrValidation))
	}

	message, err := h.adminService.PublishUpdate(req.AdminUsername, req.Target)
	if err != nil {
		log.Printf("Error publishing update: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// InitRank5Request represents the request body for the bootstrap grant.
type InitRank5Request struct {
	Secret string `json:"secret"`
}

// HandleInitRank5 performs the one-time secret-gated rank-5 bootstrap.
func (h *AdminHandler) HandleInitRank5(c *fiber.Ctx) error {
	var req InitRank5Request
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing init-rank5 request body: %v", err)
		return respondError(c, fmt.Errorf("invalid request body: %w", apperrors.ErrValidation))
	}

	message, err := h.adminService.InitializeRank5(req.Secret)
	if err != nil {
		log.Printf("Error bootstrapping rank 5: %v", err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// HandleSourceCode serves the source bundle to a rank-5 caller. The identity
// middleware has already resolved the caller's username into locals.
func (h *AdminHandler) HandleSourceCode(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)

	source, err := h.adminService.SourceCode(username)
	if err != nil {
		log.Printf("Error disclosing source to %s: %v", username, err)
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"sourceCode": source,
	})
}
