package handlers

import (
	"fmt"
	"log"

	"obrolan/internal/apperrors"
	"obrolan/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for signup and login.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required"`
	AgeConfirmed bool   `json:"ageConfirmed"`
	DeviceInfo   string `json:"deviceInfo"`
}

// HandleSignup handles new user registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing signup request body: %v", err)
		return respondError(c, fmt.Errorf("invalid request body: %w", apperrors.ErrValidation))
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, err := h.authService.Register(req.Username, req.Password, req.AgeConfirmed, req.DeviceInfo)
	if err != nil {
		log.Printf("Error registering user %s: %v", req.Username, err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"userId":   user.ID,
			"username": user.Username,
		},
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	DeviceInfo string `json:"deviceInfo"`
}

// HandleLogin handles user login.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return respondError(c, fmt.Errorf("invalid request body: %w", apperrors.ErrValidation))
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, token, err := h.authService.Authenticate(req.Username, req.Password, req.DeviceInfo)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"userId":   user.ID,
			"username": user.Username,
			"banned":   user.Banned,
			"rank":     user.Rank,
		},
		"token": token,
	})
}
