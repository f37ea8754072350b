package handlers

import (
	"errors"
	"fmt"
	"strings"

	"obrolan/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// All routes share one response envelope: {success:true, ...} on success,
// {success:false, error} on failure.

// respondError maps a service error onto the envelope and its HTTP status.
// Unrecognized errors become 500 with the stringified error, which is the
// contract's observable behavior for internal failures.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrConflict):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrAuth):
		status = fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrAuthorization):
		status = fiber.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

// validationError flattens validator field errors into one envelope error.
func validationError(c *fiber.Ctx, err error) error {
	var messages []string
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
	} else {
		messages = append(messages, err.Error())
	}
	return respondError(c, fmt.Errorf("%s: %w", strings.Join(messages, "; "), apperrors.ErrValidation))
}

// NotFoundHandler answers routes nothing else matched.
func NotFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"error":   "Not found",
	})
}
