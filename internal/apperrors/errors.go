package apperrors

import "errors"

// Sentinel errors for the identity backend. Services wrap these with
// fmt.Errorf("...: %w", ...) and the HTTP boundary maps them to statuses:
// validation/conflict -> 400, auth -> 401, authorization -> 403, not found -> 404.
// Anything else is an internal error (500).
var (
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("already exists")
	ErrAuth          = errors.New("invalid username or password")
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
)
