package repositories

import "obrolan/internal/models"

// UserRepository defines the interface for user record access. Lookups by
// username are case-insensitive (callers and implementations agree on
// models.UsernameFold as the key). There are no multi-key transactions; every
// higher-level invariant is the caller's responsibility.
//
// Each user record is its own roster entry: ListUsernames scans the records
// rather than reading a shared list blob, so two concurrent signups cannot
// clobber each other's directory membership.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	Update(user *models.User) error
	ListUsernames() ([]string, error)
}
