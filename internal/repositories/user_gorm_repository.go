package repositories

import (
	"errors"
	"fmt"

	"obrolan/internal/apperrors"
	"obrolan/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create stores a new user record. The ID is generated when absent and the
// case-folded lookup key is derived from the username; the unique index on it
// is the storage-level backstop for case-insensitive uniqueness.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.UsernameKey = models.UsernameFold(user.Username)
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user %q: %w", user.Username, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByUsername retrieves a user by username, case-insensitively.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	key := models.UsernameFold(username)
	if err := r.db.First(&user, "username_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", username, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// Update persists mutations to an existing user record.
func (r *GORMUserRepository) Update(user *models.User) error {
	user.UsernameKey = models.UsernameFold(user.Username)
	if err := r.db.Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.Username, err)
	}
	return nil
}

// ListUsernames returns every registered username, sorted. Listing is a scan
// over the user rows; there is no shared roster record to race on.
func (r *GORMUserRepository) ListUsernames() ([]string, error) {
	var usernames []string
	if err := r.db.Model(&models.User{}).Order("username_key").Pluck("username", &usernames).Error; err != nil {
		return nil, fmt.Errorf("failed to list usernames: %w", err)
	}
	return usernames, nil
}
