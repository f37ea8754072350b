package repositories

import (
	"fmt"
	"sort"
	"sync"

	"obrolan/internal/apperrors"
	"obrolan/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is the in-memory implementation of UserRepository used
// by the local-simulation backend. Storage is private to the process: two
// instances (or two browser tabs in the original client) never see each
// other's records, unlike replicas of the persistent backend sharing one
// database. Conformance checks therefore run single-client scenarios.
type MemoryUserRepository struct {
	users map[string]models.User // keyed by case-folded username
	mu    sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user record, rejecting case-variant duplicates.
func (r *MemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.UsernameFold(user.Username)
	if _, ok := r.users[key]; ok {
		return fmt.Errorf("user %q: %w", user.Username, apperrors.ErrConflict)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.UsernameKey = key
	r.users[key] = *user
	return nil
}

// GetByUsername returns a user by username, case-insensitively.
func (r *MemoryUserRepository) GetByUsername(username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[models.UsernameFold(username)]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", username, apperrors.ErrNotFound)
	}
	return &user, nil
}

// GetByID returns a user by their generated ID.
func (r *MemoryUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with ID %s: %w", id, apperrors.ErrNotFound)
}

// Update overwrites an existing user record.
func (r *MemoryUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.UsernameFold(user.Username)
	if _, ok := r.users[key]; !ok {
		return fmt.Errorf("user %q: %w", user.Username, apperrors.ErrNotFound)
	}
	user.UsernameKey = key
	r.users[key] = *user
	return nil
}

// ListUsernames returns every registered username, sorted by folded key.
func (r *MemoryUserRepository) ListUsernames() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.users))
	for key := range r.users {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	usernames := make([]string, 0, len(keys))
	for _, key := range keys {
		usernames = append(usernames, r.users[key].Username)
	}
	return usernames, nil
}
