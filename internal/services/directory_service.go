package services

import (
	"obrolan/internal/models"
	"obrolan/internal/repositories"
)

// DirectoryService handles the public roster and profile projections.
type DirectoryService struct {
	repo repositories.UserRepository
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(repo repositories.UserRepository) *DirectoryService {
	return &DirectoryService{
		repo: repo,
	}
}

// ListUsernames returns every registered username.
func (s *DirectoryService) ListUsernames() ([]string, error) {
	return s.repo.ListUsernames()
}

// Profile returns the public projection of a user's record with display
// defaults applied.
func (s *DirectoryService) Profile(username string) (*models.Profile, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	profile := models.ProfileOf(user)
	return &profile, nil
}
