package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"obrolan/internal/apperrors"
	"obrolan/internal/models"
	"obrolan/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for signup and login.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// Register creates a new user record: validates the preconditions, checks
// case-insensitive username uniqueness, hashes the password with bcrypt and
// stores the record at rank 0. The stored hash is never returned.
func (s *AuthService) Register(username, password string, ageConfirmed bool, deviceInfo string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", apperrors.ErrValidation)
	}
	if !ageConfirmed {
		return nil, fmt.Errorf("age must be confirmed: %w", apperrors.ErrValidation)
	}

	if existingUser, err := s.userRepo.GetByUsername(username); err == nil && existingUser != nil {
		return nil, fmt.Errorf("username '%s' already taken: %w", username, apperrors.ErrConflict)
	}

	// bcrypt's default cost keeps verification in the tens of milliseconds.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		Rank:         models.RankMember,
		DeviceInfo:   deviceInfo,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("username '%s' already taken: %w", username, apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Authenticate verifies a username/password pair and returns the user record
// plus a signed JWT. Unknown users and wrong passwords both fail with the same
// generic error so usernames cannot be enumerated. Banned accounts still
// authenticate; the banned flag is returned for the caller to act on.
func (s *AuthService) Authenticate(username, password, deviceInfo string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("username and password are required: %w", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists.
		return nil, "", apperrors.ErrAuth
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrAuth
	}

	now := time.Now()
	user.LastLogin = &now
	if deviceInfo != "" {
		user.DeviceInfo = deviceInfo
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"rank":     user.Rank,
		"exp":      now.Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      now.Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
