// Package services provides the business logic layer above the repositories.
// This file implements authentication: login validation and password hashing
// with bcrypt.
package services

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/avissapr/projectdesk/internal/models"
	"github.com/avissapr/projectdesk/internal/repository"
)

// bcrypt cost 12 = 2^12 rounds, per NIST SP 800-63B recommendations.
const bcryptCost = 12

// AuthService handles authentication and password management.
//
// Security Notes:
//   - Constant-time password comparison prevents timing attacks
//   - Never stores or logs plaintext passwords
type AuthService struct {
	userRepo *repository.UserRepository
}

// NewAuthService creates an AuthService over the given user repository.
func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Authenticate verifies user credentials and returns the user record on
// success. The same error shape is returned for "user not found" and
// "wrong password" so callers cannot probe which accounts exist.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, err
	}

	return user, nil
}

// HashPassword generates a bcrypt hash of the provided plaintext password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}
