package services

import (
	"context"
	"strings"

	"taskdeck/internal/config"
	"taskdeck/internal/models"
	"taskdeck/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type userService struct {
	repo  repositories.UserRepository
	email EmailService
	auth  AuthService
}

func NewUserService(repo repositories.UserRepository, email EmailService, auth AuthService) UserService {
	return &userService{repo: repo, email: email, auth: auth}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, invalidf("username and email are required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, invalidf("password is required")
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.email != nil {
		// warn but do not fail registration
		if err := s.email.SendWelcomeEmail(user.Email, user.Username); err != nil {
			config.Logger.Warnf("[user][register] welcome email to %s failed: %v", user.Email, err)
		}
	}
	return user, nil
}

// Authenticate returns the user when the email/password pair checks out and
// ErrNotFound otherwise; callers answer 401 without revealing which half
// was wrong.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !s.auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
