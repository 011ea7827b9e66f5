package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/repositories"
)

type PasswordResetService interface {
	// RequestReset is deliberately quiet about unknown emails.
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetService struct {
	users  repositories.UserRepository
	resets repositories.PasswordResetRepository
	email  EmailService
	auth   AuthService
	ttl    time.Duration
}

func NewPasswordResetService(users repositories.UserRepository, resets repositories.PasswordResetRepository, email EmailService, auth AuthService, ttl time.Duration) PasswordResetService {
	return &passwordResetService{users: users, resets: resets, email: email, auth: auth, ttl: ttl}
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if user == nil {
		// Do not leak account existence; behave as if mail was sent.
		config.Logger.Infof("[auth][reset] request for unknown email")
		return nil
	}

	token, err := newResetToken(32)
	if err != nil {
		return err
	}
	if _, err := s.resets.Create(ctx, user.ID, token, time.Now().Add(s.ttl)); err != nil {
		return err
	}
	if s.email != nil {
		if err := s.email.SendPasswordResetEmail(user.Email, token); err != nil {
			return err
		}
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return invalidf("password is required")
	}

	pr, err := s.resets.UseByToken(ctx, token)
	if err != nil {
		return invalidf("invalid or expired token")
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, pr.UserID, hash)
}

func newResetToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
