package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shashiranjanraj/thali/app/models"
	"github.com/shashiranjanraj/thali/app/repositories"
	"github.com/shashiranjanraj/thali/pkg/auth"
	"github.com/shashiranjanraj/thali/pkg/metrics"
	"github.com/shashiranjanraj/thali/pkg/validate"
)

// Registration is the sign-up form.
type Registration struct {
	Name     string `form:"name" json:"name" validate:"required,max=100"`
	Email    string `form:"email" json:"email" validate:"required,max=255"`
	Password string `form:"password" json:"password" validate:"required,max=72"`
}

// max= counts characters; bcrypt's limit is in bytes.
const msgPasswordTooLong = "The password may not be greater than 72 bytes."

// AuthService is the credential store.
type AuthService struct {
	users repositories.UserRepository

	dummyOnce sync.Once
	dummy     string
}

func NewAuthService(users repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a non-admin account.
func (s *AuthService) Register(ctx context.Context, in Registration) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if msg := validate.First(&in); msg != "" {
		return models.User{}, &ValidationError{Message: msg}
	}

	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return models.User{}, &ValidationError{Message: msgPasswordTooLong}
	}
	if err != nil {
		return models.User{}, fmt.Errorf("register: %w", err)
	}

	u := models.User{Name: in.Name, Email: in.Email, Password: hash}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("register: %w", err)
	}

	metrics.Registrations.Inc()
	return u, nil
}

// Verify returns the account for email when password matches. Unknown
// emails and wrong passwords fail the same way and take the same time.
func (s *AuthService) Verify(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		auth.CheckPassword(s.dummyHash(), password)
		metrics.LoginFailures.Inc()
		return models.User{}, ErrInvalidCredentials
	case err != nil:
		return models.User{}, fmt.Errorf("verify: %w", err)
	}

	if !auth.CheckPassword(u.Password, password) {
		metrics.LoginFailures.Inc()
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// SeedAdmin creates the administrator unless an account with email exists.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) (models.User, error) {
	if u, err := s.users.FindByEmail(ctx, email); err == nil {
		return u, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, fmt.Errorf("seed admin: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("seed admin: %w", err)
	}
	u := models.User{Name: "Admin", Email: email, Password: hash, IsAdmin: true}
	if err := s.users.Create(ctx, &u); err != nil {
		return models.User{}, fmt.Errorf("seed admin: %w", err)
	}
	return u, nil
}

func (s *AuthService) FindByID(ctx context.Context, id uint) (models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = auth.HashPassword("not-a-real-password")
	})
	return s.dummy
}
