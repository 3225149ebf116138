package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-shop/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/models"
	"github.com/franciscosanchezn/gin-pizza-shop/internal/repository"
	log "github.com/sirupsen/logrus"
)

type UserService interface {
	// Register creates a customer account and signs a token for it
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthPayload, error)
	// Login verifies credentials and signs a token
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthPayload, error)
	Profile(ctx context.Context, userID uint) (*models.User, error)
	// EnsureAdmin creates the bootstrap admin if the email is free
	EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error)
}

type userService struct {
	users  repository.UserRepository
	issuer *auth.TokenIssuer
}

func NewUserService(users repository.UserRepository, issuer *auth.TokenIssuer) UserService {
	return &userService{users: users, issuer: issuer}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) payload(user *models.User) (*models.AuthPayload, error) {
	token, _, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &models.AuthPayload{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.issuer.TTL().Seconds()),
	}, nil
}

func (s *userService) create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	user := &models.User{Name: name, Email: email, Password: password, Role: role}
	if err := user.HashPassword(); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthPayload, error) {
	user, err := s.create(ctx, req.Name, req.Email, req.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": user.ID, "email": user.Email}).Info("User registered")
	return s.payload(user)
}

func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthPayload, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		log.WithField("email", user.Email).Warn("Login failed")
		return nil, ErrInvalidCredentials
	}
	return s.payload(user)
}

func (s *userService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	existing, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		if !existing.IsAdmin() {
			log.WithField("email", existing.Email).Warn("Bootstrap admin email belongs to a regular user")
		}
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err := s.create(ctx, name, email, password, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	log.WithField("email", user.Email).Info("Admin user created")
	return user, nil
}
