// Package users looks up and registers accounts.
package users

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/auth"
	"github.com/emilythestrangee/blogfeed/backend/internal/database"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || strings.ContainsAny(username, "/ ") {
		return nil, apperrors.ErrValidation
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{Username: username, Email: req.Email, Password: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, pkgerrors.Wrap(err, "failed to create user")
	}
	return &user, nil
}

// Authenticate returns the user when the password matches.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *Service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Service) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load user")
	}
	return &user, nil
}
