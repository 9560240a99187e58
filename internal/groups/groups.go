// Package groups manages the categories posts can be filed under.
package groups

import (
	"context"
	"errors"
	"regexp"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/database"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ErrSlugTaken is returned by Create when another group already uses the slug.
var ErrSlugTaken = errors.New("slug already in use")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, title, slug, description string) (*models.Group, error) {
	title = strings.TrimSpace(title)
	if title == "" || !slugPattern.MatchString(slug) {
		return nil, apperrors.ErrValidation
	}

	group := models.Group{Title: title, Slug: slug, Description: description}
	if err := s.db.WithContext(ctx).Create(&group).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, pkgerrors.Wrap(err, "failed to create group")
	}
	return &group, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load group")
	}
	return &group, nil
}

// Exists reports whether a group with id exists.
func (s *Service) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Group{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, pkgerrors.Wrap(err, "failed to check group")
	}
	return n > 0, nil
}

func (s *Service) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.db.WithContext(ctx).Order("title").Find(&groups).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list groups")
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// Delete removes the group; its posts stay, with their group cleared.
func (s *Service) Delete(ctx context.Context, slug string) error {
	res := s.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Group{})
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "failed to delete group")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
