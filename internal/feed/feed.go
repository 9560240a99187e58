// Package feed builds the paginated post listings: the global feed, a group's
// feed, an author's profile feed and a user's following feed.
package feed

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/groups"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
)

type Service struct {
	db      *gorm.DB
	groups  *groups.Service
	perPage int
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, groups: groups.NewService(db), perPage: PageSize}
}

// GroupPage is a group's feed together with the group itself.
type GroupPage struct {
	*Page
	Group models.Group `json:"group"`
}

// ProfilePage is an author's feed. PostsCount does not depend on the page.
type ProfilePage struct {
	*Page
	Author     models.User `json:"author"`
	PostsCount int64       `json:"posts_count"`
}

// GlobalFeed lists every post, newest first.
func (s *Service) GlobalFeed(ctx context.Context, page int) (*Page, error) {
	return s.paginate(ctx, page, func(db *gorm.DB) *gorm.DB { return db })
}

// GroupFeed lists the posts filed under the group with the given slug.
func (s *Service) GroupFeed(ctx context.Context, slug string, page int) (*GroupPage, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	p, err := s.paginate(ctx, page, func(db *gorm.DB) *gorm.DB {
		return db.Where("group_id = ?", group.ID)
	})
	if err != nil {
		return nil, err
	}
	return &GroupPage{Page: p, Group: *group}, nil
}

// ProfileFeed lists the posts written by username.
func (s *Service) ProfileFeed(ctx context.Context, username string, page int) (*ProfilePage, error) {
	var author models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&author).Error; err != nil {
		return nil, notFound(err, "user")
	}

	p, err := s.paginate(ctx, page, func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ?", author.ID)
	})
	if err != nil {
		return nil, err
	}
	return &ProfilePage{Page: p, Author: author, PostsCount: p.Count}, nil
}

// FollowingFeed lists posts by every author userID follows.
func (s *Service) FollowingFeed(ctx context.Context, userID uint, page int) (*Page, error) {
	if userID == 0 {
		return nil, apperrors.ErrAnonymous
	}

	followed := s.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
	return s.paginate(ctx, page, func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id IN (?)", followed)
	})
}

// CountByAuthor returns how many posts authorID has written.
func (s *Service) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to count posts")
	}
	return count, nil
}

func (s *Service) paginate(ctx context.Context, number int, filter func(*gorm.DB) *gorm.DB) (*Page, error) {
	query := func() *gorm.DB {
		return filter(s.db.WithContext(ctx).Model(&models.Post{}))
	}

	var count int64
	if err := query().Count(&count).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to count posts")
	}

	p := Paginator{PerPage: s.perPage, Count: count}
	number = p.Clamp(number)

	var posts []models.Post
	err := query().
		Preload("Author").
		Preload("Group").
		Order("created_at desc").
		Order("id desc").
		Offset(p.Offset(number)).
		Limit(s.perPage).
		Find(&posts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to fetch posts")
	}

	return newPage(p, number, posts), nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrapf(apperrors.ErrNotFound, "%s", what)
	}
	return pkgerrors.Wrapf(err, "failed to load %s", what)
}
