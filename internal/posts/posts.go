// Package posts creates and edits posts and their comments.
package posts

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/groups"
	"github.com/emilythestrangee/blogfeed/backend/internal/metrics"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
)

type Service struct {
	db     *gorm.DB
	groups *groups.Service
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, groups: groups.NewService(db)}
}

// Create stores a new post by authorID. The image, if any, must already have
// passed upload validation.
func (s *Service) Create(ctx context.Context, authorID uint, in models.PostInput) (*models.Post, error) {
	if authorID == 0 {
		return nil, apperrors.ErrAnonymous
	}
	text, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Text:     text,
		GroupID:  in.GroupID,
		Image:    in.Image,
		AuthorID: authorID,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create post")
	}
	metrics.PostsCreated.Inc()

	return s.load(ctx, post.ID)
}

// Update replaces text and group of post id and, when in.Image is set, its
// image. A caller who is not the author gets ErrForbidden together with the
// unchanged, non-nil post, so they can be sent to its read view.
func (s *Service) Update(ctx context.Context, editorID, id uint, in models.PostInput) (*models.Post, error) {
	post, err := s.Editable(ctx, editorID, id)
	if err != nil {
		return post, err
	}

	text, err := s.validate(ctx, in)
	if err != nil {
		return post, err
	}

	changes := map[string]any{
		"text":     text,
		"group_id": in.GroupID,
	}
	if in.Image != "" {
		changes["image"] = in.Image
	}
	if err := s.db.WithContext(ctx).Model(&models.Post{ID: id}).Updates(changes).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to update post")
	}

	return s.load(ctx, id)
}

// Editable loads post id for editing. Like Update, it returns ErrForbidden
// together with the non-nil post when editorID is not its author.
func (s *Service) Editable(ctx context.Context, editorID, id uint) (*models.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editorID {
		return post, apperrors.ErrForbidden
	}
	return post, nil
}

// Get returns post id, provided it was written by username.
func (s *Service) Get(ctx context.Context, username string, id uint) (*models.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Author.Username != username {
		return nil, apperrors.ErrNotFound
	}
	return post, nil
}

// Comments lists the comments on postID, newest first.
func (s *Service) Comments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Preload("Author").
		Order("created_at desc").
		Order("id desc").
		Find(&comments).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to fetch comments")
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// AddComment attaches a comment by authorID to post id written by username.
func (s *Service) AddComment(ctx context.Context, authorID uint, username string, id uint, text string) (*models.Comment, error) {
	if authorID == 0 {
		return nil, apperrors.ErrAnonymous
	}
	post, err := s.Get(ctx, username, id)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.ErrValidation
	}

	comment := models.Comment{Text: text, PostID: post.ID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create comment")
	}

	if err := s.db.WithContext(ctx).Preload("Author").First(&comment, comment.ID).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to reload comment")
	}
	return &comment, nil
}

func (s *Service) validate(ctx context.Context, in models.PostInput) (string, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return "", pkgerrors.Wrap(apperrors.ErrValidation, "text is required")
	}
	if in.GroupID != nil {
		ok, err := s.groups.Exists(ctx, *in.GroupID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", pkgerrors.Wrap(apperrors.ErrValidation, "unknown group")
		}
	}
	return text, nil
}

func (s *Service) load(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load post")
	}
	return &post, nil
}
