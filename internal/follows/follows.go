// Package follows maintains the directed user -> author follow graph.
package follows

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/blogfeed/backend/internal/database"
	"github.com/emilythestrangee/blogfeed/backend/internal/metrics"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
)

type Graph struct {
	db *gorm.DB
}

func NewGraph(db *gorm.DB) *Graph {
	return &Graph{db: db}
}

// Follow creates the edge follower -> target. Following yourself and
// following twice are both no-ops. Uniqueness is left to the database so
// concurrent calls cannot produce duplicate edges.
func (g *Graph) Follow(ctx context.Context, follower, target uint) error {
	if follower == target {
		return nil
	}

	edge := models.Follow{UserID: follower, AuthorID: target}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
	if err != nil && !database.IsUniqueViolation(err) {
		return pkgerrors.Wrap(err, "failed to follow")
	}

	metrics.FollowOps.WithLabelValues("follow").Inc()
	return nil
}

// Unfollow deletes the edge if present.
func (g *Graph) Unfollow(ctx context.Context, follower, target uint) error {
	err := g.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", follower, target).
		Delete(&models.Follow{}).Error
	if err != nil {
		return pkgerrors.Wrap(err, "failed to unfollow")
	}

	metrics.FollowOps.WithLabelValues("unfollow").Inc()
	return nil
}

func (g *Graph) IsFollowing(ctx context.Context, follower, target uint) (bool, error) {
	if follower == 0 {
		return false, nil
	}
	return g.exists(ctx, "user_id = ? AND author_id = ?", follower, target)
}

// FollowerCount is the number of users following user.
func (g *Graph) FollowerCount(ctx context.Context, user uint) (int64, error) {
	return g.count(ctx, "author_id = ?", user)
}

// FollowingCount is the number of users user follows.
func (g *Graph) FollowingCount(ctx context.Context, user uint) (int64, error) {
	return g.count(ctx, "user_id = ?", user)
}

// HasAnyFollows decides whether the following feed is worth offering to user.
func (g *Graph) HasAnyFollows(ctx context.Context, user uint) (bool, error) {
	if user == 0 {
		return false, nil
	}
	return g.exists(ctx, "user_id = ?", user)
}

// Followers lists the users following user.
func (g *Graph) Followers(ctx context.Context, user uint) ([]models.User, error) {
	var edges []models.Follow
	err := g.db.WithContext(ctx).
		Where("author_id = ?", user).
		Preload("User").
		Order("created_at desc").
		Find(&edges).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list followers")
	}

	return lo.Map(edges, func(e models.Follow, _ int) models.User { return e.User }), nil
}

// Following lists the authors user follows.
func (g *Graph) Following(ctx context.Context, user uint) ([]models.User, error) {
	var edges []models.Follow
	err := g.db.WithContext(ctx).
		Where("user_id = ?", user).
		Preload("Author").
		Order("created_at desc").
		Find(&edges).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list following")
	}

	return lo.Map(edges, func(e models.Follow, _ int) models.User { return e.Author }), nil
}

func (g *Graph) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := g.db.WithContext(ctx).Model(&models.Follow{}).Where(query, args...).Count(&n).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "failed to count follows")
	}
	return n, nil
}

func (g *Graph) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var id uint
	err := g.db.WithContext(ctx).
		Model(&models.Follow{}).
		Select("id").
		Where(query, args...).
		Limit(1).
		Scan(&id).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to check follows")
	}
	return id != 0, nil
}
