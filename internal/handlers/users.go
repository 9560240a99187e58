package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/emilythestrangee/blogfeed/backend/internal/feed"
	"github.com/emilythestrangee/blogfeed/backend/internal/follows"
	"github.com/emilythestrangee/blogfeed/backend/internal/middleware"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
	"github.com/emilythestrangee/blogfeed/backend/internal/users"
)

type UserHandler struct {
	users *users.Service
	feeds *feed.Service
	graph *follows.Graph
}

func NewUserHandler(users *users.Service, feeds *feed.Service, graph *follows.Graph) *UserHandler {
	return &UserHandler{users: users, feeds: feeds, graph: graph}
}

// authorStats are the counters shown next to an author's posts.
type authorStats struct {
	PostsCount     int64 `json:"posts_count"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	Following      bool  `json:"following"`
}

// userSummary is how users appear in follower lists.
type userSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func loadAuthorStats(ctx context.Context, feeds *feed.Service, graph *follows.Graph, viewer, author uint) (*authorStats, error) {
	var (
		stats authorStats
		err   error
	)
	if stats.PostsCount, err = feeds.CountByAuthor(ctx, author); err != nil {
		return nil, err
	}
	if stats.FollowersCount, err = graph.FollowerCount(ctx, author); err != nil {
		return nil, err
	}
	if stats.FollowingCount, err = graph.FollowingCount(ctx, author); err != nil {
		return nil, err
	}
	if viewer != 0 {
		if stats.Following, err = graph.IsFollowing(ctx, viewer, author); err != nil {
			return nil, err
		}
	}
	return &stats, nil
}

// GetUserProfile returns one page of a user's posts plus their counters
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	ctx := c.Request.Context()

	profile, err := h.feeds.ProfileFeed(ctx, c.Param("username"), feed.ParsePage(c.Query("page")))
	if err != nil {
		respondError(c, err, "User")
		return
	}

	viewer, _ := middleware.CurrentUserID(c)
	stats, err := loadAuthorStats(ctx, h.feeds, h.graph, viewer, profile.Author.ID)
	if err != nil {
		respondError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"author": profile.Author,
		"page":   profile.Page,
		"stats":  stats,
	})
}

// FollowUser follows a user. Following yourself or someone you already
// follow changes nothing.
func (h *UserHandler) FollowUser(c *gin.Context) {
	h.changeFollow(c, h.graph.Follow)
}

// UnfollowUser unfollows a user; not following them already is fine.
func (h *UserHandler) UnfollowUser(c *gin.Context) {
	h.changeFollow(c, h.graph.Unfollow)
}

func (h *UserHandler) changeFollow(c *gin.Context, op func(ctx context.Context, follower, target uint) error) {
	ctx := c.Request.Context()
	userID, _ := middleware.CurrentUserID(c)

	author, err := h.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err, "User")
		return
	}

	if err := op(ctx, userID, author.ID); err != nil {
		respondError(c, err, "User")
		return
	}

	stats, err := loadAuthorStats(ctx, h.feeds, h.graph, userID, author.ID)
	if err != nil {
		respondError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"author": author,
		"stats":  stats,
	})
}

// GetFollowers returns users following the given user
func (h *UserHandler) GetFollowers(c *gin.Context) {
	h.listEdges(c, h.graph.Followers)
}

// GetFollowing returns users the given user follows
func (h *UserHandler) GetFollowing(c *gin.Context) {
	h.listEdges(c, h.graph.Following)
}

func (h *UserHandler) listEdges(c *gin.Context, list func(ctx context.Context, user uint) ([]models.User, error)) {
	ctx := c.Request.Context()

	user, err := h.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err, "User")
		return
	}

	related, err := list(ctx, user.ID)
	if err != nil {
		respondError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, lo.Map(related, func(u models.User, _ int) userSummary {
		return userSummary{ID: u.ID, Username: u.Username}
	}))
}
