package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/auth"
	"github.com/emilythestrangee/blogfeed/backend/internal/feed"
	"github.com/emilythestrangee/blogfeed/backend/internal/follows"
	"github.com/emilythestrangee/blogfeed/backend/internal/groups"
	"github.com/emilythestrangee/blogfeed/backend/internal/logger"
	"github.com/emilythestrangee/blogfeed/backend/internal/media"
	"github.com/emilythestrangee/blogfeed/backend/internal/posts"
	"github.com/emilythestrangee/blogfeed/backend/internal/users"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	User    *UserHandler
	Group   *GroupHandler
}

// NewHandler creates a unified handler with all sub-handlers sharing one set
// of services.
func NewHandler(db *gorm.DB, issuer *auth.Issuer, images media.Store) *Handler {
	var (
		userSvc  = users.NewService(db)
		feedSvc  = feed.NewService(db)
		graph    = follows.NewGraph(db)
		postSvc  = posts.NewService(db)
		groupSvc = groups.NewService(db)
	)

	return &Handler{
		Auth:    NewAuthHandler(userSvc, graph, issuer),
		Post:    NewPostHandler(postSvc, feedSvc, groupSvc, graph, images),
		Comment: NewCommentHandler(postSvc),
		User:    NewUserHandler(userSvc, feedSvc, graph),
		Group:   NewGroupHandler(groupSvc, feedSvc),
	}
}

// respondError maps service errors onto JSON error responses.
func respondError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrAnonymous):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	default:
		_ = c.Error(err)
		logger.Log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// paramID parses a numeric path parameter; malformed ids are reported as
// not found, like ids that do not exist.
func paramID(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, apperrors.ErrNotFound
	}
	return uint(n), nil
}

func postURL(username string, id uint) string {
	return fmt.Sprintf("/api/users/%s/posts/%d", username, id)
}
