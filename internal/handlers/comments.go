package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/middleware"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
	"github.com/emilythestrangee/blogfeed/backend/internal/posts"
)

type CommentHandler struct {
	posts *posts.Service
}

func NewCommentHandler(posts *posts.Service) *CommentHandler {
	return &CommentHandler{posts: posts}
}

// GetComments returns all comments for a post
func (h *CommentHandler) GetComments(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	post, err := h.posts.Get(ctx, c.Param("username"), id)
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	comments, err := h.posts.Comments(ctx, post.ID)
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment adds a comment to a post. An invalid form sends the caller
// back to the post without storing anything or reporting which field failed.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	username := c.Param("username")

	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		req.Text = ""
	}

	comment, err := h.posts.AddComment(c.Request.Context(), userID, username, id, req.Text)
	if errors.Is(err, apperrors.ErrValidation) {
		c.Redirect(http.StatusFound, postURL(username, id))
		return
	}
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	c.JSON(http.StatusCreated, comment)
}
