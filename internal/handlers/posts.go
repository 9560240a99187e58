package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/feed"
	"github.com/emilythestrangee/blogfeed/backend/internal/follows"
	"github.com/emilythestrangee/blogfeed/backend/internal/groups"
	"github.com/emilythestrangee/blogfeed/backend/internal/media"
	"github.com/emilythestrangee/blogfeed/backend/internal/middleware"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
	"github.com/emilythestrangee/blogfeed/backend/internal/posts"
)

type PostHandler struct {
	posts  *posts.Service
	feeds  *feed.Service
	groups *groups.Service
	graph  *follows.Graph
	images media.Store
}

func NewPostHandler(posts *posts.Service, feeds *feed.Service, groups *groups.Service, graph *follows.Graph, images media.Store) *PostHandler {
	return &PostHandler{posts: posts, feeds: feeds, groups: groups, graph: graph, images: images}
}

// postForm is the multipart (or urlencoded) body of the new and edit forms.
// The image travels as a separate file part.
type postForm struct {
	Text  string `form:"text"`
	Group string `form:"group"`
}

// GetPosts returns one page of the global feed. The response is cached by
// the page cache stage, so it must not depend on the caller.
func (h *PostHandler) GetPosts(c *gin.Context) {
	page, err := h.feeds.GlobalFeed(c.Request.Context(), feed.ParsePage(c.Query("page")))
	if err != nil {
		respondError(c, err, "Page")
		return
	}
	c.Set(middleware.PageKey, page.Number)
	c.JSON(http.StatusOK, page)
}

// GetFollowPosts returns posts by the authors the caller follows
func (h *PostHandler) GetFollowPosts(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	page, err := h.feeds.FollowingFeed(c.Request.Context(), userID, feed.ParsePage(c.Query("page")))
	if err != nil {
		respondError(c, err, "Page")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPost returns a single post with its comments and its author's counters
func (h *PostHandler) GetPost(c *gin.Context) {
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

	viewer, _ := middleware.CurrentUserID(c)
	stats, err := loadAuthorStats(ctx, h.feeds, h.graph, viewer, post.AuthorID)
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":     post,
		"author":   post.Author,
		"comments": comments,
		"stats":    stats,
	})
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	input, file, err := h.readForm(c)
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	if input.Image, err = h.upload(c, file); err != nil {
		respondError(c, err, "Post")
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post. Callers who are not the author are
// sent to the post's read view and nothing changes.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := middleware.CurrentUserID(c)

	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	post, err := h.posts.Editable(ctx, userID, id)
	if errors.Is(err, apperrors.ErrForbidden) {
		redirectToPost(c, post, id)
		return
	}
	if err != nil {
		respondError(c, err, "Post")
		return
	}
	if post.Author.Username != c.Param("username") {
		respondError(c, apperrors.ErrNotFound, "Post")
		return
	}

	input, file, err := h.readForm(c)
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	if input.Image, err = h.upload(c, file); err != nil {
		respondError(c, err, "Post")
		return
	}

	updated, err := h.posts.Update(ctx, userID, id, input)
	if errors.Is(err, apperrors.ErrForbidden) {
		redirectToPost(c, updated, id)
		return
	}
	if err != nil {
		respondError(c, err, "Post")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// readForm binds the text fields and picks up the optional image part.
// Text and group are checked here, before anything is uploaded, so a
// rejected form never leaves an orphaned image in the store.
func (h *PostHandler) readForm(c *gin.Context) (models.PostInput, *multipart.FileHeader, error) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		return models.PostInput{}, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	input := models.PostInput{Text: strings.TrimSpace(form.Text)}
	if input.Text == "" {
		return input, nil, fmt.Errorf("%w: text is required", apperrors.ErrValidation)
	}

	if raw := strings.TrimSpace(form.Group); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return input, nil, fmt.Errorf("%w: invalid group %q", apperrors.ErrValidation, raw)
		}
		groupID := uint(n)
		ok, err := h.groups.Exists(c.Request.Context(), groupID)
		if err != nil {
			return input, nil, err
		}
		if !ok {
			return input, nil, fmt.Errorf("%w: unknown group %d", apperrors.ErrValidation, groupID)
		}
		input.GroupID = &groupID
	}

	file, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return input, nil, nil
	case err != nil:
		return input, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	return input, file, nil
}

// upload validates and stores file, returning the reference to keep on the
// post. A nil file yields an empty reference.
func (h *PostHandler) upload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", nil
	}

	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	return media.Save(c.Request.Context(), h.images, file.Filename, f)
}

// redirectToPost sends the caller to the read view of post. Without a loaded
// post it falls back to the username and id from the request path.
func redirectToPost(c *gin.Context, post *models.Post, id uint) {
	if post == nil {
		c.Redirect(http.StatusFound, postURL(c.Param("username"), id))
		return
	}
	c.Redirect(http.StatusFound, postURL(post.Author.Username, post.ID))
}
