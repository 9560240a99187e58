package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/blogfeed/backend/internal/feed"
	"github.com/emilythestrangee/blogfeed/backend/internal/groups"
)

type GroupHandler struct {
	groups *groups.Service
	feeds  *feed.Service
}

func NewGroupHandler(groups *groups.Service, feeds *feed.Service) *GroupHandler {
	return &GroupHandler{groups: groups, feeds: feeds}
}

// ListGroups returns every group, for the group picker of the post form
func (h *GroupHandler) ListGroups(c *gin.Context) {
	list, err := h.groups.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Group")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetGroupPosts returns one page of the posts filed under a group
func (h *GroupHandler) GetGroupPosts(c *gin.Context) {
	page, err := h.feeds.GroupFeed(c.Request.Context(), c.Param("slug"), feed.ParsePage(c.Query("page")))
	if err != nil {
		respondError(c, err, "Group")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group": page.Group,
		"page":  page.Page,
	})
}
