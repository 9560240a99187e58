package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/blogfeed/backend/internal/auth"
	"github.com/emilythestrangee/blogfeed/backend/internal/follows"
	"github.com/emilythestrangee/blogfeed/backend/internal/middleware"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
	"github.com/emilythestrangee/blogfeed/backend/internal/users"
)

type AuthHandler struct {
	users  *users.Service
	graph  *follows.Graph
	issuer *auth.Issuer
}

func NewAuthHandler(users *users.Service, graph *follows.Graph, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{users: users, graph: graph, issuer: issuer}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if errors.Is(err, users.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		return
	}
	if err != nil {
		respondError(c, err, "User")
		return
	}

	h.respondWithToken(c, http.StatusCreated, user, "User registered successfully")
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, err, "User")
		return
	}

	h.respondWithToken(c, http.StatusOK, user, "Login successful")
}

// LoginRequired is where anonymous callers of protected routes are sent.
func (h *AuthHandler) LoginRequired(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Authentication required",
		"login": "/api/login",
		"next":  c.Query("next"),
	})
}

// GetMe returns the current authenticated user. has_follows drives the
// "following" link, which is kept out of the cached global feed.
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)
	ctx := c.Request.Context()

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		respondError(c, err, "User")
		return
	}

	hasFollows, err := h.graph.HasAnyFollows(ctx, userID)
	if err != nil {
		respondError(c, err, "User")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        user,
		"has_follows": hasFollows,
	})
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User, message string) {
	token, err := h.issuer.Issue(*user)
	if err != nil {
		respondError(c, err, "User")
		return
	}
	c.JSON(status, models.AuthResponse{Token: token, User: *user, Message: message})
}
