package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/blogfeed/backend/internal/auth"
	"github.com/emilythestrangee/blogfeed/backend/internal/cache"
	"github.com/emilythestrangee/blogfeed/backend/internal/config"
	"github.com/emilythestrangee/blogfeed/backend/internal/database"
	"github.com/emilythestrangee/blogfeed/backend/internal/handlers"
	"github.com/emilythestrangee/blogfeed/backend/internal/logger"
	"github.com/emilythestrangee/blogfeed/backend/internal/media"
	"github.com/emilythestrangee/blogfeed/backend/internal/metrics"
	"github.com/emilythestrangee/blogfeed/backend/internal/middleware"
)

type Server struct {
	cfg     *config.Config
	db      database.Service
	issuer  *auth.Issuer
	pages   *cache.PageCache
	handler *handlers.Handler
}

// New wires the handlers to an open database, a page cache and an image store.
func New(cfg *config.Config, db database.Service, pages *cache.PageCache, images media.Store) *Server {
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	return &Server{
		cfg:     cfg,
		db:      db,
		issuer:  issuer,
		pages:   pages,
		handler: handlers.NewHandler(db.GetDB(), issuer, images),
	}
}

// HTTPServer returns the configured http.Server for s.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware())

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.OptionalAuth(s.issuer))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		stats := s.db.Health()
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if s.cfg.Media.Backend == "local" {
		r.Static(strings.TrimSuffix(s.cfg.Media.URL, "/"), s.cfg.Media.Dir)
	}

	r.GET(s.cfg.LoginURL, s.handler.Auth.LoginRequired)

	requireLogin := middleware.AuthMiddleware(s.cfg.LoginURL)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Feeds (public reads); only the global feed is cached
		api.GET("/posts", middleware.CachePage(s.pages), s.handler.Post.GetPosts)
		api.GET("/groups", s.handler.Group.ListGroups)
		api.GET("/group/:slug", s.handler.Group.GetGroupPosts)

		// User routes (public reads)
		api.GET("/users/:username", s.handler.User.GetUserProfile)
		api.GET("/users/:username/followers", s.handler.User.GetFollowers)
		api.GET("/users/:username/following", s.handler.User.GetFollowing)
		api.GET("/users/:username/posts/:id", s.handler.Post.GetPost)
		api.GET("/users/:username/posts/:id/comments", s.handler.Comment.GetComments)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(requireLogin)
		{
			protected.GET("/me", s.handler.Auth.GetMe)
			protected.GET("/follow", s.handler.Post.GetFollowPosts)

			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.PUT("/users/:username/posts/:id", s.handler.Post.UpdatePost)
			protected.POST("/users/:username/posts/:id/comments", s.handler.Comment.CreateComment)

			protected.POST("/users/:username/follow", s.handler.User.FollowUser)
			protected.DELETE("/users/:username/follow", s.handler.User.UnfollowUser)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
