// Package testutil provides database fixtures for package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/emilythestrangee/blogfeed/backend/internal/config"
	"github.com/emilythestrangee/blogfeed/backend/internal/database"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
)

// NewService opens a migrated sqlite database private to the test.
func NewService(t *testing.T) database.Service {
	t.Helper()

	svc, err := database.New(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	return svc
}

// NewDB is NewService for tests that only need the gorm handle.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	return NewService(t).GetDB()
}

// CreateUser stores a user whose password is "password".
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hash),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func CreateGroup(t *testing.T, db *gorm.DB, slug string) models.Group {
	t.Helper()

	group := models.Group{
		Title:       "Group " + slug,
		Slug:        slug,
		Description: "Test group " + slug,
	}
	require.NoError(t, db.Create(&group).Error)
	return group
}

// CreatePost stores a post; group may be nil.
func CreatePost(t *testing.T, db *gorm.DB, author models.User, group *models.Group, text string) models.Post {
	t.Helper()

	post := models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

// CreatePosts stores n posts with strictly increasing creation times,
// so feed ordering is deterministic.
func CreatePosts(t *testing.T, db *gorm.DB, author models.User, group *models.Group, n int) []models.Post {
	t.Helper()

	base := time.Now().UTC().Add(-time.Duration(n) * time.Minute)
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		post := models.Post{
			Text:      fmt.Sprintf("post %d by %s", i, author.Username),
			AuthorID:  author.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if group != nil {
			post.GroupID = &group.ID
		}
		require.NoError(t, db.Create(&post).Error)
		posts = append(posts, post)
	}
	return posts
}

// Follow inserts an edge directly, bypassing the follow graph.
func Follow(t *testing.T, db *gorm.DB, user, author models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error)
}

// SmallGIF is a valid 1x1 GIF image.
var SmallGIF = []byte(
	"\x47\x49\x46\x38\x39\x61\x01\x00\x01\x00\x80\x00\x00\x05\x04" +
		"\x04\x00\x00\x00\x2c\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02" +
		"\x44\x01\x00\x3b",
)
