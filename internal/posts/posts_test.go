package posts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/feed"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
	"github.com/emilythestrangee/blogfeed/backend/internal/posts"
	"github.com/emilythestrangee/blogfeed/backend/internal/testutil"
)

func TestCreate_AppearsInEveryFeed(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	group := testutil.CreateGroup(t, db, "cats")
	svc := posts.NewService(db)
	feeds := feed.NewService(db)
	ctx := context.Background()

	post, err := svc.Create(ctx, author.ID, models.PostInput{Text: "  hello  ", GroupID: &group.ID})
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Text)
	assert.Equal(t, "leo", post.Author.Username)
	require.NotNil(t, post.Group)
	assert.Equal(t, "cats", post.Group.Slug)

	global, err := feeds.GlobalFeed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, global.Posts, 1)
	assert.Equal(t, post.ID, global.Posts[0].ID)

	profile, err := feeds.ProfileFeed(ctx, "leo", 1)
	require.NoError(t, err)
	require.Len(t, profile.Posts, 1)
	assert.Equal(t, post.ID, profile.Posts[0].ID)

	byGroup, err := feeds.GroupFeed(ctx, "cats", 1)
	require.NoError(t, err)
	require.Len(t, byGroup.Posts, 1)
	assert.Equal(t, post.ID, byGroup.Posts[0].ID)
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	svc := posts.NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, author.ID, models.PostInput{Text: "   "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	missing := uint(404)
	_, err = svc.Create(ctx, author.ID, models.PostInput{Text: "hi", GroupID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, 0, models.PostInput{Text: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrAnonymous)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdate_ByAuthor(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	one := testutil.CreateGroup(t, db, "one")
	two := testutil.CreateGroup(t, db, "two")
	svc := posts.NewService(db)
	feeds := feed.NewService(db)
	ctx := context.Background()

	post, err := svc.Create(ctx, author.ID, models.PostInput{Text: "first", GroupID: &one.ID, Image: "/media/a.gif"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, author.ID, post.ID, models.PostInput{Text: "edited", GroupID: &two.ID})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
	require.NotNil(t, updated.GroupID)
	assert.Equal(t, two.ID, *updated.GroupID)
	assert.Equal(t, "/media/a.gif", updated.Image, "no new upload keeps the image")

	global, err := feeds.GlobalFeed(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "edited", global.Posts[0].Text)

	profile, err := feeds.ProfileFeed(ctx, "leo", 1)
	require.NoError(t, err)
	assert.Equal(t, "edited", profile.Posts[0].Text)

	old, err := feeds.GroupFeed(ctx, "one", 1)
	require.NoError(t, err)
	assert.Empty(t, old.Posts)

	moved, err := feeds.GroupFeed(ctx, "two", 1)
	require.NoError(t, err)
	require.Len(t, moved.Posts, 1)
	assert.Equal(t, "edited", moved.Posts[0].Text)

	cleared, err := svc.Update(ctx, author.ID, post.ID, models.PostInput{Text: "edited"})
	require.NoError(t, err)
	assert.Nil(t, cleared.GroupID)
}

func TestUpdate_ByOtherUserIsForbidden(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	other := testutil.CreateUser(t, db, "ann")
	post := testutil.CreatePost(t, db, author, nil, "original")
	svc := posts.NewService(db)
	ctx := context.Background()

	got, err := svc.Update(ctx, other.ID, post.ID, models.PostInput{Text: "hijacked"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	require.NotNil(t, got)
	assert.Equal(t, "leo", got.Author.Username)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "original", stored.Text)

	_, err = svc.Editable(ctx, other.ID, post.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = svc.Editable(ctx, author.ID, post.ID)
	assert.NoError(t, err)

	_, err = svc.Update(ctx, author.ID, 9999, models.PostInput{Text: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Update(ctx, author.ID, post.ID, models.PostInput{Text: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestGet_ChecksAuthor(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	testutil.CreateUser(t, db, "ann")
	post := testutil.CreatePost(t, db, author, nil, "text")
	svc := posts.NewService(db)
	ctx := context.Background()

	got, err := svc.Get(ctx, "leo", post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	_, err = svc.Get(ctx, "ann", post.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddComment(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	reader := testutil.CreateUser(t, db, "ann")
	post := testutil.CreatePost(t, db, author, nil, "text")
	svc := posts.NewService(db)
	ctx := context.Background()

	comment, err := svc.AddComment(ctx, reader.ID, "leo", post.ID, "nice")
	require.NoError(t, err)
	assert.Equal(t, "ann", comment.Author.Username)

	_, err = svc.AddComment(ctx, reader.ID, "leo", post.ID, " ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.AddComment(ctx, reader.ID, "ann", post.ID, "wrong author")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	comments, err := svc.Comments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Text)
}

func TestDeletingPostDeletesComments(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	post := testutil.CreatePost(t, db, author, nil, "text")
	svc := posts.NewService(db)

	_, err := svc.AddComment(context.Background(), author.ID, "leo", post.ID, "mine")
	require.NoError(t, err)

	require.NoError(t, db.Delete(&models.Post{}, post.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
