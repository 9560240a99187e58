package feed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/feed"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
	"github.com/emilythestrangee/blogfeed/backend/internal/testutil"
)

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestGlobalFeed_OrderAndPagination(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	posts := testutil.CreatePosts(t, db, author, nil, 23)
	svc := feed.NewService(db)
	ctx := context.Background()

	page, err := svc.GlobalFeed(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(23), page.Count)
	assert.Equal(t, 3, page.NumPages)
	require.Len(t, page.Posts, feed.PageSize)
	// newest first
	assert.Equal(t, posts[22].ID, page.Posts[0].ID)
	assert.Equal(t, posts[13].ID, page.Posts[9].ID)
	assert.Equal(t, "leo", page.Posts[0].Author.Username)

	last, err := svc.GlobalFeed(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, last.Number)
	assert.Equal(t, []uint{posts[2].ID, posts[1].ID, posts[0].ID}, postIDs(last.Posts))

	clamped, err := svc.GlobalFeed(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, clamped.Number)
	assert.Equal(t, postIDs(last.Posts), postIDs(clamped.Posts))
}

func TestGlobalFeed_Empty(t *testing.T) {
	svc := feed.NewService(testutil.NewDB(t))

	page, err := svc.GlobalFeed(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Posts)
	assert.NotNil(t, page.Posts)
}

func TestGroupFeed(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	cats := testutil.CreateGroup(t, db, "cats")
	dogs := testutil.CreateGroup(t, db, "dogs")
	catPost := testutil.CreatePost(t, db, author, &cats, "meow")
	testutil.CreatePost(t, db, author, &dogs, "woof")
	testutil.CreatePost(t, db, author, nil, "no group")
	svc := feed.NewService(db)

	page, err := svc.GroupFeed(context.Background(), "cats", 1)
	require.NoError(t, err)
	assert.Equal(t, "cats", page.Group.Slug)
	assert.Equal(t, []uint{catPost.ID}, postIDs(page.Posts))
	require.NotNil(t, page.Posts[0].Group)
	assert.Equal(t, cats.ID, page.Posts[0].Group.ID)

	_, err = svc.GroupFeed(context.Background(), "birds", 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfileFeed(t *testing.T) {
	db := testutil.NewDB(t)
	leo := testutil.CreateUser(t, db, "leo")
	ann := testutil.CreateUser(t, db, "ann")
	testutil.CreatePosts(t, db, leo, nil, 12)
	testutil.CreatePosts(t, db, ann, nil, 3)
	svc := feed.NewService(db)

	page, err := svc.ProfileFeed(context.Background(), "leo", 2)
	require.NoError(t, err)
	assert.Equal(t, "leo", page.Author.Username)
	assert.Equal(t, int64(12), page.PostsCount)
	assert.Len(t, page.Posts, 2)
	for _, p := range page.Posts {
		assert.Equal(t, leo.ID, p.AuthorID)
	}

	count, err := svc.CountByAuthor(context.Background(), ann.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = svc.ProfileFeed(context.Background(), "nobody", 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFollowingFeed(t *testing.T) {
	db := testutil.NewDB(t)
	viewer := testutil.CreateUser(t, db, "viewer")
	followed := testutil.CreateUser(t, db, "followed")
	stranger := testutil.CreateUser(t, db, "stranger")
	post := testutil.CreatePost(t, db, followed, nil, "for followers")
	testutil.CreatePost(t, db, stranger, nil, "unseen")
	svc := feed.NewService(db)
	ctx := context.Background()

	page, err := svc.FollowingFeed(ctx, viewer.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)

	testutil.Follow(t, db, viewer, followed)

	page, err = svc.FollowingFeed(ctx, viewer.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, postIDs(page.Posts))

	_, err = svc.FollowingFeed(ctx, 0, 1)
	assert.ErrorIs(t, err, apperrors.ErrAnonymous)
}
