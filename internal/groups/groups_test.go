package groups_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/blogfeed/backend/internal/apperrors"
	"github.com/emilythestrangee/blogfeed/backend/internal/groups"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
	"github.com/emilythestrangee/blogfeed/backend/internal/testutil"
)

func TestCreateAndGet(t *testing.T) {
	svc := groups.NewService(testutil.NewDB(t))
	ctx := context.Background()

	g, err := svc.Create(ctx, "Cats", "cats", "All about cats")
	require.NoError(t, err)
	assert.NotZero(t, g.ID)

	got, err := svc.GetBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "Cats", got.Title)

	_, err = svc.GetBySlug(ctx, "dogs")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	ok, err := svc.Exists(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreate_Validation(t *testing.T) {
	svc := groups.NewService(testutil.NewDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "cats", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, "Cats", "cats and dogs", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, "Cats", "cats", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Other cats", "cats", "")
	assert.ErrorIs(t, err, groups.ErrSlugTaken)
}

func TestList(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateGroup(t, db, "b")
	testutil.CreateGroup(t, db, "a")
	svc := groups.NewService(db)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Slug)
}

func TestDelete_KeepsPosts(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "leo")
	group := testutil.CreateGroup(t, db, "cats")
	post := testutil.CreatePost(t, db, author, &group, "meow")
	svc := groups.NewService(db)

	require.NoError(t, svc.Delete(context.Background(), "cats"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "cats"), apperrors.ErrNotFound)

	var reloaded models.Post
	require.NoError(t, db.First(&reloaded, post.ID).Error)
	assert.Nil(t, reloaded.GroupID)
	assert.Equal(t, "meow", reloaded.Text)
}
