package follows_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/blogfeed/backend/internal/follows"
	"github.com/emilythestrangee/blogfeed/backend/internal/models"
	"github.com/emilythestrangee/blogfeed/backend/internal/testutil"
)

func TestFollow_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	g := follows.NewGraph(db)
	ctx := context.Background()

	require.NoError(t, g.Follow(ctx, a.ID, b.ID))
	n, err := g.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, g.Follow(ctx, a.ID, b.ID))
	n, err = g.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	following, err := g.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	reverse, err := g.IsFollowing(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestUnfollow_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	g := follows.NewGraph(db)
	ctx := context.Background()

	require.NoError(t, g.Follow(ctx, a.ID, b.ID))
	require.NoError(t, g.Unfollow(ctx, a.ID, b.ID))

	n, err := g.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, g.Unfollow(ctx, a.ID, b.ID))
	n, err = g.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestFollow_SelfIsIgnored(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateUser(t, db, "a")
	g := follows.NewGraph(db)
	ctx := context.Background()

	require.NoError(t, g.Follow(ctx, a.ID, a.ID))

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	assert.Equal(t, int64(0), edges)
}

func TestFollow_ConcurrentCallsLeaveOneEdge(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	g := follows.NewGraph(db)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- g.Follow(context.Background(), a.ID, b.ID)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)
}

func TestDuplicateEdgeRejectedByStorage(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")

	testutil.Follow(t, db, a, b)
	err := db.Create(&models.Follow{UserID: a.ID, AuthorID: b.ID}).Error
	assert.Error(t, err)
}

func TestCountsAndListings(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	c := testutil.CreateUser(t, db, "c")
	g := follows.NewGraph(db)
	ctx := context.Background()

	has, err := g.HasAnyFollows(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, g.Follow(ctx, a.ID, b.ID))
	require.NoError(t, g.Follow(ctx, a.ID, c.ID))
	require.NoError(t, g.Follow(ctx, c.ID, b.ID))

	has, err = g.HasAnyFollows(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, has)

	n, err := g.FollowingCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = g.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	followers, err := g.Followers(ctx, b.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "c"}, []string{followers[0].Username, followers[1].Username})

	following, err := g.Following(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "b", following[0].Username)

	anon, err := g.IsFollowing(ctx, 0, b.ID)
	require.NoError(t, err)
	assert.False(t, anon)
}
