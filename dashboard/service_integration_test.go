//go:build integration

package dashboard

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/dbtest"
)

func TestDashboardService(t *testing.T) {
	pool := dbtest.NewPool(t)
	svc := NewDashboardService(pool)
	ctx := context.Background()

	alice := dbtest.CreateUser(t, pool, "alice")
	bob := dbtest.CreateUser(t, pool, "bob")
	carol := dbtest.CreateUser(t, pool, "carol")

	public := dbtest.CreateVideo(t, pool, alice, "public", true)
	draft := dbtest.CreateVideo(t, pool, alice, "draft", false)
	dbtest.CreateVideo(t, pool, bob, "elsewhere", true)

	_, err := pool.Exec(ctx, `UPDATE videos SET views = 7 WHERE id = $1`, public)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE videos SET views = 3 WHERE id = $1`, draft)
	require.NoError(t, err)
	for _, liker := range []uuid.UUID{bob, carol} {
		_, err = pool.Exec(ctx, `INSERT INTO likes (video_id, liked_by) VALUES ($1, $2)`, public, liker)
		require.NoError(t, err)
	}
	_, err = pool.Exec(ctx, `INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2)`, bob, alice)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalVideos: 2, TotalLikes: 2, TotalViews: 10, TotalSubscribers: 1}, *stats)

	empty, err := svc.Stats(ctx, carol)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, *empty)

	videos, err := svc.Videos(ctx, alice)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, draft, videos[0].ID)

	_, err = svc.Videos(ctx, carol)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
