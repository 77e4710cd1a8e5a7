//go:build integration

package comments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/dbtest"
	"github.com/user/vidtube-go/pagination"
)

func TestCommentService(t *testing.T) {
	pool := dbtest.NewPool(t)
	svc := NewCommentService(pool)
	ctx := context.Background()

	alice := dbtest.CreateUser(t, pool, "alice")
	videoID := dbtest.CreateVideo(t, pool, alice, "talk", true)

	_, err := svc.Create(ctx, uuid.New(), alice, "into the void")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	var last *Comment
	for _, content := range []string{"first", "second", "third"} {
		last, err = svc.Create(ctx, videoID, alice, content)
		require.NoError(t, err)
	}
	assert.Equal(t, "alice", last.Owner.Username)
	assert.Equal(t, alice, last.Owner.ID)

	page, err := svc.List(ctx, videoID, pagination.New(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalDocs)
	require.Len(t, page.Docs, 2)
	assert.Equal(t, "third", page.Docs[0].Content)
	assert.True(t, page.HasNextPage)

	updated, err := svc.Update(ctx, last.ID, "third, edited")
	require.NoError(t, err)
	assert.Equal(t, "third, edited", updated.Content)
	assert.False(t, updated.UpdatedAt.Before(last.UpdatedAt))

	require.NoError(t, svc.Delete(ctx, last.ID))
	_, err = svc.Get(ctx, last.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	_, err = svc.Update(ctx, last.ID, "ghost")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
