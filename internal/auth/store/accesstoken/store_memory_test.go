package accesstoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aulagate/internal/auth/models"
)

func TestCreateAndFind(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	record := &models.AccessRecord{
		Token:     "tok-1",
		UserID:    "u-1",
		ExpiresAt: time.Now().Add(30 * time.Minute),
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Create(ctx, record))

	found, err := store.Find(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.UserID)
}

func TestFind_NotFound(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Find(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.AccessRecord{Token: "tok-1", UserID: "u-1"}))
	require.NoError(t, store.Delete(ctx, "tok-1"))

	_, err := store.Find(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "tok-1"), ErrNotFound)
}

func TestDeleteByUser(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.AccessRecord{Token: "a", UserID: "u-1"}))
	require.NoError(t, store.Create(ctx, &models.AccessRecord{Token: "b", UserID: "u-1"}))
	require.NoError(t, store.Create(ctx, &models.AccessRecord{Token: "c", UserID: "u-2"}))

	deleted, err := store.DeleteByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	_, err = store.Find(ctx, "c")
	assert.NoError(t, err)
}

func TestDeleteExpired(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Create(ctx, &models.AccessRecord{Token: "live", UserID: "u-1", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Create(ctx, &models.AccessRecord{Token: "stale", UserID: "u-1", ExpiresAt: now.Add(-time.Minute)}))

	deleted, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = store.Find(ctx, "live")
	assert.NoError(t, err)
	_, err = store.Find(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
}
