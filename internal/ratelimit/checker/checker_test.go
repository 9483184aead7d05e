package checker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aulagate/internal/ratelimit/config"
	"aulagate/internal/ratelimit/models"
	"aulagate/internal/ratelimit/store/bucket"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(bucket.NewInMemoryBucketStore(), config.DefaultConfig())
	require.NoError(t, err)
	return svc
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, config.DefaultConfig())
	require.Error(t, err)

	_, err = New(bucket.NewInMemoryBucketStore(), nil)
	require.Error(t, err)
}

func TestCheck_StrictAuthTier(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result := svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "")
		assert.True(t, result.Allowed, "attempt %d", i+1)
		assert.Equal(t, 5, result.Limit)
	}

	result := svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "")
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, 0)
}

func TestCheck_TiersIsolated(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "")
	}
	blocked := svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "")
	require.False(t, blocked.Allowed)

	general := svc.Check(ctx, models.TierGeneralAPI, "203.0.113.7", "Mozilla/5.0", "")
	assert.True(t, general.Allowed)
}

func TestCheck_ClientsIsolated(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "")
	}

	other := svc.Check(ctx, models.TierStrictAuth, "203.0.113.8", "Mozilla/5.0", "")
	assert.True(t, other.Allowed)
}

func TestCheck_SessionsSeparateBuckets(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "token-aaaa")
	}

	other := svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "token-bbbb")
	assert.True(t, other.Allowed)
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	return nil, errors.New("store down")
}
func (failingStore) Reset(context.Context, string) error { return errors.New("store down") }
func (failingStore) GetCurrentCount(context.Context, string) (int, error) {
	return 0, errors.New("store down")
}
func (failingStore) Fill(context.Context, string, int, time.Duration) error {
	return errors.New("store down")
}

func TestCheck_StoreFailureAllows(t *testing.T) {
	svc, err := New(failingStore{}, config.DefaultConfig())
	require.NoError(t, err)

	result := svc.Check(context.Background(), models.TierGeneralAPI, "203.0.113.7", "Mozilla/5.0", "")
	assert.True(t, result.Allowed)
	assert.Equal(t, 100, result.Limit)
}

func TestReset_UnblocksClient(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "")
	}
	blocked := svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "")
	require.False(t, blocked.Allowed)

	require.NoError(t, svc.Reset(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", ""))

	result := svc.Check(ctx, models.TierStrictAuth, "203.0.113.7", "Mozilla/5.0", "")
	assert.True(t, result.Allowed)
}

func TestBlock_SaturatesBucket(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, models.TierGeneralAPI, "203.0.113.7", "Mozilla/5.0", ""))

	result := svc.Check(ctx, models.TierGeneralAPI, "203.0.113.7", "Mozilla/5.0", "")
	assert.False(t, result.Allowed)
}

func TestStats_ReportsUsage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		svc.Check(ctx, models.TierGeneralAPI, "203.0.113.7", "Mozilla/5.0", "")
	}

	stats, err := svc.Stats(ctx, models.TierGeneralAPI, "203.0.113.7", "Mozilla/5.0", "")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
}

func TestMessage(t *testing.T) {
	svc := newTestService(t)
	assert.NotEmpty(t, svc.Message(models.TierStrictAuth))
}
