package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schoolRow struct {
	School string  `json:"school"`
	Score  float64 `json:"score"`
}

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheOrExecute_FetchesOnceThenHits(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()
	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []schoolRow{{School: "School of Engineering", Score: 7.5}}, nil
	}

	var first, second []schoolRow
	require.NoError(t, cm.Stats.CacheOrExecute(ctx, "all", &first, time.Minute, fetch))
	require.NoError(t, cm.Stats.CacheOrExecute(ctx, "all", &second, time.Minute, fetch))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("stats:all"))
}

func TestCacheOrExecute_PropagatesFetchError(t *testing.T) {
	cm, mr := newTestManager(t)
	boom := errors.New("db down")

	var dest []schoolRow
	err := cm.Stats.CacheOrExecute(context.Background(), "all", &dest, time.Minute, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("stats:all"))
}

func TestCacheOrExecute_DisabledClient(t *testing.T) {
	cm := NewCacheManager(nil)
	calls := 0

	var dest []schoolRow
	for i := 0; i < 2; i++ {
		require.NoError(t, cm.Faculty.CacheOrExecute(context.Background(), "k", &dest, time.Minute, func() (interface{}, error) {
			calls++
			return []schoolRow{{School: "x"}}, nil
		}))
	}
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, cm.HealthCheck(context.Background()), ErrCacheNotAvailable)
}

func TestInvalidateDashboardCache(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, cm.Stats.Set(ctx, "all", []schoolRow{}, time.Minute))
	require.NoError(t, cm.Faculty.Set(ctx, SchoolKey("School of Engineering"), []schoolRow{}, time.Minute))
	require.NoError(t, cm.Faculty.Set(ctx, SchoolKey("School of Science"), []schoolRow{}, time.Minute))

	InvalidateDashboardCache(ctx, cm, " school of ENGINEERING ")

	assert.False(t, mr.Exists("stats:all"))
	assert.False(t, mr.Exists("faculty:school:school of engineering"))
	assert.True(t, mr.Exists("faculty:school:school of science"))

	InvalidateDashboardCache(ctx, cm, "")
	assert.False(t, mr.Exists("faculty:school:school of science"))
}
