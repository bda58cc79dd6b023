package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wordbook/internal/config"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		MeaningTTL:   time.Hour,
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestMeaningKey(t *testing.T) {
	assert.Equal(t, "wordbook:meaning:auto:turkish:run", MeaningKey("", "Turkish", " Run "))
	assert.Equal(t, MeaningKey("English", "Turkish", "RUN"), MeaningKey("english", "turkish", "run"))
	assert.NotEqual(t, MeaningKey("", "Turkish", "run"), MeaningKey("", "German", "run"))
}

func TestSetAndGetMeaning(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetMeaning(ctx, "", "Turkish", "Run", "koşmak"))

	got, found, err := cache.GetMeaning(ctx, "", "turkish", "run")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "koşmak", got)

	assert.Equal(t, time.Hour, mr.TTL(MeaningKey("", "Turkish", "run")))

	mr.FastForward(2 * time.Hour)
	_, found, err = cache.GetMeaning(ctx, "", "Turkish", "run")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetMeaningNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	_, found, err := cache.GetMeaning(context.Background(), "", "Turkish", "no_such_word")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetMeaningInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)

	err := cache.Db.Set(context.Background(), MeaningKey("", "Turkish", "bad"), []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	_, found, err := cache.GetMeaning(context.Background(), "", "Turkish", "bad")
	require.Error(t, err)
	assert.False(t, found)
}

func TestInitServerUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = InitServer(context.Background(), config.RedisConnection{AddressRedis: addr, DialTimeout: 100 * time.Millisecond})
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	var c Nop
	require.NoError(t, c.SetMeaning(context.Background(), "", "Turkish", "run", "koşmak"))
	_, found, err := c.GetMeaning(context.Background(), "", "Turkish", "run")
	require.NoError(t, err)
	assert.False(t, found)
}
