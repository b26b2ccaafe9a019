package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-article-generator/internal/domain/entity"
	"ai-article-generator/internal/domain/repository"
	"ai-article-generator/internal/domain/session"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return Wrap(rdb), mr
}

func TestSessionStoreSaveAndGet(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client, "test", time.Hour)
	ctx := context.Background()

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := session.NewState("s1", session.Config{
		Provider: "OpenRouter",
		Model:    "deepseek/deepseek-r1:free",
		APIKey:   "sk-or-v1-0123456789abcdef",
		BaseURL:  "https://openrouter.ai/api/v1/",
		Timeout:  30,
	})
	state.LastArticle = entity.NewArticle("T", []string{"B", "A"},
		[]entity.Section{{Title: "B", Body: "y"}, {Title: "A", Body: "x"}}, "S", []string{"k1", "k2"})
	require.NoError(t, store.Save(ctx, state))

	assert.True(t, mr.Exists("test:session:s1"))
	assert.Equal(t, time.Hour, mr.TTL("test:session:s1"))

	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, state.Config, got.Config)
	require.NotNil(t, got.LastArticle)
	assert.Equal(t, state.LastArticle.Markdown(), got.LastArticle.Markdown())

	require.NoError(t, store.Delete(ctx, "s1"))
	assert.False(t, mr.Exists("test:session:s1"))
}

func TestSessionStoreExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client, "test", time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session.NewState("s1", session.Config{})))
	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStoreRunLock(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client, "test", time.Hour)
	ctx := context.Background()

	token, ok, err := store.AcquireRunLock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = store.AcquireRunLock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, store.ReleaseRunLock(ctx, "s1", "not-mine"), repository.ErrLockNotHeld)
	require.NoError(t, store.ReleaseRunLock(ctx, "s1", token))
	assert.False(t, mr.Exists("test:session:s1:lock"))

	_, ok, err = store.AcquireRunLock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	mr.FastForward(2 * time.Minute)
	_, ok, err = store.AcquireRunLock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSessionStorePing(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client, "", time.Hour)

	require.NoError(t, store.Ping(context.Background()))
	mr.SetError("LOADING")
	assert.Error(t, store.Ping(context.Background()))
}

func TestRateLimiterAllow(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "ratelimit:generate:s1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "ratelimit:generate:s1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "ratelimit:generate:s2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, limiter.Reset(ctx, "ratelimit:generate:s1"))
	ok, err = limiter.Allow(ctx, "ratelimit:generate:s1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
