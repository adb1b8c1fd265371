package redis

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_KeyIsPerWindow(t *testing.T) {
	s := NewRateLimitStore(nil, 50, time.Minute, zerolog.Nop())
	base := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)

	s.now = func() time.Time { return base }
	first := s.key("10.0.0.1")
	s.now = func() time.Time { return base.Add(50 * time.Second) }
	assert.Equal(t, first, s.key("10.0.0.1"))
	assert.NotEqual(t, first, s.key("10.0.0.2"))

	s.now = func() time.Time { return base.Add(time.Minute) }
	assert.NotEqual(t, first, s.key("10.0.0.1"))
}

func TestRateLimitStore_FallsBackWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRateLimitStore(client, 3, time.Minute, zerolog.Nop())
	for i := 0; i < 3; i++ {
		ok, err := s.Allow("10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}
	ok, err := s.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "fourth request in the window should be limited")

	ok, _ = s.Allow("10.0.0.2")
	assert.True(t, ok, "other clients keep their own budget")
}
