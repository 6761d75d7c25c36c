package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subscription-bot/server/internal/dialogue/model"
)

func stores(t *testing.T) map[string]model.SessionStore {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]model.SessionStore{
		"memory": NewMemorySessionStore(),
		"redis":  NewRedisSessionStore(rdb, time.Hour),
	}
}

func TestSessionStores(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := st.Get(ctx, 42)
			require.NoError(t, err)
			assert.Nil(t, got)

			s := model.NewSession(42)
			s.CurrentNode = "ask_name"
			s.Mode = model.ModeInDialogue
			s.Set("name", "Иван")
			s.LastAdminThreadID = 7
			require.NoError(t, st.Set(ctx, s))

			got, err = st.Get(ctx, 42)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, s, got)

			require.NoError(t, st.Clear(ctx, 42))
			got, err = st.Get(ctx, 42)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestMemorySessionStoreIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	st := NewMemorySessionStore()
	s := model.NewSession(1)
	require.NoError(t, st.Set(ctx, s))

	s.Set("name", "changed")
	got, err := st.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got.Field("name"))
}

func TestRedisSessionStoreCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	require.NoError(t, mr.Set("session:5", "{not json"))

	got, err := NewRedisSessionStore(rdb, 0).Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSessionStoreTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	st := NewRedisSessionStore(rdb, time.Minute)
	require.NoError(t, st.Set(context.Background(), model.NewSession(9)))
	assert.Equal(t, time.Minute, mr.TTL("session:9"))
}
