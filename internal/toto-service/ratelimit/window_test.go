package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestWindow(t *testing.T, limit int64, window time.Duration) (*Window, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, limit, window), mr
}

func TestWindowRejectsOverLimit(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWindow(t, 3, time.Minute)

	// até o limite passa
	for i := 0; i < 3; i++ {
		ok, err := w.Allow(ctx)
		require.NoError(t, err)
		require.Truef(t, ok, "ação %d dentro do limite", i+1)
	}

	// a seguinte, na mesma janela, é recusada
	ok, err := w.Allow(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWindowSetsCounterExpiry(t *testing.T) {
	ctx := context.Background()
	w, mr := newTestWindow(t, 10, time.Minute)

	ok, err := w.Allow(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// a primeira ação da janela deixa o contador com TTL, senão o bucket
	// velho ficaria no Redis para sempre
	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.Equal(t, time.Minute, mr.TTL(keys[0]))
}

func TestWindowDisabled(t *testing.T) {
	ctx := context.Background()

	cases := []*Window{
		nil,
		New(nil, 10, time.Minute),
		{Rdb: nil, Limit: 0, Window: time.Minute},
	}
	for _, w := range cases {
		ok, err := w.Allow(ctx)
		require.NoError(t, err)
		require.True(t, ok)
	}

	// janela zerada também desliga o limite em vez de dividir por zero
	w, _ := newTestWindow(t, 10, 0)
	ok, err := w.Allow(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWindowFailsOpenWithoutRedis(t *testing.T) {
	ctx := context.Background()
	w, mr := newTestWindow(t, 3, time.Minute)
	mr.Close()

	ok, err := w.Allow(ctx)
	require.Error(t, err)
	require.True(t, ok)
}
