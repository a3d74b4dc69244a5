// Package ratelimit implementa a janela fixa de apostas que protege a API da
// planilha. O contador vive no Redis, então o limite vale para o processo todo
// (e para réplicas), não por conexão.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Window struct {
	Rdb    *redis.Client
	Limit  int64
	Window time.Duration
}

func New(rdb *redis.Client, limit int64, window time.Duration) *Window {
	return &Window{Rdb: rdb, Limit: limit, Window: window}
}

// Allow conta mais uma ação na janela corrente e diz se ela cabe no limite.
// Redis fora do ar libera a ação: o limitador protege a planilha, não pode
// virar ponto único de falha do jogo.
func (w *Window) Allow(ctx context.Context) (bool, error) {
	if w == nil || w.Rdb == nil || w.Limit <= 0 || w.Window <= 0 {
		return true, nil
	}

	bucket := time.Now().Unix() / int64(w.Window.Seconds())
	key := fmt.Sprintf("toto:ratelimit:bets:%d", bucket)

	n, err := w.Rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if n == 1 {
		// primeira ação da janela define a expiração do contador
		_ = w.Rdb.Expire(ctx, key, w.Window).Err()
	}
	return n <= w.Limit, nil
}
