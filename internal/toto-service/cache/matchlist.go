package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyWaiting = "toto:matches:waiting"

// MatchList é o espelho advisory da lista de partidas abertas. O TTL é o
// cooldown de ressincronização com a planilha: dentro dele a lista pública
// pode ficar defasada, e tudo bem — a planilha continua sendo a verdade.
type MatchList struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *MatchList {
	return &MatchList{R: r, TTL: ttl}
}

func (c *MatchList) Get(ctx context.Context, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyWaiting).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *MatchList) Set(ctx context.Context, v any) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyWaiting, b, c.TTL).Err()
}

// Invalidate derruba o espelho depois de uma escrita do admin, para a lista
// pública refletir a mudança sem esperar o TTL.
func (c *MatchList) Invalidate(ctx context.Context) error {
	return c.R.Del(ctx, keyWaiting).Err()
}
