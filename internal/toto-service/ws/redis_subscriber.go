package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/campus-toto/internal/shared/pubsub"
)

// StartRedisSubscriber escuta o canal de broadcast e repassa cada atualização
// para o hub. O toto-service e o settlement-worker publicam nesse canal; como
// o relay passa pelo Redis, qualquer réplica do serviço entrega o feed.
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, hub *Hub) {
	sub := r.Subscribe(ctx, pubsub.ChannelTotoBroadcast)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var upd pubsub.WSUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					log.Warn("ws subscriber unmarshal", zap.Error(err))
					continue
				}
				hub.Broadcast(upd)
			}
		}
	}()
}
