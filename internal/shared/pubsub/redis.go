package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ChannelTotoBroadcast é o canal Redis Pub/Sub que alimenta o hub WebSocket.
const ChannelTotoBroadcast = "toto_updates_broadcast"

// WSUpdate é o envelope das mensagens retransmitidas aos clientes WebSocket.
type WSUpdate struct {
	MatchID string `json:"matchId"`
	Kind    string `json:"kind"` // "bet_placed" | "match_finished" | "match_settled"
	Payload any    `json:"payload"`
}

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}
