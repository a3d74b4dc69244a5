package consumer

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/campus-toto/internal/settlement"
	sharedkafka "github.com/radieske/campus-toto/internal/shared/kafka"
	"github.com/radieske/campus-toto/internal/shared/pubsub"
	"github.com/radieske/campus-toto/pkg/contracts/events"
)

// Broadcaster alimenta o feed WebSocket via Redis Pub/Sub. Nil desliga.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome eventos match_finished e dispara a liquidação.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log    *zap.Logger
	Reader *kafkago.Reader
	Engine *settlement.Engine
	DLQ    *kafkago.Writer // nil desliga a fila morta
	Bcast  Broadcaster

	OnConsumed func()       // métricas (counter++)
	OnSettled  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e liquidação.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		if err := p.HandleMessage(ctx, m.Key, m.Value); err != nil {
			p.Log.Error("settle from event", zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// HandleMessage liquida a partida do evento. Retry simples: tenta até 3 vezes
// antes de enviar para a DLQ. Partida ainda não FINISHED na planilha não é
// defeito da mensagem, então é pulada sem DLQ: a varredura periódica pega.
func (p *Processor) HandleMessage(ctx context.Context, key, value []byte) error {
	var fin events.MatchFinished
	if err := json.Unmarshal(value, &fin); err != nil {
		p.Log.Error("unmarshal match_finished", zap.Error(err))
		if p.OnError != nil {
			p.OnError("decode")
		}
		if p.DLQ != nil {
			_ = sharedkafka.ToDLQ(ctx, p.DLQ, key, value, "decode: "+err.Error())
		}
		return nil
	}

	settled, done, err := p.Engine.SettleMatch(ctx, fin.MatchID)
	if err != nil {
		const retries = 3
		for i := 0; i < retries && err != nil && !settlement.IsNotReady(err); i++ {
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			settled, done, err = p.Engine.SettleMatch(ctx, fin.MatchID)
		}
	}
	if err != nil {
		if settlement.IsNotReady(err) {
			p.Log.Warn("match not ready to settle, skipping",
				zap.String("matchId", fin.MatchID))
			return nil
		}
		if p.OnError != nil {
			p.OnError("settle")
		}
		if p.DLQ != nil {
			_ = sharedkafka.ToDLQ(ctx, p.DLQ, key, value, err.Error())
		}
		return err
	}
	if !done {
		// já estava liquidada; idempotência cuida de redelivery
		return nil
	}

	if p.OnSettled != nil {
		p.OnSettled()
	}
	p.broadcast(ctx, settled)
	return nil
}

func (p *Processor) broadcast(ctx context.Context, settled events.MatchSettled) {
	if p.Bcast == nil {
		return
	}
	upd := pubsub.WSUpdate{MatchID: settled.MatchID, Kind: "match_settled", Payload: settled}
	b, _ := json.Marshal(upd)

	bctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := p.Bcast.Publish(bctx, pubsub.ChannelTotoBroadcast, b); err != nil {
		p.Log.Warn("ws broadcast publish failed", zap.Error(err))
	}
}
