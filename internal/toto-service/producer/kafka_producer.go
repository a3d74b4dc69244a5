package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/campus-toto/pkg/contracts/events"
)

// KafkaPublisher emite os eventos do toto-service: aposta registrada e partida
// encerrada pelo admin.
type KafkaPublisher struct {
	BetWriter      *kafka.Writer
	FinishedWriter *kafka.Writer
}

func NewKafkaPublisher(betWriter, finishedWriter *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{BetWriter: betWriter, FinishedWriter: finishedWriter}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.BetWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.MatchID), Value: b})
}

func (p *KafkaPublisher) PublishMatchFinished(ctx context.Context, e events.MatchFinished) error {
	e.Ts = time.Now()
	b, _ := json.Marshal(e)
	return p.FinishedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.MatchID), Value: b})
}
