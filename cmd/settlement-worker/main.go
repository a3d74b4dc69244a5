package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/campus-toto/internal/repo"
	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/internal/rowstore/postgres"
	"github.com/radieske/campus-toto/internal/rowstore/sheetclient"
	"github.com/radieske/campus-toto/internal/settlement"
	"github.com/radieske/campus-toto/internal/settlement-worker/consumer"
	"github.com/radieske/campus-toto/internal/settlement-worker/producer"
	sharedcache "github.com/radieske/campus-toto/internal/shared/cache"
	"github.com/radieske/campus-toto/internal/shared/config"
	"github.com/radieske/campus-toto/internal/shared/db"
	"github.com/radieske/campus-toto/internal/shared/kafka"
	"github.com/radieske/campus-toto/internal/shared/logger"
	"github.com/radieske/campus-toto/internal/shared/metrics"
	"github.com/radieske/campus-toto/internal/shared/pubsub"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("sheet store connect", zap.Error(err))
	}
	defer closeStore()
	if err := store.Validate(ctx); err != nil {
		log.Fatal("sheet store validate", zap.Error(err))
	}

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consome match_finished; publica match_settled e manda pra DLQ o que
	// não liquidar depois dos retries
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchFinished, "settlement-worker")
	defer reader.Close()
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchSettled)
	defer settledWriter.Close()
	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchFinishedDLQ)
	defer dlqWriter.Close()

	users := repo.NewUsers(store, cfg.StartingBalance)
	matches := repo.NewMatches(store, cfg.MaxOdds)
	bets := repo.NewBets(store)
	teams := repo.NewTeams(store)

	// Métricas Prometheus do worker
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "mensagens consumidas"})
	settledTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_matches_settled_total", Help: "partidas liquidadas"})
	paidTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_points_paid_total", Help: "pontos pagos a vencedores"})
	payoutErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_payout_errors_total", Help: "créditos de vencedor que falharam"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settledTotal, paidTotal, payoutErrors, errorsBy)

	engine := &settlement.Engine{
		Log:     log,
		Users:   users,
		Matches: matches,
		Bets:    bets,
		Teams:   teams,
		Publ:    producer.NewKafkaPublisher(settledWriter),
		OnSettled: func(winners int, paid int64) {
			settledTotal.Inc()
			paidTotal.Add(float64(paid))
		},
		OnPayoutError: func() { payoutErrors.Inc() },
	}

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Engine:     engine,
		DLQ:        dlqWriter,
		Bcast:      pubsub.NewRedisBroadcaster(redisClient),
		OnConsumed: func() { consumed.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(hctx context.Context) error {
		if err := redisClient.Ping(hctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		if err := store.Validate(hctx); err != nil {
			return fmt.Errorf("sheet: %w", err)
		}
		return nil
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	// Varredura de partida, na subida e periódica: pega FINISHED que ficou
	// para trás (evento perdido, worker fora do ar, admin mexeu direto na
	// planilha)
	go func() {
		sweep := func() {
			sctx, scancel := context.WithTimeout(ctx, 30*time.Second)
			defer scancel()
			n, err := engine.Sweep(sctx)
			if err != nil {
				log.Warn("sweep", zap.Error(err))
				return
			}
			if n > 0 {
				log.Info("sweep settled pending matches", zap.Int("count", n))
			}
		}
		sweep()

		ticker := time.NewTicker(time.Duration(cfg.SweepIntervalSecs) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicMatchFinished),
		zap.String("publish", cfg.TopicMatchSettled),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}

// openStore resolve o backend da planilha, igual ao toto-service.
func openStore(cfg config.Config) (rowstore.Store, func(), error) {
	switch cfg.SheetBackend {
	case "postgres":
		pg, err := db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.New(pg), func() { _ = pg.Close() }, nil
	case "memory":
		return rowstore.NewMemory(), func() {}, nil
	default:
		return sheetclient.New(cfg.SheetAPIURL), func() {}, nil
	}
}
