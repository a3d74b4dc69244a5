package main

import (
	"context"
	"fmt"
	"net/http"
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
	settledprod "github.com/radieske/campus-toto/internal/settlement-worker/producer"
	sharedcache "github.com/radieske/campus-toto/internal/shared/cache"
	"github.com/radieske/campus-toto/internal/shared/config"
	"github.com/radieske/campus-toto/internal/shared/db"
	"github.com/radieske/campus-toto/internal/shared/kafka"
	"github.com/radieske/campus-toto/internal/shared/logger"
	"github.com/radieske/campus-toto/internal/shared/metrics"
	"github.com/radieske/campus-toto/internal/shared/pubsub"
	totocache "github.com/radieske/campus-toto/internal/toto-service/cache"
	httpapi "github.com/radieske/campus-toto/internal/toto-service/http"
	"github.com/radieske/campus-toto/internal/toto-service/producer"
	"github.com/radieske/campus-toto/internal/toto-service/ratelimit"
	"github.com/radieske/campus-toto/internal/toto-service/ws"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Backend da planilha conforme config
	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("sheet store connect", zap.Error(err))
	}
	defer closeStore()
	if err := store.Validate(ctx); err != nil {
		log.Fatal("sheet store validate", zap.Error(err))
	}
	log.Info("sheet store ready", zap.String("backend", cfg.SheetBackend))

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// Writers Kafka do serviço
	betWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer betWriter.Close()
	finishedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchFinished)
	defer finishedWriter.Close()
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchSettled)
	defer settledWriter.Close()

	// Repositórios sobre a planilha
	users := repo.NewUsers(store, cfg.StartingBalance)
	matches := repo.NewMatches(store, cfg.MaxOdds)
	bets := repo.NewBets(store)
	teams := repo.NewTeams(store)

	// Métricas Prometheus do fluxo de apostas
	betsAccepted := prometheus.NewCounter(prometheus.CounterOpts{Name: "toto_bets_accepted_total", Help: "apostas aceitas"})
	betsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "toto_bets_rejected_total", Help: "apostas recusadas por motivo"}, []string{"reason"})
	settledTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "toto_matches_settled_total", Help: "partidas liquidadas via sweep do admin"})
	paidTotal := prometheus.NewCounter(prometheus.CounterOpts{Name: "toto_points_paid_total", Help: "pontos pagos a vencedores"})
	prometheus.MustRegister(betsAccepted, betsRejected, settledTotal, paidTotal)

	engine := &settlement.Engine{
		Log:     log,
		Users:   users,
		Matches: matches,
		Bets:    bets,
		Teams:   teams,
		Publ:    settledprod.NewKafkaPublisher(settledWriter),
		OnSettled: func(winners int, paid int64) {
			settledTotal.Inc()
			paidTotal.Add(float64(paid))
		},
	}

	// Hub WebSocket alimentado pelo Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, log, redisClient, hub)

	srv := &httpapi.Server{
		Log:     log,
		Users:   users,
		Matches: matches,
		Bets:    bets,
		Teams:   teams,
		Engine:  engine,

		Limiter: ratelimit.New(redisClient, int64(cfg.BetWindowLimit), time.Duration(cfg.BetWindowSeconds)*time.Second),
		Cache:   totocache.New(redisClient, time.Duration(cfg.SyncCooldownSeconds)*time.Second),
		Publ:    producer.NewKafkaPublisher(betWriter, finishedWriter),
		Bcast:   pubsub.NewRedisBroadcaster(redisClient),
		Hub:     hub,

		AdminToken: cfg.AdminToken,
		MinBet:     cfg.MinBet,
		MaxBet:     cfg.MaxBet,

		OnBetAccepted: func() { betsAccepted.Inc() },
		OnBetRejected: func(reason string) { betsRejected.WithLabelValues(reason).Inc() },
	}
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN vazio: rotas de admin ficam bloqueadas")
	}

	// sobe servidor de métricas e health
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

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: srv.Router(),
	}
	go func() {
		<-ctx.Done()
		shctx, shcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shcancel()
		_ = apiSrv.Shutdown(shctx)
	}()

	log.Info("toto-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
	log.Info("toto-service stopped")
}

// openStore resolve o backend da planilha: a sheet API (padrão), Postgres
// local ou memória para desenvolvimento.
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
