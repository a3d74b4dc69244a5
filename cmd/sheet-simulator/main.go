package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/campus-toto/internal/rowstore"
	"github.com/radieske/campus-toto/internal/rowstore/sheetapi"
	"github.com/radieske/campus-toto/internal/shared/config"
	"github.com/radieske/campus-toto/internal/shared/logger"
	"github.com/radieske/campus-toto/internal/shared/metrics"
)

// sheet-simulator sobe a sheet API sobre uma planilha em memória, para rodar o
// toto local sem a planilha de verdade.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := rowstore.NewMemory()
	if err := store.Validate(ctx); err != nil {
		log.Fatal("memory store validate", zap.Error(err))
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(hctx context.Context) error {
		return store.Validate(hctx)
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: sheetapi.New(store).Router(),
	}
	go func() {
		<-ctx.Done()
		shctx, shcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shcancel()
		_ = srv.Shutdown(shctx)
	}()

	log.Info("sheet-simulator listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
	log.Info("sheet-simulator stopped")
}
