// Package main runs the background email worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/config"
	"github.com/Atul2512anand/buildforage5/internal/logging"
	"github.com/Atul2512anand/buildforage5/internal/worker"
	"github.com/Atul2512anand/buildforage5/pkg/queue"
	"github.com/Atul2512anand/buildforage5/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.Env)
	defer logger.Sync()

	if cfg.Redis.Addr == "" {
		logger.Fatal("REDIS_ADDR is required for the worker")
	}
	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	mailer := &worker.LogMailer{From: cfg.Email.FromAddress, Logger: logger}
	processor := worker.NewEmailProcessor(mailer, queue.NewQueue(rdb.Client, logger), logger)

	workerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	<-done
	logger.Info("worker stopped")
}
