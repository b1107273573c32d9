// Package main runs the BuildForge HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Atul2512anand/buildforage5/config"
	"github.com/Atul2512anand/buildforage5/internal/auth"
	"github.com/Atul2512anand/buildforage5/internal/logging"
	"github.com/Atul2512anand/buildforage5/internal/metrics"
	"github.com/Atul2512anand/buildforage5/internal/realtime"
	"github.com/Atul2512anand/buildforage5/internal/store"
	"github.com/Atul2512anand/buildforage5/internal/users"
	"github.com/Atul2512anand/buildforage5/internal/worker"
	"github.com/Atul2512anand/buildforage5/internal/workflow"
	"github.com/Atul2512anand/buildforage5/pkg/queue"
	"github.com/Atul2512anand/buildforage5/pkg/redis"
	"github.com/Atul2512anand/buildforage5/pkg/storage"
	"github.com/Atul2512anand/buildforage5/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.Env)
	defer logger.Sync()

	ctx := context.Background()

	secrets, err := hashSecrets(cfg.Access, logger)
	if err != nil {
		logger.Fatal("hash secrets", zap.Error(err))
	}
	st := store.New(store.WithSecrets(secrets), store.WithLogger(logger))
	if err := store.Seed(st, store.SeedConfig{
		LeadName:   cfg.Seed.LeadName,
		LeadEmail:  cfg.Seed.LeadEmail,
		AdminName:  cfg.Seed.AdminName,
		AdminEmail: cfg.Seed.AdminEmail,
		Demo:       cfg.Seed.Demo,
	}); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("buildforge", reg)

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	mailer := &worker.LogMailer{From: cfg.Email.FromAddress, Logger: logger}

	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()

	// Redis is optional: without it sessions, fan-out and email stay in process.
	var (
		sessions workflow.SessionStore = workflow.NewMemorySessionStore()
		emails   queue.Enqueuer        = worker.Inline{Mailer: mailer}
		hub                            = realtime.NewHub(logger, nil, nil)
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()

		sessions = workflow.NewRedisSessionStore(rdb.Client, jwtService.TTL())
		pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
		hub = realtime.NewHub(logger, pubsub, pubsub)
		jobQueue := queue.NewQueue(rdb.Client, logger)
		emails = jobQueue
		go worker.NewEmailProcessor(mailer, jobQueue, logger).Run(workerCtx)
		logger.Info("email worker started")
	} else {
		logger.Warn("REDIS_ADDR not set, running single-instance")
	}
	st.SetNotifier(hub)

	var avatars users.AvatarStore
	if cfg.AWS.AvatarsBucket != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			AvatarsBucket:   cfg.AWS.AvatarsBucket,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			avatars = s3Client
		}
	}

	orc := workflow.NewOrchestrator(st, sessions, m, logger)
	router := newRouter(deps{
		orc:          orc,
		jwt:          jwtService,
		hub:          hub,
		metrics:      m,
		emails:       emails,
		avatars:      avatars,
		corsOrigins:  cfg.Server.CORSOrigins(),
		supportEmail: cfg.Email.SupportEmail,
		pollOptions:  realtime.Options{PollInterval: cfg.Messaging.PollInterval, Metrics: m},
		logger:       logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// hashSecrets bcrypts the shared credentials. An empty credential disables that login.
func hashSecrets(access config.AccessConfig, logger *zap.Logger) (store.Secrets, error) {
	var sec store.Secrets
	if access.LeadAccessKey == "" {
		logger.Warn("LEAD_ACCESS_KEY not set, lead login disabled")
	} else {
		h, err := utils.HashSecret(access.LeadAccessKey)
		if err != nil {
			return sec, err
		}
		sec.LeadAccessKeyHash = h
	}
	if access.RootPassword == "" {
		logger.Warn("ROOT_PASSWORD not set, super admin login disabled")
	} else {
		h, err := utils.HashSecret(access.RootPassword)
		if err != nil {
			return sec, err
		}
		sec.RootPasswordHash = h
	}
	return sec, nil
}
