package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/infrastructure/kafka"
	"storefront/internal/infrastructure/logger"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/infrastructure/redis"
	"storefront/internal/infrastructure/storage"
	"storefront/internal/notification"
	"storefront/internal/order"
	"storefront/internal/product"
	"storefront/internal/quotation"
	"storefront/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.ServiceName)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.NewConnection(ctx, cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if err := mysql.Migrate(ctx, db); err != nil {
		zapLogger.Fatal("migrating schema", zap.Error(err))
	}
	txm := mysql.NewTxManager(db, cfg.Database.TxTimeout)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	var redisClient goredis.Cmdable
	if rc, err := redis.NewClient(ctx, cfg.Redis); err != nil {
		zapLogger.Warn("redis unavailable, order status cache disabled", zap.Error(err))
	} else {
		defer rc.Close()
		redisClient = rc
		zapLogger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	var sink notification.Sink = notification.NewLogSink(zapLogger)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink := notification.NewKafkaSink(kafka.NewWriter(cfg.Kafka), cfg.ServiceName)
		defer kafkaSink.Close()
		sink = kafkaSink
		zapLogger.Info("notifications go to kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.NotificationTopic),
		)
	}
	dispatcher := notification.NewDispatcher(sink, cfg.Notification.QueueSize, cfg.Notification.DeliveryTimeout, zapLogger, m)
	dispatcher.Start(ctx)

	files, err := storage.NewLocal(afero.NewOsFs(), cfg.Storage.UploadsDir)
	if err != nil {
		zapLogger.Fatal("preparing uploads dir", zap.Error(err))
	}

	orderModule := order.NewModule(order.Dependencies{
		DB:       db,
		Tx:       txm,
		Redis:    redisClient,
		Files:    files,
		Notifier: dispatcher,
		Metrics:  m,
		Config:   cfg,
		Logger:   zapLogger,
	})

	router := server.NewRouter(server.Handlers{
		Products:   product.NewModule(db, zapLogger),
		Carts:      cart.NewModule(db, txm, zapLogger),
		Quotations: quotation.NewModule(db, txm, orderModule.Repository, dispatcher, m, zapLogger),
		Orders:     orderModule.Controller,
	},
		registry,
		server.NewUploadLimiter(cfg.RateLimit.UploadRequests, cfg.RateLimit.UploadWindow, zapLogger),
		cfg.Server.RequestTimeout,
		zapLogger,
	)

	srv := server.New(cfg.Server, router, zapLogger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			zapLogger.Error("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		zapLogger.Warn("notification queue not drained", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
