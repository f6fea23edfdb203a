package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	app "github.com/muhammadchandra19/orderbook/internal/app/engine"
	depthstorev1 "github.com/muhammadchandra19/orderbook/internal/domain/depth-store/v1"
	tradepublisherv1 "github.com/muhammadchandra19/orderbook/internal/domain/trade-publisher/v1"
	depthstore "github.com/muhammadchandra19/orderbook/internal/usecase/depth-store"
	"github.com/muhammadchandra19/orderbook/internal/usecase/metrics"
	tradepublisher "github.com/muhammadchandra19/orderbook/internal/usecase/trade-publisher"
	"github.com/muhammadchandra19/orderbook/pkg/clock"
	"github.com/muhammadchandra19/orderbook/pkg/config"
	"github.com/muhammadchandra19/orderbook/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/orderbook/pkg/logger"
	"github.com/muhammadchandra19/orderbook/pkg/redis"
	"github.com/muhammadchandra19/orderbook/pkg/util"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	config.MustLoad(cfg)

	l, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.LogLevel)))
	if err != nil {
		panic(err)
	}
	log = l.WithFields(logger.NewField("pair", cfg.Pair))
}

func main() {
	serve := flag.Bool("serve", false, "keep serving /metrics and /health after the script until interrupted")
	flag.Parse()
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = util.WithPair(ctx, cfg.Pair)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	collector, err := metrics.NewCollector(cfg.Pair, registry)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "register_metrics"})
		return
	}

	health := healthcheck.New(2 * time.Second)
	publishers := []tradepublisherv1.Publisher{collector}
	stores := []depthstorev1.Store{collector}

	if cfg.Redis.Enabled {
		redisConfig := cfg.Redis.Config
		rclient := redis.NewClient(log, &redisConfig)
		if err := rclient.Connect(ctx); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "connect_redis"})
			return
		}
		defer func() {
			if err := rclient.Disconnect(context.Background()); err != nil {
				log.Error(err, logger.Field{Key: "action", Value: "disconnect_redis"})
			}
		}()
		health.Register("redis", rclient.Ping)
		stores = append(stores, depthstore.NewDepthStore(rclient, cfg.Pair, log))
	}

	if cfg.Kafka.Enabled {
		publisher := tradepublisher.NewPublisher(cfg.Kafka, cfg.Pair, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error(err, logger.Field{Key: "action", Value: "close_kafka_writer"})
			}
		}()
		publishers = append(publishers, publisher)
	}

	options := app.OptionsFromConfig(cfg.Engine)
	engine := app.NewEngineWithOptions(cfg.Pair, clock.NewMonotonic(), publishers, stores, log, options)
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "start_engine"})
		return
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           health.Handler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, logger.Field{Key: "action", Value: "serve_http"})
		}
	}()

	if err := runScript(ctx, engine, demoScript(), options.SnapshotDepth, log); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "run_script"})
	}
	if err := engine.StoreDepth(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "store_depth"})
	}

	if *serve {
		log.Info("Serving metrics until interrupted", logger.Field{Key: "addr", Value: cfg.HTTPAddr})
		<-ctx.Done()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "stop_engine"})
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "shutdown_http"})
	}

	log.Info("Orderbook demo finished",
		logger.Field{Key: "totalTrades", Value: engine.GetTotalTrades()},
		logger.Field{Key: "totalVolume", Value: engine.GetTotalVolume()},
	)
}
