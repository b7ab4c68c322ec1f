package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hulio7/crptapi/crpt"
	"github.com/hulio7/crptapi/internal/config"
	"github.com/hulio7/crptapi/internal/log"
	"github.com/hulio7/crptapi/ratelimit"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	docPath := flag.String("document", "", "path to the JSON document to submit")
	signature := flag.String("signature", "", "detached signature for the document")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Logger().Fatal("Failed to load config", zap.Error(err))
	}

	limiter, err := buildLimiter(cfg)
	if err != nil {
		log.Logger().Fatal("Failed to build limiter", zap.Error(err))
	}
	log.Logger().Info("Limiter ready",
		zap.Stringer("strategy", limiter.Type()),
		zap.Duration("window", cfg.Limiter.Window),
		zap.Int("limit", cfg.Limiter.Limit))

	client, err := crpt.NewClient(limiter,
		crpt.WithEndpoint(cfg.Endpoint),
		crpt.WithTimeout(cfg.Timeout),
		crpt.WithLogger(log.Logger()))
	if err != nil {
		log.Logger().Fatal("Failed to build client", zap.Error(err))
	}

	payload, err := os.ReadFile(*docPath)
	if err != nil {
		log.Logger().Fatal("Failed to read document", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resp, err := client.CreateDocumentRaw(ctx, payload, *signature)
	if err != nil {
		log.Logger().Fatal("Submission failed", zap.Error(err))
	}

	log.Logger().Info("Submission finished",
		zap.Int("status", resp.StatusCode),
		zap.Bool("success", resp.IsSuccess()),
		zap.String("body", resp.Body))
}

func buildLimiter(cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.Limiter.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Limiter.RedisAddr})
		return ratelimit.NewRedisSlidingWindow(client, cfg.Limiter.RedisKey,
			cfg.Limiter.Window, cfg.Limiter.Limit,
			ratelimit.WithRedisLogger(log.Logger()))
	}

	opts := []ratelimit.SlidingWindowOption{ratelimit.WithLogger(log.Logger())}
	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		opts = append(opts, ratelimit.WithMetrics(ratelimit.NewMetrics(registry)))
		go serveMetrics(cfg.MetricsAddr, registry)
	}
	return ratelimit.NewSlidingWindow(cfg.Limiter.Window, cfg.Limiter.Limit, opts...)
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Logger().Error("Metrics endpoint stopped", zap.Error(err))
	}
}
