package di

import (
	"context"
	"time"

	"RiskLens/internal/domain/repository"
	"RiskLens/internal/handler/api"
	apprepo "RiskLens/internal/repository"
	"RiskLens/internal/service/histcache"
	"RiskLens/internal/service/providers"
	"RiskLens/internal/services/risk"
	"RiskLens/internal/usecase"
	"RiskLens/pkg/cache"
	"RiskLens/pkg/clickhouse"
	"RiskLens/pkg/config"
	"RiskLens/pkg/http"
	"RiskLens/pkg/kafka"
	"RiskLens/pkg/logger"
	"RiskLens/pkg/metrics"
	"RiskLens/pkg/server"
)

// ProvideLogger builds the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideHTTPClient builds the shared provider HTTP client.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return http.NewClient(http.WithTimeout(cfg.Providers.Timeout))
}

// ProvideMetrics builds the Prometheus recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.NewRecorder()
}

// ProvidePriceStore connects to ClickHouse. Connection failure is not
// fatal: the historical cache degrades to always-miss and analyses
// fetch live data every time.
func ProvidePriceStore(cfg *config.Config, log *logger.Logger) repository.PriceStore {
	if cfg.ClickHouse.Host == "" {
		log.Info("clickhouse not configured, price cache disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClickHouse.DialTimeout)
	defer cancel()

	client, err := clickhouse.NewClient(ctx, clickhouse.Config{
		Host:            cfg.ClickHouse.Host,
		Port:            cfg.ClickHouse.Port,
		Database:        cfg.ClickHouse.Database,
		Username:        cfg.ClickHouse.User,
		Password:        cfg.ClickHouse.Password,
		DialTimeout:     cfg.ClickHouse.DialTimeout,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		log.Warn("clickhouse unavailable, price cache disabled", logger.Error(err))
		return nil
	}

	store, err := apprepo.NewClickHousePriceStore(ctx, client)
	if err != nil {
		log.Warn("clickhouse schema init failed, price cache disabled", logger.Error(err))
		_ = client.Close()
		return nil
	}
	return store
}

// ProvideResultCache builds the request-level result cache: layered
// memory-over-Redis when Redis is configured and reachable, in-process
// memory otherwise.
func ProvideResultCache(cfg *config.Config, log *logger.Logger) cache.Service {
	memory := cache.NewMemory(cache.MemoryConfig{
		MaxEntries:      1024,
		CleanupInterval: time.Minute,
	})

	if !cfg.Results.Redis.Enabled {
		return memory
	}

	redis, err := cache.NewRedis(cache.RedisConfig{
		Host:         cfg.Results.Redis.Host,
		Port:         cfg.Results.Redis.Port,
		Password:     cfg.Results.Redis.Password,
		DB:           cfg.Results.Redis.DB,
		KeyPrefix:    "risklens",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err != nil {
		log.Warn("redis unavailable, using in-process result cache", logger.Error(err))
		return memory
	}

	return cache.NewLayered(memory, redis, time.Minute)
}

// ProvideProviderChain builds the adapter chain in fallback priority
// order: Yahoo first (no credential), then the metered providers.
func ProvideProviderChain(cfg *config.Config, client *http.Client, log *logger.Logger) []repository.PriceProvider {
	return []repository.PriceProvider{
		providers.NewYahoo(client, log),
		providers.NewPolygon(client, cfg.Providers.Polygon.APIKey, int(cfg.Providers.Polygon.RatePerMin), log),
		providers.NewFMP(client, cfg.Providers.FMP.APIKey, log),
	}
}

// ProvideHistCache builds the historical price cache service.
func ProvideHistCache(store repository.PriceStore, cfg *config.Config, log *logger.Logger) *histcache.Service {
	return histcache.New(store, cfg.Risk.CacheMaxAgeDays, log)
}

// ProvideFetcher builds the fetch orchestrator.
func ProvideFetcher(chain []repository.PriceProvider, hist *histcache.Service, rec *metrics.Recorder, log *logger.Logger) *usecase.Fetcher {
	return usecase.NewFetcher(chain, hist, providers.NewSynthetic(), rec, log)
}

// ProvideEngine builds the risk metrics engine.
func ProvideEngine(cfg *config.Config) *risk.Engine {
	return risk.NewEngine(cfg.Risk.RiskFreeRate)
}

// ProvidePublisher builds the Kafka report publisher, nil when Kafka
// is disabled.
func ProvidePublisher(cfg *config.Config, log *logger.Logger) repository.ReportPublisher {
	if !cfg.Kafka.Enabled {
		return nil
	}

	producer := kafka.NewProducer(kafka.Config{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		BatchTimeout: 100 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: 1,
	})
	log.Info("kafka report publisher enabled", logger.String("topic", cfg.Kafka.Topic))
	return apprepo.NewKafkaReportPublisher(producer)
}

// ProvideAnalyzer wires the analysis pipeline.
func ProvideAnalyzer(fetcher *usecase.Fetcher, engine *risk.Engine, results cache.Service, publisher repository.ReportPublisher, rec *metrics.Recorder, log *logger.Logger, cfg *config.Config) *usecase.Analyzer {
	return usecase.NewAnalyzer(fetcher, engine, results, publisher, rec, log, usecase.AnalyzerConfig{
		BenchmarkSymbol: cfg.Risk.Benchmark,
		LookbackDays:    cfg.Risk.LookbackDays,
		ResultTTL:       cfg.Results.TTL,
	})
}

// ProvideHandler builds the HTTP handler.
func ProvideHandler(analyzer *usecase.Analyzer, store repository.PriceStore, cfg *config.Config, log *logger.Logger) *api.RiskEchoHandler {
	healthFn := func() api.HealthInfo {
		cacheState := "disabled"
		if store != nil {
			cacheState = "clickhouse"
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := store.Health(ctx); err != nil {
				cacheState = "degraded"
			}
		}
		return api.HealthInfo{
			Status: "ok",
			Providers: map[string]bool{
				"yahoo":   true,
				"polygon": cfg.Providers.Polygon.APIKey != "",
				"fmp":     cfg.Providers.FMP.APIKey != "",
			},
			Cache: cacheState,
		}
	}
	return api.NewRiskEchoHandler(analyzer, healthFn, log)
}

// ProvideServer builds the HTTP server.
func ProvideServer(handler *api.RiskEchoHandler, cfg *config.Config) *http.Server {
	return http.NewServer(handler,
		http.WithPort(cfg.Server.Port),
		http.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
}

// ProvideApp assembles the application lifecycle.
func ProvideApp(srv *http.Server, store repository.PriceStore, results cache.Service, publisher repository.ReportPublisher, cfg *config.Config, log *logger.Logger) *server.App {
	app := server.NewApp(srv, log, cfg.Server.ShutdownTimeout)
	if store != nil {
		app.AddCloser("price store", store.Close)
	}
	app.AddCloser("result cache", results.Close)
	if publisher != nil {
		app.AddCloser("report publisher", publisher.Close)
	}
	return app
}
