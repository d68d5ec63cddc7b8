package main

import (
	"fmt"
	"io"
	"os"

	"github.com/damon-houk/money-calculator/internal/application/service"
	"github.com/damon-houk/money-calculator/internal/config"
	"github.com/damon-houk/money-calculator/internal/domain/repository"
	"github.com/damon-houk/money-calculator/internal/infrastructure/api"
	"github.com/damon-houk/money-calculator/internal/infrastructure/cache"
	"github.com/damon-houk/money-calculator/internal/infrastructure/db"
	"github.com/damon-houk/money-calculator/internal/infrastructure/handler"
	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/money-calculator/internal/infrastructure/metrics"
	"github.com/dgraph-io/badger/v3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app holds the wired application components
type app struct {
	cfg      *config.Config
	logger   *logger.ZapLogger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	rateCache  *cache.RateCache
	currencies *service.CurrencyService
	exchange   *service.ExchangeService

	db *badger.DB
}

// newApp wires every component from cfg. Logs go to logOutput; the
// conversion history is opened only when withHistory is set since badger
// holds an exclusive lock on its directory.
func newApp(cfg *config.Config, logOutput io.Writer, withHistory bool) (*app, error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	log := logger.NewJSONLogger(logOutput, level)
	logger.SetDefaultLogger(log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics(registry)

	client, err := api.NewExchangeRateAPIClient(api.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		APIKey:     cfg.API.Key,
		Timeout:    cfg.API.Timeout,
		MaxRetries: cfg.API.MaxRetries,
	}, log)
	if err != nil {
		return nil, err
	}

	rateCache, err := cache.NewRateCache(client, cfg.Cache.ValidityMinutes,
		cache.WithLogger(log.WithField("component", "rate_cache")),
		cache.WithMetrics(appMetrics.Cache),
	)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		logger:    log,
		registry:  registry,
		metrics:   appMetrics,
		rateCache: rateCache,
	}

	var history repository.ConversionRepository
	if withHistory {
		if err := os.MkdirAll(cfg.DB.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		a.db, err = db.Open(cfg.DB.Path)
		if err != nil {
			return nil, err
		}
		history = db.NewBadgerConversionRepository(a.db)
	}

	a.currencies = service.NewCurrencyService(client, log)
	a.exchange = service.NewExchangeService(a.currencies, rateCache, history, appMetrics, log)

	return a, nil
}

func (a *app) router() *mux.Router {
	return handler.NewRouter(handler.RouterConfig{
		Currencies:  handler.NewCurrencyHandler(a.currencies, a.logger),
		Conversions: handler.NewConversionHandler(a.exchange, a.logger),
		Cache:       handler.NewCacheHandler(a.rateCache, a.logger),
		Metrics:     a.metrics,
		Gatherer:    a.registry,
		Logger:      a.logger,
	})
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Error closing database", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	_ = a.logger.Sync()
}
