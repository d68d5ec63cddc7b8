package handler

import (
	"net/http"

	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/money-calculator/internal/infrastructure/metrics"
	"github.com/damon-houk/money-calculator/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds everything NewRouter wires together. Metrics and
// Gatherer are optional; without them /metrics is not served.
type RouterConfig struct {
	Currencies  *CurrencyHandler
	Conversions *ConversionHandler
	Cache       *CacheHandler
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Logger      logger.Logger
}

// NewRouter builds the HTTP router with the full middleware chain
func NewRouter(cfg RouterConfig) *mux.Router {
	log := cfg.Logger
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	if cfg.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(cfg.Metrics))
	}

	if cfg.Currencies != nil {
		cfg.Currencies.RegisterRoutes(router)
	}
	if cfg.Conversions != nil {
		cfg.Conversions.RegisterRoutes(router)
	}
	if cfg.Cache != nil {
		cfg.Cache.RegisterRoutes(router)
	}

	if cfg.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return router
}
