package handler

import (
	"net/http"

	"github.com/damon-houk/money-calculator/internal/infrastructure/cache"
	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/money-calculator/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// CacheMaintainer is the maintenance surface of the rate cache
type CacheMaintainer interface {
	Purge() int
	SweepExpired() int
	Stats() cache.Stats
}

// CacheHandler exposes rate cache statistics and maintenance
type CacheHandler struct {
	cache  CacheMaintainer
	logger logger.Logger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(c CacheMaintainer, log logger.Logger) *CacheHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CacheHandler{
		cache:  c,
		logger: log,
	}
}

// Stats handles GET /cache/stats
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, h.logger, http.StatusOK, newCacheStatsResponse(h.cache.Stats()))
}

// Invalidate handles POST /cache/invalidate
func (h *CacheHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	removed := h.cache.Purge()

	h.logger.Info("Rate cache invalidated", map[string]interface{}{
		"request_id": middleware.GetRequestID(r.Context()),
		"removed":    removed,
	})

	sendJSON(w, h.logger, http.StatusOK, CacheActionResponse{
		Action:  "invalidate",
		Removed: removed,
		Size:    h.cache.Stats().Size,
	})
}

// Sweep handles POST /cache/sweep
func (h *CacheHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	removed := h.cache.SweepExpired()

	sendJSON(w, h.logger, http.StatusOK, CacheActionResponse{
		Action:  "sweep",
		Removed: removed,
		Size:    h.cache.Stats().Size,
	})
}

// RegisterRoutes registers the cache handler routes
func (h *CacheHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/cache/stats", h.Stats).Methods(http.MethodGet)
	router.HandleFunc("/cache/invalidate", h.Invalidate).Methods(http.MethodPost)
	router.HandleFunc("/cache/sweep", h.Sweep).Methods(http.MethodPost)
}
