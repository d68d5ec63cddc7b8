package handler

import (
	"net/http"

	"github.com/damon-houk/money-calculator/internal/application/service"
	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/money-calculator/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// CurrencyHandler handles HTTP requests for the supported currency list
type CurrencyHandler struct {
	service *service.CurrencyService
	logger  logger.Logger
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(service *service.CurrencyService, log logger.Logger) *CurrencyHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CurrencyHandler{
		service: service,
		logger:  log,
	}
}

// ListCurrencies handles GET /currencies
func (h *CurrencyHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	currencies, err := h.service.ListCurrencies(r.Context())
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	resp := CurrencyListResponse{
		Currencies: make([]CurrencyResponse, 0, len(currencies)),
		Count:      len(currencies),
	}
	for _, c := range currencies {
		resp.Currencies = append(resp.Currencies, newCurrencyResponse(c))
	}

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// RegisterRoutes registers the currency handler routes
func (h *CurrencyHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/currencies", h.ListCurrencies).Methods(http.MethodGet)
}
