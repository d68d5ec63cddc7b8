package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/damon-houk/money-calculator/internal/application/service"
	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/money-calculator/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// ConversionHandler handles HTTP requests for currency conversion
type ConversionHandler struct {
	service *service.ExchangeService
	logger  logger.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service *service.ExchangeService, log logger.Logger) *ConversionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionHandler{
		service: service,
		logger:  log,
	}
}

// Convert handles GET /convert?amount=&from=&to=
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	from := strings.TrimSpace(query.Get("from"))
	to := strings.TrimSpace(query.Get("to"))
	rawAmount := strings.TrimSpace(query.Get("amount"))

	if from == "" || to == "" || rawAmount == "" {
		h.logger.Warn("Missing conversion parameters", map[string]interface{}{
			"request_id": requestID,
			"query":      r.URL.RawQuery,
		})
		sendErrorResponse(w, h.logger, "Missing parameters",
			"The 'amount', 'from' and 'to' query parameters are required", http.StatusBadRequest, requestID)
		return
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		h.logger.Warn("Invalid amount", map[string]interface{}{
			"request_id": requestID,
			"amount":     rawAmount,
		})
		sendErrorResponse(w, h.logger, "Invalid amount",
			"Amount must be a decimal number", http.StatusBadRequest, requestID)
		return
	}

	conversion, err := h.service.Convert(r.Context(), amount, from, to)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, newConversionResponse(conversion))
}

// GetConversion handles GET /conversions/{id}
func (h *ConversionHandler) GetConversion(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := mux.Vars(r)["id"]

	conversion, err := h.service.GetConversion(r.Context(), id)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	sendJSON(w, h.logger, http.StatusOK, newConversionResponse(conversion))
}

// ListConversions handles GET /conversions?limit=
func (h *ConversionHandler) ListConversions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			sendErrorResponse(w, h.logger, "Invalid limit",
				"The 'limit' query parameter must be a non-negative integer", http.StatusBadRequest, requestID)
			return
		}
		limit = parsed
	}

	conversions, err := h.service.RecentConversions(r.Context(), limit)
	if err != nil {
		sendServiceError(w, h.logger, err, requestID)
		return
	}

	resp := ConversionListResponse{
		Conversions: make([]ConversionResponse, 0, len(conversions)),
		Count:       len(conversions),
	}
	for i := range conversions {
		resp.Conversions = append(resp.Conversions, newConversionResponse(&conversions[i]))
	}

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// RegisterRoutes registers the conversion handler routes
func (h *ConversionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/convert", h.Convert).Methods(http.MethodGet)
	router.HandleFunc("/conversions", h.ListConversions).Methods(http.MethodGet)
	router.HandleFunc("/conversions/{id}", h.GetConversion).Methods(http.MethodGet)

	h.logger.Info("Conversion routes registered", map[string]interface{}{
		"routes": []string{
			"GET /convert",
			"GET /conversions",
			"GET /conversions/{id}",
		},
	})
}
