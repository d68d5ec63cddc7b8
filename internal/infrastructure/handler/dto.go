package handler

import (
	"time"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
	"github.com/damon-houk/money-calculator/internal/infrastructure/cache"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// CurrencyResponse represents a supported currency
type CurrencyResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CurrencyListResponse represents the response for the currency list endpoint
type CurrencyListResponse struct {
	Currencies []CurrencyResponse `json:"currencies"`
	Count      int                `json:"count"`
}

// ConversionResponse represents a performed conversion. Amounts are
// rendered as fixed-point strings so no precision is lost in JSON.
type ConversionResponse struct {
	ID              string `json:"id"`
	From            string `json:"from"`
	To              string `json:"to"`
	Amount          string `json:"amount"`
	ConvertedAmount string `json:"converted_amount"`
	ExchangeRate    string `json:"exchange_rate"`
	RateDate        string `json:"rate_date"`
	CreatedAt       string `json:"created_at"`
}

// ConversionListResponse represents the response for the history endpoint
type ConversionListResponse struct {
	Conversions []ConversionResponse `json:"conversions"`
	Count       int                  `json:"count"`
}

// CacheStatsResponse represents the rate cache statistics
type CacheStatsResponse struct {
	Size            int    `json:"size"`
	ValidityMinutes int    `json:"validity_minutes"`
	Summary         string `json:"summary"`
}

// CacheActionResponse represents the outcome of a cache maintenance call
type CacheActionResponse struct {
	Action  string `json:"action"`
	Removed int    `json:"removed"`
	Size    int    `json:"size"`
}

func newCurrencyResponse(c entity.Currency) CurrencyResponse {
	return CurrencyResponse{Code: c.Code, Name: c.Name}
}

func newConversionResponse(c *entity.Conversion) ConversionResponse {
	return ConversionResponse{
		ID:              c.ID,
		From:            c.Source.Currency.Code,
		To:              c.Result.Currency.Code,
		Amount:          c.Source.Amount.StringFixed(entity.MoneyScale),
		ConvertedAmount: c.Result.Amount.StringFixed(entity.MoneyScale),
		ExchangeRate:    c.Rate.Rate.StringFixed(entity.RateScale),
		RateDate:        c.Rate.Date.Format("2006-01-02"),
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func newCacheStatsResponse(s cache.Stats) CacheStatsResponse {
	return CacheStatsResponse{
		Size:            s.Size,
		ValidityMinutes: s.ValidityMinutes,
		Summary:         s.String(),
	}
}
