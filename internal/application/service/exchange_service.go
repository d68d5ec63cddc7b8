package service

import (
	"context"
	"fmt"
	"time"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
	"github.com/damon-houk/money-calculator/internal/domain/repository"
	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/money-calculator/internal/infrastructure/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultRecentLimit is used when a non-positive limit is requested
	DefaultRecentLimit = 20
	// MaxRecentLimit caps the size of a history listing
	MaxRecentLimit = 100

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ConversionRecorder counts conversions by outcome
type ConversionRecorder interface {
	ConversionRecorded(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) ConversionRecorded(string) {}

// ExchangeService converts money between currencies and keeps a history
// of performed conversions
type ExchangeService struct {
	currencies *CurrencyService
	rates      repository.ExchangeRateProvider
	history    repository.ConversionRepository
	recorder   ConversionRecorder
	logger     logger.Logger
	now        func() time.Time
}

// NewExchangeService creates a new exchange service. rates is normally the
// rate cache; history and recorder may be nil.
func NewExchangeService(
	currencies *CurrencyService,
	rates repository.ExchangeRateProvider,
	history repository.ConversionRepository,
	recorder ConversionRecorder,
	log logger.Logger,
) *ExchangeService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &ExchangeService{
		currencies: currencies,
		rates:      rates,
		history:    history,
		recorder:   recorder,
		logger:     log,
		now:        time.Now,
	}
}

// Convert converts amount from one currency to another using the current rate
func (s *ExchangeService) Convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (*entity.Conversion, error) {
	conversion, err := s.convert(ctx, amount, fromCode, toCode)
	if err != nil {
		s.recorder.ConversionRecorded(OutcomeFailure)
		return nil, err
	}

	s.recorder.ConversionRecorded(OutcomeSuccess)
	return conversion, nil
}

func (s *ExchangeService) convert(ctx context.Context, amount decimal.Decimal, fromCode, toCode string) (*entity.Conversion, error) {
	requestID := middleware.GetRequestID(ctx)

	s.logger.Info("Converting amount", map[string]interface{}{
		"request_id": requestID,
		"amount":     amount.String(),
		"from":       fromCode,
		"to":         toCode,
	})

	from, err := s.currencies.FindByCode(ctx, fromCode)
	if err != nil {
		return nil, err
	}

	to, err := s.currencies.FindByCode(ctx, toCode)
	if err != nil {
		return nil, err
	}

	if from.Equal(*to) {
		return nil, fmt.Errorf("%w: source and target currency are both %s", entity.ErrInvalidCurrency, from.Code)
	}

	source, err := entity.NewMoney(amount, *from)
	if err != nil {
		return nil, err
	}

	rate, err := s.rates.GetRate(ctx, *from, *to)
	if err != nil {
		s.logger.Error("Failed to get exchange rate", map[string]interface{}{
			"request_id": requestID,
			"from":       from.Code,
			"to":         to.Code,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}

	result, err := source.Convert(rate)
	if err != nil {
		return nil, err
	}

	conversion := &entity.Conversion{
		ID:        uuid.New().String(),
		Source:    source,
		Result:    result,
		Rate:      *rate,
		CreatedAt: s.now().UTC(),
	}

	s.logger.Info("Conversion completed", map[string]interface{}{
		"request_id": requestID,
		"id":         conversion.ID,
		"source":     source.String(),
		"result":     result.String(),
		"rate":       rate.Rate.String(),
		"rate_date":  rate.Date.Format("2006-01-02"),
	})

	s.record(ctx, conversion)

	return conversion, nil
}

func (s *ExchangeService) record(ctx context.Context, conversion *entity.Conversion) {
	if s.history == nil {
		return
	}

	if _, err := s.history.Store(ctx, conversion); err != nil {
		s.logger.Warn("Failed to record conversion", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"id":         conversion.ID,
			"error":      err.Error(),
		})
	}
}

// GetConversion retrieves a recorded conversion by ID
func (s *ExchangeService) GetConversion(ctx context.Context, id string) (*entity.Conversion, error) {
	if s.history == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrConversionNotFound, id)
	}

	return s.history.FindByID(ctx, id)
}

// RecentConversions lists recorded conversions, newest first
func (s *ExchangeService) RecentConversions(ctx context.Context, limit int) ([]entity.Conversion, error) {
	if s.history == nil {
		return []entity.Conversion{}, nil
	}

	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	return s.history.FindRecent(ctx, limit)
}
