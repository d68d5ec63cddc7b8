// Package service holds the application use cases behind the HTTP and CLI surfaces
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
	"github.com/damon-houk/money-calculator/internal/domain/repository"
	"github.com/damon-houk/money-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/money-calculator/internal/infrastructure/middleware"
)

// CurrencyService exposes the supported currency list
type CurrencyService struct {
	repo   repository.CurrencyRepository
	logger logger.Logger
}

// NewCurrencyService creates a new currency service
func NewCurrencyService(repo repository.CurrencyRepository, log logger.Logger) *CurrencyService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CurrencyService{
		repo:   repo,
		logger: log,
	}
}

// ListCurrencies returns every supported currency
func (s *CurrencyService) ListCurrencies(ctx context.Context) ([]entity.Currency, error) {
	currencies, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list currencies", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}

	return currencies, nil
}

// FindByCode resolves a currency code to a supported currency
func (s *CurrencyService) FindByCode(ctx context.Context, code string) (*entity.Currency, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: currency code is required", entity.ErrInvalidCurrency)
	}

	currency, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		s.logger.Debug("Currency lookup failed", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"code":       code,
			"error":      err.Error(),
		})
		return nil, err
	}

	return currency, nil
}
