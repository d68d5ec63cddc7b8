package repository

import (
	"context"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
)

// CurrencyRepository defines the interface for looking up supported currencies
type CurrencyRepository interface {
	// FindAll returns every supported currency
	FindAll(ctx context.Context) ([]entity.Currency, error)

	// FindByCode returns the currency with the given ISO code
	FindByCode(ctx context.Context, code string) (*entity.Currency, error)
}
