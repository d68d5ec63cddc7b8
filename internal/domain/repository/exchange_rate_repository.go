// Package repository defines the ports the application depends on
package repository

import (
	"context"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
)

// ExchangeRateProvider defines the interface for sources of exchange rates
type ExchangeRateProvider interface {
	// GetRate returns the rate to convert from into to, or an error when
	// no rate can be obtained
	GetRate(ctx context.Context, from, to entity.Currency) (*entity.ExchangeRate, error)
}
