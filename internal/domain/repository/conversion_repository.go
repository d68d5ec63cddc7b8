package repository

import (
	"context"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
)

// ConversionRepository defines the interface for conversion history storage
type ConversionRepository interface {
	// Store saves a conversion and returns its ID
	Store(ctx context.Context, conversion *entity.Conversion) (string, error)

	// FindByID retrieves a conversion by its unique identifier
	FindByID(ctx context.Context, id string) (*entity.Conversion, error)

	// FindRecent returns up to limit conversions, newest first
	FindRecent(ctx context.Context, limit int) ([]entity.Conversion, error)
}
