package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RateScale is the number of decimal places kept for an exchange rate
const RateScale = 6

// ExchangeRate represents the rate to convert one unit of From into To
// as observed on Date. Values are immutable once created.
type ExchangeRate struct {
	Date time.Time       `json:"date"`
	From Currency        `json:"from"`
	To   Currency        `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// NewExchangeRate validates and creates an exchange rate
func NewExchangeRate(date time.Time, from, to Currency, rate decimal.Decimal) (*ExchangeRate, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date cannot be empty", ErrInvalidExchangeRate)
	}

	if date.After(time.Now()) {
		return nil, fmt.Errorf("%w: date cannot be in the future: %s",
			ErrInvalidExchangeRate, date.Format("2006-01-02"))
	}

	if from.Code == "" || to.Code == "" {
		return nil, fmt.Errorf("%w: currencies are required", ErrInvalidExchangeRate)
	}

	if from.Equal(to) {
		return nil, fmt.Errorf("%w: from and to currencies must be different, got %s",
			ErrInvalidExchangeRate, from.Code)
	}

	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: rate must be positive, got %s", ErrInvalidExchangeRate, rate)
	}

	return &ExchangeRate{
		Date: date,
		From: from,
		To:   to,
		Rate: rate.Round(RateScale),
	}, nil
}

// Inverse returns the rate for the opposite direction
func (r *ExchangeRate) Inverse() *ExchangeRate {
	return &ExchangeRate{
		Date: r.Date,
		From: r.To,
		To:   r.From,
		Rate: decimal.NewFromInt(1).DivRound(r.Rate, RateScale),
	}
}

// Equal compares rates by date, direction and numeric value
func (r *ExchangeRate) Equal(other *ExchangeRate) bool {
	if r == nil || other == nil {
		return r == other
	}

	return r.Date.Equal(other.Date) &&
		r.From.Equal(other.From) &&
		r.To.Equal(other.To) &&
		r.Rate.Equal(other.Rate)
}

func (r *ExchangeRate) String() string {
	return fmt.Sprintf("1 %s = %s %s (as of %s)",
		r.From.Code, r.Rate.StringFixed(RateScale), r.To.Code, r.Date.Format("2006-01-02"))
}
