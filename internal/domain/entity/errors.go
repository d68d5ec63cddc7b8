package entity

import "errors"

// Domain errors. Callers classify failures with errors.Is.
var (
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInvalidAmount       = errors.New("invalid money amount")
	ErrInvalidExchangeRate = errors.New("invalid exchange rate")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
	ErrRateUnavailable     = errors.New("exchange rate unavailable")
	ErrCurrencyNotFound    = errors.New("currency not found")
	ErrCurrencyListFailed  = errors.New("currency list unavailable")
	ErrConversionNotFound  = errors.New("conversion not found")
)
